package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/index"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "chunks"

// Metadata keys stored alongside each embedded chunk. The chunk is fully
// reconstructable from a query result, so retrieval never needs a second
// lookup against the chunk store.
const (
	metaDocumentID   = "document_id"
	metaFileName     = "file_name"
	metaFolderID     = "folder_id"
	metaStartCharIdx = "start_char_idx"
	metaPageNumber   = "page_number"
)

// Store implements index.VectorIndex on top of an embedded chromem-go
// database. Embeddings are produced by the configured ai.Embedder.
type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	logger     *slog.Logger
}

// StoreOption is a functional option for configuring a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	collectionName string
	logger         *slog.Logger
}

// WithCollection sets the collection name.
func WithCollection(name string) StoreOption {
	return func(c *storeConfig) {
		c.collectionName = name
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// NewStore creates a persistent vector index at the given path.
func NewStore(path string, embedder ai.Embedder, opts ...StoreOption) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return newStore(db, embedder, opts...)
}

// NewMemoryStore creates an in-memory vector index, useful for tests and
// ephemeral sessions.
func NewMemoryStore(embedder ai.Embedder, opts ...StoreOption) (*Store, error) {
	return newStore(chromemgo.NewDB(), embedder, opts...)
}

func newStore(db *chromemgo.DB, embedder ai.Embedder, opts ...StoreOption) (*Store, error) {
	cfg := &storeConfig{
		collectionName: DefaultCollection,
		logger:         slog.Default().With("component", "vector-index"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedText(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(cfg.collectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		logger:     cfg.logger,
	}, nil
}

// Upsert adds the chunks to the index, replacing entries with the same ID.
func (s *Store) Upsert(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, 0, len(chunks))
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		docs = append(docs, chromemgo.Document{
			ID:      strconv.FormatUint(uint64(chunk.Id), 10),
			Content: chunk.Text,
			Metadata: map[string]string{
				metaDocumentID:   chunk.DocumentID,
				metaFileName:     chunk.FileName,
				metaFolderID:     chunk.FolderID,
				metaStartCharIdx: strconv.Itoa(chunk.StartCharIdx),
				metaPageNumber:   strconv.Itoa(chunk.PageNumber),
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		s.logger.Error("failed to add documents to vector index", "count", len(docs), "err", err)
		return fmt.Errorf("failed to add documents: %w", err)
	}

	s.logger.Debug("upserted chunks into vector index", "count", len(docs))
	return nil
}

// Query embeds the query text and returns up to k chunks by descending
// similarity. The result count is clamped to the collection size because
// chromem rejects nResults larger than the number of stored documents.
func (s *Store) Query(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, index.ErrEmptyQuery
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k < 1 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		s.logger.Error("vector query failed", "err", err)
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	scored := make([]core.ScoredChunk, 0, len(results))
	for _, res := range results {
		chunk, err := chunkFromResult(res)
		if err != nil {
			return nil, err
		}
		scored = append(scored, core.ScoredChunk{
			Chunk: chunk,
			Score: float64(res.Similarity),
		})
	}
	return scored, nil
}

// DeleteByDocument removes every chunk belonging to the given document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{metaDocumentID: documentID}, nil); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// Count reports the number of indexed chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

func chunkFromResult(res chromemgo.Result) (*core.Chunk, error) {
	id, err := strconv.ParseUint(res.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed chunk id %q in vector index: %w", res.ID, err)
	}

	chunk := &core.Chunk{
		Id:         core.ID(id),
		Text:       res.Content,
		DocumentID: res.Metadata[metaDocumentID],
		FileName:   res.Metadata[metaFileName],
		FolderID:   res.Metadata[metaFolderID],
	}
	if v := res.Metadata[metaStartCharIdx]; v != "" {
		chunk.StartCharIdx, _ = strconv.Atoi(v)
	}
	if v := res.Metadata[metaPageNumber]; v != "" {
		chunk.PageNumber, _ = strconv.Atoi(v)
	}
	return chunk, nil
}
