// Package docuquery answers natural-language questions over a private
// document collection. Documents are indexed in the background into a
// hybrid lexical/semantic index; answers are generated by a language model
// from retrieved excerpts and returned with citations back to the sources.
package docuquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/index/chromem"
	"github.com/docuquery/docuquery/ingestion"
	"github.com/docuquery/docuquery/memory"
	"github.com/docuquery/docuquery/search"
	"github.com/docuquery/docuquery/storage"
	"github.com/docuquery/docuquery/storage/badger"
)

// Default retrieval tuning.
const (
	DefaultTopK               = 20
	DefaultRerankTopK         = 5
	DefaultRelevanceThreshold = 0.05
)

// User-facing fallback answers. These are returned without calling the
// language model and are never recorded in conversation history.
const (
	noResultsAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question."

	lowRelevanceAnswer = "I couldn't find any sufficiently relevant information to answer your question. " +
		"Please try rephrasing or asking about topics covered in your documents."
)

var (
	// ErrProviderRequired is returned when constructing a service without
	// an AI provider.
	ErrProviderRequired = errors.New("docuquery: AI provider is required")

	// ErrSessionNotFound is returned when a session id has no recorded
	// conversation. Distinct from a session with an empty history.
	ErrSessionNotFound = errors.New("docuquery: session not found")
)

// Answer is the result of a question: the generated text, the citations it
// was grounded on, and the session the exchange was recorded under.
type Answer struct {
	Answer    string          `json:"answer"`
	Sources   []core.Citation `json:"sources"`
	SessionID string          `json:"session_id"`
}

// Service wires storage, retrieval, conversation memory, and the ingestion
// pipeline into one question-answering system.
type Service struct {
	backend   *badger.Backend
	tasks     storage.TaskRepository
	chunks    storage.ChunkRepository
	vector    *chromem.Store
	retriever *search.HybridRetriever
	reranker  ai.Reranker
	provider  ai.Provider
	history   *memory.Store
	pipeline  *ingestion.Pipeline
	logger    *slog.Logger

	topK               int
	rerankTopK         int
	relevanceThreshold float64
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	reranker           ai.Reranker
	topK               int
	rerankTopK         int
	relevanceThreshold float64
	vectorWeight       float64
	historyBound       int
	inMemory           bool
	logger             *slog.Logger
	pipelineOpts       []ingestion.PipelineOption
}

// WithReranker enables reranking with the given service.
func WithReranker(reranker ai.Reranker) ServiceOption {
	return func(o *serviceOptions) {
		o.reranker = reranker
	}
}

// WithTopK sets how many chunks retrieval returns before reranking.
func WithTopK(k int) ServiceOption {
	return func(o *serviceOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithRerankTopK sets how many chunks survive reranking.
func WithRerankTopK(k int) ServiceOption {
	return func(o *serviceOptions) {
		if k > 0 {
			o.rerankTopK = k
		}
	}
}

// WithRelevanceThreshold sets the minimum score a chunk needs to reach the
// prompt.
func WithRelevanceThreshold(threshold float64) ServiceOption {
	return func(o *serviceOptions) {
		if threshold >= 0 {
			o.relevanceThreshold = threshold
		}
	}
}

// WithVectorWeight sets the semantic share of the fused retrieval score.
func WithVectorWeight(w float64) ServiceOption {
	return func(o *serviceOptions) {
		o.vectorWeight = w
	}
}

// WithHistoryBound sets how many conversation turns feed back into prompts.
func WithHistoryBound(bound int) ServiceOption {
	return func(o *serviceOptions) {
		if bound > 0 {
			o.historyBound = bound
		}
	}
}

// WithInMemoryStorage keeps all state in memory. Intended for tests and
// ephemeral sessions.
func WithInMemoryStorage() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.PipelineOption) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// NewService opens the databases under dataDir and assembles the pipeline.
// The lexical index is rebuilt from the persisted chunk corpus, so keyword
// search is warm immediately after a restart.
func NewService(dataDir string, provider ai.Provider, opts ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	options := &serviceOptions{
		topK:               DefaultTopK,
		rerankTopK:         DefaultRerankTopK,
		relevanceThreshold: DefaultRelevanceThreshold,
		vectorWeight:       search.DefaultVectorWeight,
		historyBound:       memory.DefaultBound,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "records"), options.inMemory)
	if err != nil {
		return nil, err
	}
	tasks := badger.NewTaskRepository(backend)
	chunks := badger.NewChunkRepository(backend)

	var vector *chromem.Store
	if options.inMemory {
		vector, err = chromem.NewMemoryStore(provider.Embedder())
	} else {
		vector, err = chromem.NewStore(filepath.Join(dataDir, "vectors"), provider.Embedder())
	}
	if err != nil {
		backend.Close()
		return nil, err
	}

	retriever, err := search.NewHybridRetriever(vector,
		search.WithVectorWeight(options.vectorWeight))
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Warm the lexical index from the persisted corpus.
	persisted, err := chunks.AllChunks(context.Background())
	if err != nil {
		backend.Close()
		return nil, err
	}
	retriever.AddChunks(persisted...)

	chunker, err := ingestion.NewChunker(provider.Segmenter())
	if err != nil {
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(tasks, chunks, vector, retriever, chunker,
		options.pipelineOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	options.logger.Info("service ready",
		"data_dir", dataDir, "chunks", len(persisted), "reranking", options.reranker != nil)

	return &Service{
		backend:            backend,
		tasks:              tasks,
		chunks:             chunks,
		vector:             vector,
		retriever:          retriever,
		reranker:           options.reranker,
		provider:           provider,
		history:            memory.NewStore(memory.WithBound(options.historyBound)),
		pipeline:           pipeline,
		logger:             options.logger,
		topK:               options.topK,
		rerankTopK:         options.rerankTopK,
		relevanceThreshold: options.relevanceThreshold,
	}, nil
}

// RetrieveAndAnswer answers a question from the indexed documents.
//
// An empty sessionID starts a new session; the minted id comes back in the
// answer so follow-up questions can continue the conversation. folderID,
// when set, restricts sources to that folder. Questions that retrieval
// cannot support are answered with a fixed fallback and recorded nowhere.
func (s *Service) RetrieveAndAnswer(ctx context.Context, query, sessionID, folderID string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, search.ErrEmptyQuery
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	results, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}
	if folderID != "" {
		results = filterByFolder(results, folderID)
	}
	if len(results) == 0 {
		return &Answer{Answer: noResultsAnswer, SessionID: sessionID}, nil
	}

	results = search.Rerank(ctx, s.reranker, query, results, s.rerankTopK)
	results = s.filterByRelevance(results)
	if len(results) == 0 {
		return &Answer{Answer: lowRelevanceAnswer, SessionID: sessionID}, nil
	}

	prompt := s.buildPrompt(query, sessionID, results)
	answer, err := s.provider.Completer().Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	citations := search.ExtractCitations(results, query)

	s.history.Add(sessionID, core.ConversationTurn{Role: core.RoleUser, Content: query})
	s.history.Add(sessionID, core.ConversationTurn{
		Role:    core.RoleAssistant,
		Content: answer,
		Sources: citations,
	})

	s.logger.Info("answered question",
		"session", sessionID, "sources", len(citations), "folder", folderID)

	return &Answer{Answer: answer, Sources: citations, SessionID: sessionID}, nil
}

// CreateIndexingTask schedules background indexing of the file and returns
// the task id for status polling.
func (s *Service) CreateIndexingTask(ctx context.Context, path string, opts ingestion.IngestOptions) (string, error) {
	return s.pipeline.CreateTask(ctx, path, opts)
}

// GetTaskStatus returns the current state of an indexing task.
func (s *Service) GetTaskStatus(ctx context.Context, id string) (*core.IndexTask, error) {
	return s.pipeline.GetTask(ctx, id)
}

// SessionHistory returns the retained turns of a session, oldest first.
// Returns ErrSessionNotFound for a session id that was never recorded.
func (s *Service) SessionHistory(sessionID string) ([]core.ConversationTurn, error) {
	if !s.history.Has(sessionID) {
		return nil, ErrSessionNotFound
	}
	return s.history.History(sessionID), nil
}

// ClearSession discards a session's conversation history.
// Returns ErrSessionNotFound for a session id that was never recorded.
func (s *Service) ClearSession(sessionID string) error {
	if !s.history.Has(sessionID) {
		return ErrSessionNotFound
	}
	s.history.Clear(sessionID)
	return nil
}

// DeleteDocument removes a document's chunks from every index.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.vector.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.chunks.DeleteChunksByDocument(ctx, documentID); err != nil {
		return err
	}
	s.retriever.RemoveDocument(documentID)
	return nil
}

// Close stops the pipeline and releases storage and provider resources.
func (s *Service) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}

func (s *Service) filterByRelevance(results []core.ScoredChunk) []core.ScoredChunk {
	kept := results[:0]
	for _, sc := range results {
		if sc.Score >= s.relevanceThreshold {
			kept = append(kept, sc)
		}
	}
	return kept
}

func filterByFolder(results []core.ScoredChunk, folderID string) []core.ScoredChunk {
	kept := results[:0]
	for _, sc := range results {
		if sc.Chunk.FolderID == folderID {
			kept = append(kept, sc)
		}
	}
	return kept
}

// buildPrompt assembles the completion prompt: numbered source excerpts,
// recent conversation history, then the question. Source numbering matches
// citation order so the model can reference sources by number.
func (s *Service) buildPrompt(query, sessionID string, results []core.ScoredChunk) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant that answers questions using only the provided document excerpts.\n")
	b.WriteString("If the excerpts do not contain the answer, say you don't know.\n\n")
	b.WriteString("Context from documents:\n")

	for i, sc := range results {
		chunk := sc.Chunk
		if page := chunkPage(chunk); page > 0 {
			fmt.Fprintf(&b, "[Source %d - %s (page %d)]\n", i+1, chunk.FileName, page)
		} else {
			fmt.Fprintf(&b, "[Source %d - %s]\n", i+1, chunk.FileName)
		}
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}

	if history := s.history.FormatForPrompt(sessionID); history != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\nAnswer:")
	return b.String()
}

// chunkPage mirrors citation page resolution: explicit page if known,
// otherwise estimated from the character offset.
func chunkPage(chunk *core.Chunk) int {
	if chunk.PageNumber > 0 {
		return chunk.PageNumber
	}
	if chunk.StartCharIdx > 0 {
		return chunk.StartCharIdx/3000 + 1
	}
	return 0
}
