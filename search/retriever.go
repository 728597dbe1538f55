package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/index"
)

// DefaultVectorWeight balances lexical and semantic scores evenly.
const DefaultVectorWeight = 0.5

// HybridRetriever combines BM25 keyword search with vector similarity
// search. Scores from each source are max-normalized to [0, 1] and fused as
//
//	(1 - w) * lexical + w * vector
//
// where w is the vector weight. A chunk found by both sources gets both
// contributions; a chunk found by one source keeps only that term.
type HybridRetriever struct {
	lexical      *LexicalIndex
	vector       index.VectorIndex
	vectorWeight float64
	logger       *slog.Logger
}

// RetrieverOption is a functional option for configuring a HybridRetriever.
type RetrieverOption func(*HybridRetriever)

// WithVectorWeight sets the semantic share of the fused score.
func WithVectorWeight(w float64) RetrieverOption {
	return func(r *HybridRetriever) {
		r.vectorWeight = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) RetrieverOption {
	return func(r *HybridRetriever) {
		r.logger = logger
	}
}

// NewHybridRetriever creates a retriever over the given vector index with an
// empty lexical corpus.
func NewHybridRetriever(vector index.VectorIndex, opts ...RetrieverOption) (*HybridRetriever, error) {
	if vector == nil {
		return nil, ErrVectorIndexRequired
	}

	r := &HybridRetriever{
		lexical:      NewLexicalIndex(),
		vector:       vector,
		vectorWeight: DefaultVectorWeight,
		logger:       slog.Default().With("component", "hybrid-retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.vectorWeight < 0 || r.vectorWeight > 1 {
		return nil, ErrInvalidWeight
	}
	return r, nil
}

// AddChunks registers chunks with the lexical index. The vector index is
// populated separately by the ingestion pipeline.
func (r *HybridRetriever) AddChunks(chunks ...*core.Chunk) {
	r.lexical.Add(chunks...)
}

// RemoveDocument drops a document's chunks from the lexical index.
func (r *HybridRetriever) RemoveDocument(documentID string) {
	r.lexical.RemoveByDocument(documentID)
}

// ChunkCount reports the size of the lexical corpus.
func (r *HybridRetriever) ChunkCount() int {
	return r.lexical.Len()
}

// Retrieve returns up to k chunks ranked by the fused score.
//
// Each source is asked for 2k candidates so fusion has enough overlap to
// work with. A vector index failure degrades to lexical-only results rather
// than failing the query.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k < 1 {
		return nil, nil
	}

	lexResults := r.lexical.Search(query, 2*k)

	vecResults, err := r.vector.Query(ctx, query, 2*k)
	if err != nil {
		r.logger.Warn("vector search failed, using lexical results only", "err", err)
		vecResults = nil
	}

	fused := fuseScores(lexResults, vecResults, r.vectorWeight)
	if len(fused) > k {
		fused = fused[:k]
	}

	r.logger.Debug("retrieved chunks",
		"lexical", len(lexResults), "vector", len(vecResults), "fused", len(fused))
	return fused, nil
}

// fuseScores max-normalizes each result list and merges them by chunk ID.
// The merged list is sorted by fused score descending; ties keep discovery
// order (lexical results first, then vector).
func fuseScores(lexical, vector []core.ScoredChunk, vectorWeight float64) []core.ScoredChunk {
	maxLex := maxScore(lexical)
	maxVec := maxScore(vector)

	type entry struct {
		chunk *core.Chunk
		score float64
		order int
	}

	merged := make(map[core.ID]*entry)
	var ids []core.ID

	for _, sc := range lexical {
		norm := 0.0
		if maxLex > 0 {
			norm = sc.Score / maxLex
		}
		merged[sc.Chunk.Id] = &entry{
			chunk: sc.Chunk,
			score: (1 - vectorWeight) * norm,
			order: len(ids),
		}
		ids = append(ids, sc.Chunk.Id)
	}

	for _, sc := range vector {
		norm := 0.0
		if maxVec > 0 {
			norm = sc.Score / maxVec
		}
		if e, ok := merged[sc.Chunk.Id]; ok {
			e.score += vectorWeight * norm
		} else {
			merged[sc.Chunk.Id] = &entry{
				chunk: sc.Chunk,
				score: vectorWeight * norm,
				order: len(ids),
			}
			ids = append(ids, sc.Chunk.Id)
		}
	}

	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, merged[id])
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].score > entries[b].score
	})

	results := make([]core.ScoredChunk, len(entries))
	for i, e := range entries {
		results[i] = core.ScoredChunk{Chunk: e.chunk, Score: e.score}
	}
	return results
}

func maxScore(results []core.ScoredChunk) float64 {
	max := 0.0
	for _, sc := range results {
		if sc.Score > max {
			max = sc.Score
		}
	}
	return max
}
