package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/ai/mock"
	"github.com/docuquery/docuquery/core"
)

func scoredChunks(texts ...string) []core.ScoredChunk {
	results := make([]core.ScoredChunk, len(texts))
	for i, text := range texts {
		results[i] = core.ScoredChunk{
			Chunk: &core.Chunk{Id: core.IDFromContent(text), Text: text, FileName: "f.txt"},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return results
}

func TestRerankFewResultsSkipsService(t *testing.T) {
	reranker := mock.NewMockReranker()
	results := scoredChunks("one", "two")

	got := Rerank(context.Background(), reranker, "q", results, 5)

	assert.Equal(t, results, got)
	assert.Equal(t, 0, reranker.CallCount())
}

func TestRerankNilServiceTruncates(t *testing.T) {
	results := scoredChunks("one", "two", "three", "four")

	got := Rerank(context.Background(), nil, "q", results, 2)

	require.Len(t, got, 2)
	assert.Equal(t, results[0], got[0])
	assert.Equal(t, results[1], got[1])
}

func TestRerankReordersAndRescores(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error) {
		return []ai.Ranking{
			{Index: 2, Score: 0.95},
			{Index: 0, Score: 0.40},
		}, nil
	}

	results := scoredChunks("one", "two", "three")
	got := Rerank(context.Background(), reranker, "q", results, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Chunk.Text)
	assert.InDelta(t, 0.95, got[0].Score, 1e-9)
	assert.Equal(t, "one", got[1].Chunk.Text)
	assert.InDelta(t, 0.40, got[1].Score, 1e-9)
}

func TestRerankServiceFailureTruncates(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error) {
		return nil, errors.New("service unavailable")
	}

	results := scoredChunks("one", "two", "three")
	got := Rerank(context.Background(), reranker, "q", results, 2)

	require.Len(t, got, 2)
	assert.Equal(t, results[0], got[0])
	assert.Equal(t, results[1], got[1])
}

func TestRerankOutOfRangeIndexTruncates(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error) {
		return []ai.Ranking{{Index: 99, Score: 0.9}}, nil
	}

	results := scoredChunks("one", "two", "three")
	got := Rerank(context.Background(), reranker, "q", results, 2)

	require.Len(t, got, 2)
	assert.Equal(t, results[0], got[0])
}
