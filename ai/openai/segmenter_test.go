package openai

import (
	"context"
	"testing"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence. Second one! Third? Fourth")
	assert.Equal(t, []string{"First sentence.", "Second one!", "Third?", "Fourth"}, sentences)
}

func TestPercentileOf(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5}

	assert.InDelta(t, 0.5, percentileOf(values, 100), 1e-9)
	assert.InDelta(t, 0.1, percentileOf(values, 0), 1e-9)
	assert.InDelta(t, 0.3, percentileOf(values, 50), 1e-9)
	assert.Equal(t, 0.0, percentileOf(nil, 95))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 0}))
}

func TestSegmenterSplitEmptyText(t *testing.T) {
	s := newSegmenter(ai.DefaultConfig(), mock.NewMockEmbedder())

	spans, err := s.Split(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestSegmenterSplitShortText(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	s := newSegmenter(ai.DefaultConfig(), embedder)

	spans, err := s.Split(context.Background(), "One sentence. Another sentence.")
	require.NoError(t, err)
	assert.Equal(t, []string{"One sentence. Another sentence."}, spans)
	assert.Equal(t, 0, embedder.CallCount(), "short texts must not be embedded")
}

func TestSegmenterSplitBreaksAtSemanticShift(t *testing.T) {
	// Two sentences about one topic, then two about another. The injected
	// embeddings make the middle gap the only large distance.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			if i < 2 {
				vectors[i] = []float32{1, 0}
			} else {
				vectors[i] = []float32{0, 1}
			}
		}
		return vectors, nil
	}

	s := newSegmenter(ai.NewConfig(ai.WithBreakpointPercentile(90)), embedder)

	spans, err := s.Split(context.Background(), "Cats purr. Cats nap. Stocks rose. Bonds fell.")
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "Cats purr. Cats nap.", spans[0])
	assert.Equal(t, "Stocks rose. Bonds fell.", spans[1])
}
