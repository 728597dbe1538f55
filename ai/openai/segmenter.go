package openai

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docuquery/docuquery/ai"
)

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// Segmenter implements ai.Segmenter by placing span boundaries at semantic
// shifts. Adjacent sentences are embedded and the cosine distance between
// each consecutive pair is computed; gaps whose distance exceeds the
// configured percentile become boundaries.
type Segmenter struct {
	embedder   ai.Embedder
	percentile int
	logger     *slog.Logger
}

// newSegmenter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSegmenter(config *ai.Config, embedder ai.Embedder) *Segmenter {
	return &Segmenter{
		embedder:   embedder,
		percentile: config.BreakpointPercentile,
		logger:     slog.Default().With("component", "semantic-segmenter"),
	}
}

// NewSegmenter creates a semantic segmenter backed by the given embedder.
//
// Returns ai.Segmenter interface to enforce abstraction.
func NewSegmenter(config *ai.Config, embedder ai.Embedder) ai.Segmenter {
	return newSegmenter(config, embedder)
}

// Split returns the ordered semantic spans of the given text.
// Texts with fewer than three sentences are returned as a single span;
// there are not enough gaps to estimate a breakpoint threshold.
func (s *Segmenter) Split(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	sentences := splitSentences(text)
	if len(sentences) < 3 {
		return []string{text}, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		s.logger.Error("failed to embed sentences for segmentation", "count", len(sentences), "err", err)
		return nil, err
	}
	if len(vectors) != len(sentences) {
		s.logger.Warn("embedding count mismatch, returning single span",
			"sentences", len(sentences), "vectors", len(vectors))
		return []string{text}, nil
	}

	distances := make([]float64, len(sentences)-1)
	for i := 0; i < len(distances); i++ {
		distances[i] = 1 - cosineSimilarity(vectors[i], vectors[i+1])
	}

	threshold := percentileOf(distances, s.percentile)

	var spans []string
	start := 0
	for i, d := range distances {
		if d > threshold {
			spans = append(spans, joinSentences(sentences[start:i+1]))
			start = i + 1
		}
	}
	spans = append(spans, joinSentences(sentences[start:]))

	s.logger.Debug("segmented text", "sentences", len(sentences), "spans", len(spans))
	return spans, nil
}

// splitSentences breaks text on sentence terminators, keeping the terminator
// attached to its sentence.
func splitSentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func joinSentences(sentences []string) string {
	return strings.TrimSpace(strings.Join(sentences, " "))
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Zero vectors yield 0, which maps to the maximum distance.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// percentileOf returns the p-th percentile of values using linear
// interpolation between closest ranks.
func percentileOf(values []float64, p int) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := float64(p) / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}
