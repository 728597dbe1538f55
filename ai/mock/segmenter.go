package mock

import (
	"context"
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// MockSegmenter is a test double for ai.Segmenter.
// The default behavior groups sentences into fixed-size spans, which keeps
// chunk boundaries deterministic without any embedding calls.
type MockSegmenter struct {
	// SplitFunc is called by Split if set.
	SplitFunc func(ctx context.Context, text string) ([]string, error)

	// SentencesPerSpan controls the default grouping. Default: 3.
	SentencesPerSpan int

	callCount int
}

// NewMockSegmenter creates a mock segmenter with default behavior.
func NewMockSegmenter() *MockSegmenter {
	return &MockSegmenter{SentencesPerSpan: 3}
}

// Split groups sentences into spans of SentencesPerSpan.
func (m *MockSegmenter) Split(ctx context.Context, text string) ([]string, error) {
	m.callCount++

	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, text)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	per := m.SentencesPerSpan
	if per < 1 {
		per = 3
	}

	// Keep terminators attached to their sentence.
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	sentences := strings.Split(marked, "\x00")

	var spans []string
	for i := 0; i < len(sentences); i += per {
		end := i + per
		if end > len(sentences) {
			end = len(sentences)
		}
		span := strings.TrimSpace(strings.Join(sentences[i:end], " "))
		if span != "" {
			spans = append(spans, span)
		}
	}
	return spans, nil
}

// CallCount returns the number of times Split was called.
func (m *MockSegmenter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSegmenter) Reset() {
	m.callCount = 0
	m.SplitFunc = nil
}
