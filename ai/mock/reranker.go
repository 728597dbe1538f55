package mock

import (
	"context"

	"github.com/docuquery/docuquery/ai"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via a function field.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, returns an identity permutation with evenly descending scores.
	RerankFunc func(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default deterministic behavior.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank returns up to topN rankings in input order with descending scores.
func (m *MockReranker) Rerank(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, texts, topN)
	}

	n := topN
	if n > len(texts) {
		n = len(texts)
	}

	rankings := make([]ai.Ranking, n)
	for i := 0; i < n; i++ {
		rankings[i] = ai.Ranking{
			Index: i,
			Score: 1.0 - float64(i)/float64(len(texts)+1),
		}
	}
	return rankings, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}
