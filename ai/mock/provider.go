package mock

import "github.com/docuquery/docuquery/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder, completer, and segmenter instances.
type MockProvider struct {
	embedder  *MockEmbedder
	completer *MockCompleter
	segmenter *MockSegmenter
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbedder() and friends to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		completer: NewMockCompleter(),
		segmenter: NewMockSegmenter(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(embedder *MockEmbedder, completer *MockCompleter, segmenter *MockSegmenter) ai.Provider {
	return &MockProvider{
		embedder:  embedder,
		completer: completer,
		segmenter: segmenter,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the mock completer.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// Segmenter returns the mock segmenter.
func (p *MockProvider) Segmenter() ai.Segmenter {
	return p.segmenter
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter returns the underlying mock completer for test assertions.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}

// GetMockSegmenter returns the underlying mock segmenter for test assertions.
func (p *MockProvider) GetMockSegmenter() *MockSegmenter {
	return p.segmenter
}
