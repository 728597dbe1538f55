package openai

import (
	"log/slog"

	"github.com/docuquery/docuquery/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages embedder, completer, and segmenter instances.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	completer *Completer
	segmenter *Segmenter
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use; an invalid config is a
// startup failure, not something recovered per request.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		completer: completer,
		segmenter: newSegmenter(config, embedder),
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the completion service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Segmenter returns the semantic segmentation service.
func (p *Provider) Segmenter() ai.Segmenter {
	return p.segmenter
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
