package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL for the OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local server.
	Host string

	// APIKey authenticates against the API. Local OpenAI-compatible
	// services accept any value; "none" is used when empty.
	APIKey string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// CompletionModel is the model identifier for answer generation.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	CompletionModel string

	// Timeout bounds every external call. A timed-out call is treated as a
	// service failure by callers, never as a hang.
	// Default: 60s
	Timeout time.Duration

	// BreakpointPercentile controls the semantic segmenter: sentence gaps
	// whose embedding distance is above this percentile become span
	// boundaries. Default: 95
	BreakpointPercentile int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithTimeout sets the per-call timeout for external services.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithBreakpointPercentile sets the segmentation breakpoint percentile.
func WithBreakpointPercentile(p int) ConfigOption {
	return func(c *Config) {
		c.BreakpointPercentile = p
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:                 "http://localhost:11434/v1",
		EmbeddingModel:       "text-embedding-3-small",
		CompletionModel:      "gpt-4o-mini",
		Timeout:              60 * time.Second,
		BreakpointPercentile: 95,
	}
}

// NewConfig creates a Config with default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Adds the /v1 suffix to the host if missing, as required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// Missing required values are fatal at startup, not per request.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.CompletionModel == "" {
		return errors.New("ai config: CompletionModel is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.BreakpointPercentile < 1 || c.BreakpointPercentile > 100 {
		return errors.New("ai config: BreakpointPercentile must be between 1 and 100")
	}
	return nil
}
