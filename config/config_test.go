package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 20, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Retrieval.RerankTopK)
	assert.Equal(t, 0.5, cfg.Retrieval.VectorWeight)
	assert.Equal(t, 0.05, cfg.Retrieval.RelevanceThreshold)
	assert.Equal(t, 10, cfg.Retrieval.HistoryBound)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  host: http://llm.internal:8080
  completion_model: qwen2.5:3b
  timeout_secs: 15
retrieval:
  top_k: 8
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://llm.internal:8080", cfg.LLM.Host)
	assert.Equal(t, "qwen2.5:3b", cfg.LLM.CompletionModel)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unset fields still get defaults.
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 5, cfg.Retrieval.RerankTopK)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyResolution(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("COHERE_API_KEY", "co-test")

	assert.Equal(t, "sk-test", cfg.LLMAPIKey())
	assert.Equal(t, "co-test", cfg.RerankAPIKey())
}
