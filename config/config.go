// Package config loads application configuration from a YAML file with
// environment variable overrides. A .env file in the working directory is
// honored, so API keys stay out of the config file.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig configures the OpenAI-compatible model services.
type LLMConfig struct {
	Host            string `yaml:"host"`
	APIKeyEnv       string `yaml:"api_key_env"`
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionModel string `yaml:"completion_model"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
}

// RerankConfig configures the optional Cohere reranking service. Reranking
// is disabled when the key environment variable is unset.
type RerankConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// StorageConfig configures the on-disk databases.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// RetrievalConfig tunes the retrieval pipeline.
type RetrievalConfig struct {
	TopK               int     `yaml:"top_k"`
	RerankTopK         int     `yaml:"rerank_top_k"`
	VectorWeight       float64 `yaml:"vector_weight"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	HistoryBound       int     `yaml:"history_bound"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM       LLMConfig       `yaml:"llm"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Storage   StorageConfig   `yaml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LogLevel  string          `yaml:"log_level"`
}

// Load reads a config from the given path. A missing file returns defaults.
// Environment variables are loaded from .env first when present.
func Load(path string) (*AppConfig, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LLMAPIKey resolves the model API key from the environment.
func (c *AppConfig) LLMAPIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// RerankAPIKey resolves the rerank API key from the environment. Empty
// means reranking is disabled.
func (c *AppConfig) RerankAPIKey() string {
	return os.Getenv(c.Rerank.APIKeyEnv)
}

// LLMTimeout returns the model call timeout as a duration.
func (c *AppConfig) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.LLM.Host == "" {
		cfg.LLM.Host = "http://localhost:11434/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.LLM.CompletionModel == "" {
		cfg.LLM.CompletionModel = "gpt-4o-mini"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Rerank.APIKeyEnv == "" {
		cfg.Rerank.APIKeyEnv = "COHERE_API_KEY"
	}
	if cfg.Rerank.Model == "" {
		cfg.Rerank.Model = "rerank-english-v3.0"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 20
	}
	if cfg.Retrieval.RerankTopK == 0 {
		cfg.Retrieval.RerankTopK = 5
	}
	if cfg.Retrieval.VectorWeight == 0 {
		cfg.Retrieval.VectorWeight = 0.5
	}
	if cfg.Retrieval.RelevanceThreshold == 0 {
		cfg.Retrieval.RelevanceThreshold = 0.05
	}
	if cfg.Retrieval.HistoryBound == 0 {
		cfg.Retrieval.HistoryBound = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
