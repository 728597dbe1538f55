package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/docuquery/docuquery/ai"
)

const (
	// DefaultEndpoint is the Cohere v1 rerank API URL.
	DefaultEndpoint = "https://api.cohere.com/v1/rerank"

	// DefaultModel is the cross-encoder relevance model used for reranking.
	DefaultModel = "rerank-english-v3.0"

	defaultTimeout = 30 * time.Second
)

// ErrAPIKeyRequired is returned when constructing a reranker without credentials.
var ErrAPIKeyRequired = errors.New("cohere: API key is required")

// Reranker implements ai.Reranker against the Cohere rerank API.
type Reranker struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// RerankerOption is a functional option for configuring a Reranker.
type RerankerOption func(*Reranker)

// WithEndpoint overrides the rerank API URL.
func WithEndpoint(endpoint string) RerankerOption {
	return func(r *Reranker) {
		r.endpoint = endpoint
	}
}

// WithModel overrides the rerank model identifier.
func WithModel(model string) RerankerOption {
	return func(r *Reranker) {
		r.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) RerankerOption {
	return func(r *Reranker) {
		r.client.Timeout = timeout
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) RerankerOption {
	return func(r *Reranker) {
		r.logger = logger
	}
}

// NewReranker creates a reranker authenticated with the given API key.
// Callers that have no key should not construct a reranker at all; the
// retrieval pipeline treats a nil reranker as "reranking disabled".
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(apiKey string, opts ...RerankerOption) (ai.Reranker, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	r := &Reranker{
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   slog.Default().With("component", "cohere-reranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores the candidate texts against the query and returns up to topN
// rankings, most relevant first.
func (r *Reranker) Rerank(ctx context.Context, query string, texts []string, topN int) ([]ai.Ranking, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if topN > len(texts) {
		topN = len(texts)
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: texts,
		TopN:      topN,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("rerank request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.logger.Error("rerank request rejected", "status", resp.StatusCode, "body", string(snippet))
		return nil, fmt.Errorf("cohere: rerank request failed with status %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("cohere: failed to decode rerank response: %w", err)
	}

	rankings := make([]ai.Ranking, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		if res.Index < 0 || res.Index >= len(texts) {
			return nil, fmt.Errorf("cohere: rerank result index %d out of range", res.Index)
		}
		rankings = append(rankings, ai.Ranking{Index: res.Index, Score: res.RelevanceScore})
	}

	r.logger.Debug("reranked candidates", "candidates", len(texts), "returned", len(rankings))
	return rankings, nil
}
