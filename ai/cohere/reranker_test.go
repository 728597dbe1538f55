package cohere

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRerankerRequiresAPIKey(t *testing.T) {
	_, err := NewReranker("")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestRerankParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "what is badger", req.Query)
		assert.Len(t, req.Documents, 3)
		assert.Equal(t, 2, req.TopN)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.91},
				{"index": 0, "relevance_score": 0.44},
			},
		})
	}))
	defer server.Close()

	reranker, err := NewReranker("test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	rankings, err := reranker.Rerank(context.Background(), "what is badger",
		[]string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, 2, rankings[0].Index)
	assert.InDelta(t, 0.91, rankings[0].Score, 1e-9)
	assert.Equal(t, 0, rankings[1].Index)
}

func TestRerankClampsTopN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.TopN)

		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer server.Close()

	reranker, err := NewReranker("test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = reranker.Rerank(context.Background(), "q", []string{"a", "b"}, 10)
	require.NoError(t, err)
}

func TestRerankErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api token", http.StatusUnauthorized)
	}))
	defer server.Close()

	reranker, err := NewReranker("bad-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = reranker.Rerank(context.Background(), "q", []string{"a"}, 1)
	assert.ErrorContains(t, err, "status 401")
}

func TestRerankEmptyCandidates(t *testing.T) {
	reranker, err := NewReranker("test-key")
	require.NoError(t, err)

	rankings, err := reranker.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, rankings)
}

func TestRerankRejectsOutOfRangeIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 7, "relevance_score": 0.5}},
		})
	}))
	defer server.Close()

	reranker, err := NewReranker("test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = reranker.Rerank(context.Background(), "q", []string{"a"}, 1)
	assert.ErrorContains(t, err, "out of range")
}
