package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuquery/docuquery/core"
)

// fakeVectorIndex is an in-test vector index with scripted results.
type fakeVectorIndex struct {
	results []core.ScoredChunk
	err     error
	queries int
}

func (f *fakeVectorIndex) Upsert(ctx context.Context, chunks ...*core.Chunk) error {
	return nil
}

func (f *fakeVectorIndex) Query(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeVectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	return nil
}

func (f *fakeVectorIndex) Count() int {
	return len(f.results)
}

func TestNewHybridRetrieverRequiresVectorIndex(t *testing.T) {
	_, err := NewHybridRetriever(nil)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)
}

func TestNewHybridRetrieverRejectsBadWeight(t *testing.T) {
	_, err := NewHybridRetriever(&fakeVectorIndex{}, WithVectorWeight(1.5))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = NewHybridRetriever(&fakeVectorIndex{}, WithVectorWeight(-0.1))
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r, err := NewHybridRetriever(&fakeVectorIndex{})
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveLexicalOnlyNormalization(t *testing.T) {
	r, err := NewHybridRetriever(&fakeVectorIndex{}, WithVectorWeight(0.5))
	require.NoError(t, err)

	r.AddChunks(
		lexChunk("badger database storage engine"),
		lexChunk("badger appears once here"),
	)

	results, err := r.Retrieve(context.Background(), "badger database", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Top lexical hit normalizes to 1.0 and carries weight (1 - w) = 0.5.
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestRetrieveFusesBothSources(t *testing.T) {
	shared := lexChunk("badger database overlap chunk")
	vecOnly := &core.Chunk{
		Id:       core.IDFromContent("vector only"),
		Text:     "semantically related but lexically distant",
		FileName: "corpus.txt",
	}

	vector := &fakeVectorIndex{results: []core.ScoredChunk{
		{Chunk: shared, Score: 0.8},
		{Chunk: vecOnly, Score: 0.4},
	}}

	r, err := NewHybridRetriever(vector, WithVectorWeight(0.5))
	require.NoError(t, err)
	r.AddChunks(shared, lexChunk("unrelated filler text entirely"))

	results, err := r.Retrieve(context.Background(), "badger database", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The shared chunk appears once with both contributions:
	// 0.5*1.0 (top lexical) + 0.5*1.0 (top vector) = 1.0.
	assert.Equal(t, shared.Id, results[0].Chunk.Id)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	// Vector-only chunk gets 0.5 * (0.4/0.8) = 0.25.
	assert.Equal(t, vecOnly.Id, results[1].Chunk.Id)
	assert.InDelta(t, 0.25, results[1].Score, 1e-9)
}

func TestRetrieveDegradesOnVectorFailure(t *testing.T) {
	vector := &fakeVectorIndex{err: errors.New("connection refused")}

	r, err := NewHybridRetriever(vector)
	require.NoError(t, err)
	r.AddChunks(lexChunk("badger lexical fallback content"))

	results, err := r.Retrieve(context.Background(), "badger", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, vector.queries)
}

func TestRetrieveLimitsResults(t *testing.T) {
	r, err := NewHybridRetriever(&fakeVectorIndex{})
	require.NoError(t, err)

	r.AddChunks(
		lexChunk("common term first"),
		lexChunk("common term second"),
		lexChunk("common term third"),
	)

	results, err := r.Retrieve(context.Background(), "common", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
