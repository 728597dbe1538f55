package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuquery/docuquery/core"
)

func lexChunk(text string) *core.Chunk {
	return &core.Chunk{
		Id:       core.IDFromContent(text),
		Text:     text,
		FileName: "corpus.txt",
	}
}

func TestLexicalIndexSearchRanksByRelevance(t *testing.T) {
	idx := NewLexicalIndex()
	idx.Add(
		lexChunk("badger is an embedded key-value database written in go"),
		lexChunk("the weather today is sunny with a light breeze"),
		lexChunk("badger badger badger stores keys and values on disk"),
	)

	results := idx.Search("badger database", 10)
	require.NotEmpty(t, results)

	// Both badger chunks match; the sunny chunk scores zero and is excluded.
	assert.Len(t, results, 2)
	for _, sc := range results {
		assert.Contains(t, sc.Chunk.Text, "badger")
		assert.Greater(t, sc.Score, 0.0)
	}
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestLexicalIndexSearchEmptyCorpus(t *testing.T) {
	idx := NewLexicalIndex()
	assert.Empty(t, idx.Search("anything", 5))
}

func TestLexicalIndexSearchEmptyQuery(t *testing.T) {
	idx := NewLexicalIndex()
	idx.Add(lexChunk("some content"))
	assert.Empty(t, idx.Search("   ", 5))
}

func TestLexicalIndexSearchLimitsResults(t *testing.T) {
	idx := NewLexicalIndex()
	idx.Add(
		lexChunk("alpha term one"),
		lexChunk("alpha term two"),
		lexChunk("alpha term three"),
	)

	results := idx.Search("alpha", 2)
	assert.Len(t, results, 2)
}

func TestLexicalIndexAddSkipsDuplicates(t *testing.T) {
	idx := NewLexicalIndex()
	chunk := lexChunk("duplicate detection content")

	idx.Add(chunk)
	idx.Add(chunk)

	assert.Equal(t, 1, idx.Len())
}

func TestLexicalIndexRemoveByDocument(t *testing.T) {
	idx := NewLexicalIndex()

	kept := lexChunk("content that stays indexed")
	kept.DocumentID = "doc-keep"
	gone := lexChunk("content that gets removed")
	gone.DocumentID = "doc-drop"

	idx.Add(kept, gone)
	idx.RemoveByDocument("doc-drop")

	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Search("removed", 5))
	assert.NotEmpty(t, idx.Search("stays", 5))
}

func TestLexicalIndexCaseInsensitive(t *testing.T) {
	idx := NewLexicalIndex()
	idx.Add(lexChunk("The Quick Brown Fox"))

	assert.NotEmpty(t, idx.Search("quick fox", 5))
	assert.NotEmpty(t, idx.Search("QUICK", 5))
}
