package search

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/docuquery/docuquery/core"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalization.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// LexicalIndex scores chunks against keyword queries with BM25.
//
// The index is rebuilt in full on every Add; corpora are small enough that
// incremental maintenance is not worth the bookkeeping. Reads take the read
// lock, so queries racing a rebuild see either the old or the new corpus,
// never a partial one.
type LexicalIndex struct {
	mu sync.RWMutex

	chunks    []*core.Chunk
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgDocLen float64
}

// NewLexicalIndex creates an empty lexical index.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{docFreq: make(map[string]int)}
}

// Add appends chunks to the corpus and rebuilds the index statistics.
// Chunks already present (same ID) are skipped.
func (idx *LexicalIndex) Add(chunks ...*core.Chunk) {
	if len(chunks) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[core.ID]bool, len(idx.chunks))
	for _, c := range idx.chunks {
		seen[c.Id] = true
	}
	for _, c := range chunks {
		if c == nil || seen[c.Id] {
			continue
		}
		seen[c.Id] = true
		idx.chunks = append(idx.chunks, c)
	}

	idx.rebuild()
}

// RemoveByDocument drops every chunk of the given document and rebuilds.
func (idx *LexicalIndex) RemoveByDocument(documentID string) {
	if documentID == "" {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.chunks[:0]
	for _, c := range idx.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	idx.chunks = kept

	idx.rebuild()
}

// Len reports the number of indexed chunks.
func (idx *LexicalIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// rebuild recomputes term statistics for the whole corpus.
// Callers must hold the write lock.
func (idx *LexicalIndex) rebuild() {
	idx.termFreqs = make([]map[string]int, len(idx.chunks))
	idx.docLens = make([]int, len(idx.chunks))
	idx.docFreq = make(map[string]int)

	totalLen := 0
	for i, chunk := range idx.chunks {
		terms := tokenize(chunk.Text)
		freqs := make(map[string]int, len(terms))
		for _, term := range terms {
			freqs[term]++
		}
		for term := range freqs {
			idx.docFreq[term]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = len(terms)
		totalLen += len(terms)
	}

	idx.avgDocLen = 0
	if len(idx.chunks) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(idx.chunks))
	}
}

// Search returns up to k chunks scored by BM25 against the query, highest
// first. Chunks scoring zero are excluded. Ties keep corpus order.
func (idx *LexicalIndex) Search(query string, k int) []core.ScoredChunk {
	terms := tokenize(query)
	if len(terms) == 0 || k < 1 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.chunks)
	if n == 0 {
		return nil
	}

	var results []core.ScoredChunk
	for i, chunk := range idx.chunks {
		score := 0.0
		for _, term := range terms {
			tf := idx.termFreqs[i][term]
			if tf == 0 {
				continue
			}
			df := idx.docFreq[term]
			idf := math.Log((float64(n-df)+0.5)/(float64(df)+0.5) + 1)
			norm := bm25K1 * (1 - bm25B + bm25B*float64(idx.docLens[i])/idx.avgDocLen)
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + norm)
		}
		if score > 0 {
			results = append(results, core.ScoredChunk{Chunk: chunk, Score: score})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// tokenize lowercases and splits on whitespace. Punctuation stays attached,
// matching the scoring behavior the rest of the pipeline was tuned against.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
