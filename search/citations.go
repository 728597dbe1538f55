package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docuquery/docuquery/core"
)

const (
	// excerptLimit caps citation excerpt length in characters.
	excerptLimit = 200

	// charsPerPage estimates page numbers for sources that carry character
	// offsets but no explicit page, such as plain text files.
	charsPerPage = 3000
)

var citationSentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// ExtractCitations builds one citation per retrieval result, preserving
// result order. The excerpt is the part of the chunk most relevant to the
// query, capped at excerptLimit characters.
func ExtractCitations(results []core.ScoredChunk, query string) []core.Citation {
	citations := make([]core.Citation, 0, len(results))
	for _, sc := range results {
		citations = append(citations, core.Citation{
			Document:   sc.Chunk.FileName,
			DocumentID: sc.Chunk.DocumentID,
			Page:       citationPage(sc.Chunk),
			Excerpt:    buildExcerpt(sc.Chunk.Text, query),
			Score:      math.Round(sc.Score*10000) / 10000,
		})
	}
	return citations
}

// citationPage resolves the page a chunk came from. Chunks from paginated
// sources carry an explicit page; for the rest the page is estimated from
// the character offset. Zero means unknown.
func citationPage(chunk *core.Chunk) int {
	if chunk.PageNumber > 0 {
		return chunk.PageNumber
	}
	if chunk.StartCharIdx > 0 {
		return chunk.StartCharIdx/charsPerPage + 1
	}
	return 0
}

// buildExcerpt selects the sentences of text most relevant to the query and
// joins as many as fit within excerptLimit. Shortened excerpts get a
// trailing ellipsis.
func buildExcerpt(text, query string) string {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLimit {
		return text
	}

	sentences := splitExcerptSentences(text)
	ranked := rankSentences(sentences, query)

	var parts []string
	length := 0
	for _, s := range ranked {
		if length+len(s)+2 > excerptLimit {
			break
		}
		parts = append(parts, s)
		length += len(s) + 2
	}

	if len(parts) == 0 {
		return text[:excerptLimit] + "..."
	}
	return strings.Join(parts, ". ") + "..."
}

// splitExcerptSentences splits on sentence-ending punctuation followed by
// whitespace, dropping the terminators. Text that never ends a sentence
// comes back as a single entry.
func splitExcerptSentences(text string) []string {
	marked := citationSentenceEnd.ReplaceAllString(text, "\x00")

	var sentences []string
	for _, s := range strings.Split(marked, "\x00") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// rankSentences orders sentences by how many distinct query words they
// contain, most matches first. Words match as substrings, so "compact"
// counts against "compaction". Ties keep source order, so with no matches
// at all the excerpt is simply the start of the chunk.
func rankSentences(sentences []string, query string) []string {
	var queryWords []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if !seen[w] {
			seen[w] = true
			queryWords = append(queryWords, w)
		}
	}

	type scored struct {
		sentence string
		matches  int
	}

	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		lower := strings.ToLower(s)
		matches := 0
		for _, w := range queryWords {
			if strings.Contains(lower, w) {
				matches++
			}
		}
		ranked[i] = scored{sentence: s, matches: matches}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].matches > ranked[b].matches
	})

	ordered := make([]string, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.sentence
	}
	return ordered
}
