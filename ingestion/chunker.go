package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/core"
)

var (
	separatorRuns = regexp.MustCompile(`[=\-_*]{3,}`)
	lineBreaks    = regexp.MustCompile(`[\n\r\t]+`)
	spaceRuns     = regexp.MustCompile(`\s{2,}`)
)

// normalizeText flattens document text before segmentation: decorative
// separator runs and line breaks become spaces, runs of whitespace collapse
// to one. Offsets computed afterwards are offsets into this normalized
// text, consistently across chunking and citation page estimation.
func normalizeText(text string) string {
	text = separatorRuns.ReplaceAllString(text, " ")
	text = lineBreaks.ReplaceAllString(text, " ")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunker turns loaded documents into chunks using semantic segmentation.
//
// Character offsets accumulate per file name across all documents sharing
// it, so the pages of a multi-page source thread into one continuous offset
// space. Chunk IDs are derived from file name, offset, and text, making
// re-ingestion of identical content idempotent.
type Chunker struct {
	segmenter ai.Segmenter
}

// NewChunker creates a chunker over the given segmenter.
func NewChunker(segmenter ai.Segmenter) (*Chunker, error) {
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	return &Chunker{segmenter: segmenter}, nil
}

// Chunk converts the documents into ordered chunks. Documents with no text
// after normalization contribute nothing; an entirely empty input yields no
// chunks and no error.
func (c *Chunker) Chunk(ctx context.Context, docs []SourceDocument) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	offsets := make(map[string]int)

	for _, doc := range docs {
		text := normalizeText(doc.Text)
		if text == "" {
			continue
		}

		fileName := doc.FileName
		if fileName == "" {
			fileName = "unknown"
		}

		spans, err := c.segmenter.Split(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to segment %s: %w", fileName, err)
		}

		offset := offsets[fileName]
		for _, span := range spans {
			span = strings.TrimSpace(span)
			if span == "" {
				continue
			}
			chunks = append(chunks, &core.Chunk{
				Id:           core.IDFromContent(fmt.Sprintf("%s:%d:%s", fileName, offset, span)),
				Text:         span,
				FileName:     fileName,
				StartCharIdx: offset,
				PageNumber:   doc.PageNumber,
			})
			offset += len(span)
		}
		offsets[fileName] = offset
	}

	return chunks, nil
}
