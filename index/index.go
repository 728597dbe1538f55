// Package index defines the vector index abstraction used by semantic
// retrieval. Implementations live in subpackages.
package index

import (
	"context"
	"errors"

	"github.com/docuquery/docuquery/core"
)

// ErrEmptyQuery is returned when a query string is blank.
var ErrEmptyQuery = errors.New("index: query must not be empty")

// VectorIndex stores chunk embeddings and answers nearest-neighbor queries.
// Implementations must be thread-safe for concurrent use.
type VectorIndex interface {
	// Upsert adds the chunks to the index, replacing any entries with the
	// same chunk ID.
	Upsert(ctx context.Context, chunks ...*core.Chunk) error

	// Query embeds the query text and returns up to k chunks ordered by
	// descending similarity. An index with fewer than k entries returns
	// all of them; an empty index returns no results and no error.
	Query(ctx context.Context, query string, k int) ([]core.ScoredChunk, error)

	// DeleteByDocument removes every chunk belonging to the given document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Count reports the number of indexed chunks.
	Count() int
}
