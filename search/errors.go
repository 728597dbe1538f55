package search

import "errors"

var (
	// ErrVectorIndexRequired is returned when constructing a retriever
	// without a vector index.
	ErrVectorIndexRequired = errors.New("search: vector index is required")

	// ErrEmptyQuery is returned when a query string is blank.
	ErrEmptyQuery = errors.New("search: query must not be empty")

	// ErrInvalidWeight is returned when the vector weight is outside [0, 1].
	ErrInvalidWeight = errors.New("search: vector weight must be between 0 and 1")
)
