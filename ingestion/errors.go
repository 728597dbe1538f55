package ingestion

import "errors"

var (
	// ErrUnsupportedFileType is returned when a file's extension has no
	// registered loader.
	ErrUnsupportedFileType = errors.New("ingestion: unsupported file type")

	// ErrEmptyDocument is returned when a file yields no extractable text.
	ErrEmptyDocument = errors.New("ingestion: document contains no extractable text")

	// ErrTaskRepositoryRequired is returned when constructing a pipeline
	// without a task repository.
	ErrTaskRepositoryRequired = errors.New("ingestion: task repository is required")

	// ErrChunkRepositoryRequired is returned when constructing a pipeline
	// without a chunk repository.
	ErrChunkRepositoryRequired = errors.New("ingestion: chunk repository is required")

	// ErrVectorIndexRequired is returned when constructing a pipeline
	// without a vector index.
	ErrVectorIndexRequired = errors.New("ingestion: vector index is required")

	// ErrRetrieverRequired is returned when constructing a pipeline
	// without a retriever.
	ErrRetrieverRequired = errors.New("ingestion: retriever is required")

	// ErrSegmenterRequired is returned when constructing a chunker without
	// a segmenter.
	ErrSegmenterRequired = errors.New("ingestion: segmenter is required")
)
