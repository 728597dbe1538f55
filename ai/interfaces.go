package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates natural-language answers from an assembled prompt.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends the prompt to the language model and returns its text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Segmenter splits full document text into semantically coherent spans.
// Span order follows source order; implementations decide boundary placement.
type Segmenter interface {
	// Split returns the ordered spans of the given text.
	// Empty input yields an empty result, not an error.
	Split(ctx context.Context, text string) ([]string, error)
}

// Ranking is one entry of a rerank response: the index of the candidate in
// the request order, and its relevance score in [0, 1].
type Ranking struct {
	Index int
	Score float64
}

// Reranker reorders candidate texts by relevance to a query using a
// cross-encoder relevance model.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank scores the candidate texts against the query and returns up to
	// topN rankings, most relevant first. Returned indices refer to the
	// input slice.
	Rerank(ctx context.Context, query string, texts []string, topN int) ([]Ranking, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. The reranking service is deliberately not part of the provider:
// it is an optional collaborator from a different vendor and the pipeline
// must keep working without it.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the completion service.
	Completer() Completer

	// Segmenter returns the semantic-boundary segmentation service.
	Segmenter() Segmenter

	// Close releases resources held by the provider and its services.
	Close() error
}
