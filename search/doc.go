// Package search implements the retrieval side of the question-answering
// pipeline: BM25 keyword scoring, hybrid score fusion with a vector index,
// optional cross-encoder reranking, and citation extraction.
package search
