// Package ai defines the interfaces for the external AI services consumed by
// the retrieval pipeline: text embedding, answer completion, semantic
// segmentation, and cross-encoder reranking.
//
// The pipeline treats every one of these as fallible and bounded. Embedding
// and completion are mandatory collaborators whose misconfiguration is fatal
// at startup; reranking is optional and its absence or failure degrades
// gracefully without surfacing errors to callers.
package ai
