// Package cohere implements reranking against the Cohere rerank API.
//
// Reranking is an optional refinement stage; the rest of the system keeps
// working when no Cohere credentials are configured.
package cohere
