// Package openai provides ai service implementations backed by
// OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The embedder and completer wrap langchaingo clients; the segmenter builds
// on the embedder to place chunk boundaries at semantic shifts between
// sentences.
package openai
