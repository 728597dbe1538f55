// Package ingestion turns source files into indexed chunks. Loading
// extracts text from PDF, DOCX, and plain text files; chunking segments the
// text at semantic boundaries while threading character offsets; the
// pipeline runs the whole flow as background tasks with persisted state.
package ingestion
