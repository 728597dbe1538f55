package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for retrievable chunks.
// It is generated by content-based hashing so that identical spans of the
// same source produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser represents the querying user.
	RoleUser Role = iota + 1
	// RoleAssistant represents the answering assistant.
	RoleAssistant
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// TaskStatus is the lifecycle state of an indexing task.
// Processing is the only non-terminal state; a task transitions exactly once
// to Completed or Failed and is immutable afterwards.
type TaskStatus int

const (
	// TaskStatusProcessing means the background job has not finished.
	TaskStatusProcessing TaskStatus = iota + 1
	// TaskStatusCompleted means indexing finished successfully.
	TaskStatusCompleted
	// TaskStatusFailed means indexing failed; Error holds the reason.
	TaskStatusFailed
)

// String returns the lowercase wire name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusProcessing:
		return "processing"
	case TaskStatusCompleted:
		return "completed"
	case TaskStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status permits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Chunk is an immutable unit of retrievable document text.
// Chunks are created by the chunker during ingestion and never mutated;
// they are destroyed only when their parent document is deleted.
// The embedding vector is owned by the vector index, not the chunk.
type Chunk struct {
	Id           ID
	Text         string
	DocumentID   string // parent document identifier, may be empty
	FileName     string // user-facing source filename, "unknown" if absent
	FolderID     string // owning folder identifier, may be empty
	StartCharIdx int    // offset within the source document, per filename
	PageNumber   int    // explicit source page, 0 when unknown
	CreatedAt    time.Time
}

// ScoredChunk pairs a chunk with a retriever-local relevance score.
// It is transient and exists only within a single retrieval or rerank call.
type ScoredChunk struct {
	Chunk *Chunk
	Score float64
}

// Citation is a user-facing evidence record extracted from a ranked chunk.
type Citation struct {
	Document   string  `json:"document"`
	DocumentID string  `json:"document_id,omitempty"`
	Page       int     `json:"page,omitempty"` // 0 when unknown
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"relevance_score"`
}

// ConversationTurn is a single message in a session transcript.
type ConversationTurn struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Sources   []Citation // citations attached to assistant turns
}

// IndexTask tracks the lifecycle of one asynchronous document ingestion.
// Created in processing state at upload time and persisted so that status
// queries survive process restarts.
type IndexTask struct {
	Id          string
	FileName    string
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt time.Time // zero until completed
	FailedAt    time.Time // zero until failed
	ChunkCount  int
	PageCount   int
	Error       string
}
