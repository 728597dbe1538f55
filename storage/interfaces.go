package storage

import (
	"context"
	"time"

	"github.com/docuquery/docuquery/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// TaskRepository persists indexing task records.
// Records must be visible to readers in other processes or goroutines as
// soon as a transition commits; status polling and the background job that
// drives the transition never share in-process state.
type TaskRepository interface {
	Repository

	// CreateTask persists a new task in the processing state.
	// Sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if a task with the same id exists.
	CreateTask(ctx context.Context, task *core.IndexTask) error

	// CompleteTask transitions a processing task to completed, recording
	// chunk count, page count, and the completion timestamp.
	// Returns ErrNotFound for unknown ids and ErrTaskTerminal if the task
	// already reached a terminal state.
	CompleteTask(ctx context.Context, id string, chunks, pages int) (*core.IndexTask, error)

	// FailTask transitions a processing task to failed, recording the error
	// message and the failure timestamp.
	// Returns ErrNotFound for unknown ids and ErrTaskTerminal if the task
	// already reached a terminal state.
	FailTask(ctx context.Context, id string, message string) (*core.IndexTask, error)

	// GetTask retrieves a task record by id.
	// Returns ErrNotFound if the task was never created.
	GetTask(ctx context.Context, id string) (*core.IndexTask, error)

	// FailStale transitions processing tasks created before now-olderThan to
	// failed. A crash mid-job otherwise leaves such records processing
	// forever. Returns the number of tasks transitioned.
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// ChunkRepository persists chunks so the lexical index can be rebuilt from
// the full corpus after a restart.
type ChunkRepository interface {
	Repository

	// AddChunks persists one or more chunks. Existing chunks with the same
	// id are overwritten; chunk ids are content-derived, so this is a no-op
	// rewrite of identical data.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a single chunk by id.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// AllChunks retrieves every persisted chunk in stable key order.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks belonging to a document.
	// Removing chunks for an unknown document is not an error.
	DeleteChunksByDocument(ctx context.Context, documentID string) error
}
