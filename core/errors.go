package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidTask indicates an IndexTask failed validation.
	ErrInvalidTask = errors.New("invalid indexing task")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrNegativeOffset indicates a negative start offset.
	ErrNegativeOffset = errors.New("start offset cannot be negative")

	// ErrEmptyTaskID indicates the task Id field is empty.
	ErrEmptyTaskID = errors.New("task id cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidTaskStatus indicates an invalid TaskStatus value.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
