package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - StartCharIdx must not be negative
//
// NOT validated:
//   - PageNumber (0 is valid and means unknown)
//   - DocumentID and FolderID (optional)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.StartCharIdx < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeOffset)
	}

	return nil
}

// ValidateTask validates an IndexTask according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Status must be a known state
func ValidateTask(task *IndexTask) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}

	if task.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrEmptyTaskID)
	}

	if err := ValidateTaskStatus(task.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	return nil
}

// ValidateTaskStatus validates that a TaskStatus has a valid value.
func ValidateTaskStatus(status TaskStatus) error {
	switch status {
	case TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidTaskStatus, status)
	}
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
