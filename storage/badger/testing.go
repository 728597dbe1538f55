package badger

import "github.com/docuquery/docuquery/storage"

// NewMemoryRepositories creates in-memory task and chunk repositories for testing.
// Returns taskRepo, chunkRepo, backend, and error.
// Caller must close both repos and the backend when done.
func NewMemoryRepositories() (storage.TaskRepository, storage.ChunkRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	taskRepo := NewTaskRepository(backend)
	chunkRepo := NewChunkRepository(backend)

	return taskRepo, chunkRepo, backend, nil
}
