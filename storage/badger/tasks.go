package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
// Every transition runs in its own short-lived transaction, so concurrent
// writers (one per ingestion job) and concurrent status readers never hold
// locks across external service calls.
type TaskRepository struct {
	backend *Backend
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) *TaskRepository {
	return &TaskRepository{backend: backend}
}

// Close releases repository resources.
func (r *TaskRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TaskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateTask persists a new task in the processing state.
func (r *TaskRepository) CreateTask(ctx context.Context, task *core.IndexTask) error {
	if task.Status == 0 {
		task.Status = core.TaskStatusProcessing
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if err := core.ValidateTask(task); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTaskKey(task.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(key, storage.MarshalTask(task)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CompleteTask transitions a processing task to completed.
func (r *TaskRepository) CompleteTask(ctx context.Context, id string, chunks, pages int) (*core.IndexTask, error) {
	return r.transition(id, func(task *core.IndexTask) {
		task.Status = core.TaskStatusCompleted
		task.CompletedAt = time.Now().UTC()
		task.ChunkCount = chunks
		task.PageCount = pages
	})
}

// FailTask transitions a processing task to failed.
func (r *TaskRepository) FailTask(ctx context.Context, id string, message string) (*core.IndexTask, error) {
	return r.transition(id, func(task *core.IndexTask) {
		task.Status = core.TaskStatusFailed
		task.FailedAt = time.Now().UTC()
		task.Error = message
	})
}

// transition applies a terminal mutation to a processing task.
func (r *TaskRepository) transition(id string, mutate func(*core.IndexTask)) (*core.IndexTask, error) {
	var result *core.IndexTask
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTaskKey(id)
		task, err := readTask(tx, key)
		if err != nil {
			return err
		}
		if task == nil {
			return storage.ErrNotFound
		}
		if task.Status.Terminal() {
			return storage.ErrTaskTerminal
		}

		mutate(task)

		if err := tx.Set(key, storage.MarshalTask(task)); err != nil {
			return err
		}
		result = task
		return tx.Commit()
	}, true)
	return result, err
}

// GetTask retrieves a task record by id.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (*core.IndexTask, error) {
	var result *core.IndexTask
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		task, err := readTask(tx, makeTaskKey(id))
		if err != nil {
			return err
		}
		if task == nil {
			return storage.ErrNotFound
		}
		result = task
		return nil
	}, false)
	return result, err
}

// FailStale transitions processing tasks created before now-olderThan to failed.
func (r *TaskRepository) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(taskRecordPrefix)

		// Collect first: the iterator must be closed before the
		// transaction commits.
		var stale []*core.IndexTask

		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), []byte(taskRecordPrefix+":")) {
				continue
			}

			var task *core.IndexTask
			err := item.Value(func(val []byte) error {
				var err error
				task, err = storage.UnmarshalTask(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}

			if task.Status == core.TaskStatusProcessing && task.CreatedAt.Before(cutoff) {
				stale = append(stale, task)
			}
		}
		iter.Close()

		for _, task := range stale {
			task.Status = core.TaskStatusFailed
			task.FailedAt = time.Now().UTC()
			task.Error = "task exceeded processing deadline"
			if err := tx.Set(makeTaskKey(task.Id), storage.MarshalTask(task)); err != nil {
				return err
			}
			count++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// readTask reads a task by key, returning nil when the key is absent.
func readTask(tx *badger.Txn, key []byte) (*core.IndexTask, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var task *core.IndexTask
	err = item.Value(func(val []byte) error {
		var err error
		task, err = storage.UnmarshalTask(val)
		return err
	})
	return task, err
}
