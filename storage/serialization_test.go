package storage

import (
	"testing"
	"time"

	"github.com/docuquery/docuquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.Chunk{
		Id:           core.IDFromContent("report.pdf:0:hello"),
		Text:         "hello world",
		DocumentID:   "doc-42",
		FileName:     "report.pdf",
		FolderID:     "folder-7",
		StartCharIdx: 3120,
		PageNumber:   2,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalChunk(chunk)
	got, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestTaskRoundTrip(t *testing.T) {
	t.Run("processing task has zero terminal timestamps", func(t *testing.T) {
		task := &core.IndexTask{
			Id:        "5f4cf174-0bb4-4df5-9a43-e6c22a7d95d1",
			FileName:  "report.pdf",
			Status:    core.TaskStatusProcessing,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		got, err := UnmarshalTask(MarshalTask(task))
		require.NoError(t, err)
		assert.Equal(t, task, got)
		assert.True(t, got.CompletedAt.IsZero())
		assert.True(t, got.FailedAt.IsZero())
	})

	t.Run("failed task keeps error message", func(t *testing.T) {
		task := &core.IndexTask{
			Id:        "task-1",
			FileName:  "notes.docx",
			Status:    core.TaskStatusFailed,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			FailedAt:  time.Now().UTC().Truncate(time.Microsecond),
			Error:     "unsupported file type: .xyz",
		}

		got, err := UnmarshalTask(MarshalTask(task))
		require.NoError(t, err)
		assert.Equal(t, task, got)
	})
}

func TestUnmarshalTruncatedData(t *testing.T) {
	chunk := &core.Chunk{Id: 1, Text: "hello world", FileName: "a.txt"}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}
