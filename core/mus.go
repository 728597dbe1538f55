package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the records persisted in storage.
// Field order is fixed; changing it breaks previously written databases.
var (
	IDMUS    = idMUS{}
	ChunkMUS = chunkMUS{}
	TaskMUS  = taskMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// Timestamps are stored as Unix microseconds; the zero time is stored as 0
// so that unset completion/failure times survive a round trip.
func marshalTime(t time.Time, bs []byte) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Marshal(us, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Size(us)
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.DocumentID, bs[n:])
	n += ord.String.Marshal(c.FileName, bs[n:])
	n += ord.String.Marshal(c.FolderID, bs[n:])
	n += varint.Int.Marshal(c.StartCharIdx, bs[n:])
	n += varint.Int.Marshal(c.PageNumber, bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	c.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.DocumentID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.FileName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.FolderID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.StartCharIdx, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.PageNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.DocumentID)
	size += ord.String.Size(c.FileName)
	size += ord.String.Size(c.FolderID)
	size += varint.Int.Size(c.StartCharIdx)
	size += varint.Int.Size(c.PageNumber)
	size += sizeTime(c.CreatedAt)
	return size
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	var c Chunk
	c, n, err = s.Unmarshal(bs)
	_ = c
	return
}

type taskMUS struct{}

func (s taskMUS) Marshal(t IndexTask, bs []byte) (n int) {
	n = ord.String.Marshal(t.Id, bs)
	n += ord.String.Marshal(t.FileName, bs[n:])
	n += varint.Int.Marshal(int(t.Status), bs[n:])
	n += marshalTime(t.CreatedAt, bs[n:])
	n += marshalTime(t.CompletedAt, bs[n:])
	n += marshalTime(t.FailedAt, bs[n:])
	n += varint.Int.Marshal(t.ChunkCount, bs[n:])
	n += varint.Int.Marshal(t.PageCount, bs[n:])
	n += ord.String.Marshal(t.Error, bs[n:])
	return n
}

func (s taskMUS) Unmarshal(bs []byte) (t IndexTask, n int, err error) {
	var (
		n1     int
		status int
	)
	t.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	t.FileName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.Status = TaskStatus(status)
	t.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.CompletedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.FailedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.PageCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s taskMUS) Size(t IndexTask) (size int) {
	size = ord.String.Size(t.Id)
	size += ord.String.Size(t.FileName)
	size += varint.Int.Size(int(t.Status))
	size += sizeTime(t.CreatedAt)
	size += sizeTime(t.CompletedAt)
	size += sizeTime(t.FailedAt)
	size += varint.Int.Size(t.ChunkCount)
	size += varint.Int.Size(t.PageCount)
	size += ord.String.Size(t.Error)
	return size
}

func (s taskMUS) Skip(bs []byte) (n int, err error) {
	var t IndexTask
	t, n, err = s.Unmarshal(bs)
	_ = t
	return
}
