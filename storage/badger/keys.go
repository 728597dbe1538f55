package badger

import (
	"fmt"

	"github.com/docuquery/docuquery/core"
)

// Key prefixes for different data types
const (
	taskRecordPrefix  = "taskrec"
	chunkRecordPrefix = "chkrec"
	chunkDocPrefix    = "chkdoc"
)

// makeTaskKey generates a key for a task record by id.
func makeTaskKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", taskRecordPrefix, id))
}

// makeChunkKey generates a key for a chunk record by id.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocKey generates a composite key for the document index.
// Format: prefix:documentID:chunkID
func makeChunkDocKey(documentID string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkDocPrefix, documentID, id))
}

// makePartialChunkDocKey generates a partial key for document scans.
// Format: prefix:documentID:
func makePartialChunkDocKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, documentID))
}
