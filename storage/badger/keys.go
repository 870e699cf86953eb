package badger

import (
	"fmt"

	"github.com/poiesic/d2r/core"
)

// Key prefix for chunk records. Tables are encoded into the key so one
// database holds the namespaces of every module.
const chunkRecordPrefix = "chunk"

// makeChunkKey generates a key for a chunk record within a table.
// Format: prefix:table:id
func makeChunkKey(table string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkRecordPrefix, table, id))
}

// makeTablePrefix generates the key prefix shared by all chunks of a table.
func makeTablePrefix(table string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkRecordPrefix, table))
}
