package storage

import (
	"context"

	"github.com/poiesic/d2r/core"
)

// VectorIndex is a persistent store of embedded transcript chunks,
// namespaced by table name. One table holds the chunks of exactly one
// course module. Implementations must be thread-safe.
type VectorIndex interface {
	// Upsert inserts or replaces chunks in the named table and returns
	// the number of chunks written. Chunk IDs are content-derived, so
	// upserting identical content is idempotent.
	Upsert(ctx context.Context, table string, chunks []*core.ChunkRecord) (int, error)

	// Query returns up to topK chunks from the named table ranked by
	// cosine similarity to the query vector, highest first. Vectors are
	// expected to be unit-normalized.
	Query(ctx context.Context, table string, vector []float32, topK int) ([]core.ScoredChunk, error)

	// Count returns the number of chunks stored in the named table.
	// Used for the artifact-presence checks behind skip semantics.
	Count(ctx context.Context, table string) (int, error)

	// Drop removes every chunk of the named table.
	Drop(ctx context.Context, table string) error

	// Close closes the index and releases resources.
	Close() error
}
