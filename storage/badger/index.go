// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/storage"
)

// Index implements storage.VectorIndex on a BadgerDB backend.
type Index struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorIndex = (*Index)(nil)

// OpenIndex opens (or creates) a vector index at dir.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func OpenIndex(dir string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return newIndex(backend), nil
}

// newIndex wraps a backend in an Index.
func newIndex(backend *Backend) *Index {
	return &Index{
		backend: backend,
		logger:  slog.Default().With("component", "badger-index"),
	}
}

// Upsert inserts or replaces chunks in the named table.
// Chunk IDs are content-derived, so identical content lands on the same
// key and the operation is idempotent.
func (ix *Index) Upsert(ctx context.Context, table string, chunks []*core.ChunkRecord) (int, error) {
	if table == "" {
		return 0, storage.ErrEmptyTable
	}
	if ix.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(table, chunk.Id)
			if err := tx.Set(key, storage.MarshalChunkRecord(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	ix.logger.Debug("upserted chunks", "table", table, "count", len(chunks))
	return len(chunks), nil
}

// Query returns up to topK chunks ranked by similarity to the query
// vector, highest first. The scan walks the table prefix only.
func (ix *Index) Query(ctx context.Context, table string, vector []float32, topK int) ([]core.ScoredChunk, error) {
	if table == "" {
		return nil, storage.ErrEmptyTable
	}
	if topK < 1 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if ix.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var results []core.ScoredChunk
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTablePrefix(table)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			// Cosine similarity: dot product of unit vectors.
			score := dotProduct(vector, chunk.Vector)
			results = append(results, core.ScoredChunk{Chunk: chunk, Score: score})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of chunks stored in the named table.
func (ix *Index) Count(ctx context.Context, table string) (int, error) {
	if table == "" {
		return 0, storage.ErrEmptyTable
	}
	if ix.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTablePrefix(table)
		opts.PrefetchValues = false // keys only
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Drop removes every chunk of the named table.
func (ix *Index) Drop(ctx context.Context, table string) error {
	if table == "" {
		return storage.ErrEmptyTable
	}
	if ix.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	// Collect keys first; deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTablePrefix(table)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	err = ix.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	ix.logger.Debug("dropped table", "table", table, "chunks", len(keys))
	return nil
}

// Close closes the underlying backend.
func (ix *Index) Close() error {
	return ix.backend.Close()
}
