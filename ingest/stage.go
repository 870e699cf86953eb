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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/d2r/ai"
	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/retry"
	"github.com/poiesic/d2r/storage"
	"github.com/poiesic/d2r/storage/badger"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultEmbedBatchSize = 32
)

// Stage ingests a module's transcripts into the vector index.
type Stage struct {
	index          storage.VectorIndex
	embedder       ai.Embedder
	chunkSize      int
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage)

// WithChunkSize sets the target maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Stage) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithBatchSize sets the number of chunks embedded per provider call.
func WithBatchSize(size int) Option {
	return func(s *Stage) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithRetryPolicy sets the bounded backoff policy for embedding calls.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(s *Stage) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			s.retryBaseDelay = baseDelay
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStage creates an ingestion stage.
func NewStage(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Stage, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Stage{
		index:          index,
		embedder:       embedder,
		chunkSize:      defaultChunkSize,
		batchSize:      defaultEmbedBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("stage", "ingest"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result reports what one ingestion run did.
type Result struct {
	// DocumentsIndexed is the number of transcript files read and indexed.
	DocumentsIndexed int
	// ChunksUpserted is the number of chunks written to the index.
	ChunksUpserted int
	// Skipped is true when the table already had chunks and overwrite
	// was not requested. No embedding calls were made in that case.
	Skipped bool
}

// Ingest reads every transcript of the module, embeds the chunks and
// upserts them into the named table.
//
// With overwrite=false and a non-empty table this is an idempotent
// no-op: the presence of chunks counts as the artifact, their content
// is not re-validated. With overwrite=true the table is dropped and
// rebuilt.
func (s *Stage) Ingest(ctx context.Context, ref core.ModuleRef, table string, overwrite bool) (*Result, error) {
	if err := core.ValidateModuleRef(&ref); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngest, err)
	}

	if !overwrite {
		count, err := s.index.Count(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIngest, err)
		}
		if count > 0 {
			s.logger.Info("index already populated, skipping ingestion",
				"table", table, "chunks", count)
			return &Result{Skipped: true}, nil
		}
	} else {
		if err := s.index.Drop(ctx, table); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIngest, err)
		}
		s.logger.Info("dropped existing index entries", "table", table)
	}

	chunks, documents, err := s.readChunks(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngest, err)
	}
	s.logger.Info("read transcripts", "documents", documents, "chunks", len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngest, err)
	}

	upserted := 0
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		n, err := s.index.Upsert(ctx, table, chunks[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIngest, err)
		}
		upserted += n
	}

	s.logger.Info("ingestion complete", "table", table,
		"documents", documents, "chunks", upserted)
	return &Result{DocumentsIndexed: documents, ChunksUpserted: upserted}, nil
}

// readChunks reads and splits every transcript of the module. Chunk IDs
// are derived from source, position and content, so re-reading the same
// transcripts yields the same IDs.
func (s *Stage) readChunks(ref core.ModuleRef) ([]*core.ChunkRecord, int, error) {
	var chunks []*core.ChunkRecord
	documents := 0

	for _, path := range ref.TranscriptPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("reading transcript %s: %w", path, err)
		}
		documents++

		for seq, text := range splitIntoChunks(string(data), s.chunkSize) {
			chunks = append(chunks, &core.ChunkRecord{
				Id:     core.IDFromContent(fmt.Sprintf("%s#%d:%s", path, seq, text)),
				Source: path,
				Seq:    seq,
				Text:   text,
			})
		}
	}

	return chunks, documents, nil
}

// embedChunks embeds all chunks in batches, retrying each batch with
// bounded backoff. Vectors are unit-normalized for cosine similarity.
func (s *Stage) embedChunks(ctx context.Context, chunks []*core.ChunkRecord) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		var embeddings [][]float32
		err := retry.WithBackoff(ctx, func() error {
			var err error
			embeddings, err = s.embedder.EmbedTexts(ctx, texts)
			return err
		}, s.maxRetries, s.retryBaseDelay)
		if err != nil {
			return fmt.Errorf("embedding batch failed after %d attempts: %w", s.maxRetries, err)
		}

		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		for i := range batch {
			batch[i].Vector = badger.NormalizeVector(embeddings[i])
		}
	}
	return nil
}
