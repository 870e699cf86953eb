package ingest

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIngest indicates the ingestion stage failed. Wraps the cause;
	// fatal for the pipeline since downstream stages cannot produce
	// meaningful content without an index.
	ErrIngest = errors.New("ingestion failed")
)
