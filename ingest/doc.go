// Package ingest implements the embedding ingestion stage: it reads the
// transcript files of a resolved module, splits them into chunks, embeds
// the chunks and upserts them into the module's vector index table.
//
// Ingestion is idempotent: when the table already contains chunks and
// overwrite is not requested, the stage skips without issuing a single
// embedding call. With overwrite, the table is dropped and rebuilt.
// Embedding calls are retried with bounded exponential backoff before
// the stage fails.
package ingest
