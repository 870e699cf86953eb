// Package badger implements storage.VectorIndex on BadgerDB.
//
// Chunks are stored under per-table key prefixes, so a single database
// directory holds the indexes of every module of a course. Similarity
// queries scan the table prefix and rank by dot product; vectors are
// unit-normalized at ingestion time, so the dot product equals the
// cosine similarity.
package badger
