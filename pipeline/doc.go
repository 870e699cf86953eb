// Package pipeline sequences the three stages (ingest, generate and
// assemble) into one run for a single course module. Stages exchange
// state only through on-disk artifacts: the vector index, the fragment
// files and the merged document. A skipped stage must find its
// prerequisite artifacts already present or the run fails fast instead
// of producing a silently incomplete document.
package pipeline
