// Package core defines the domain model shared by every pipeline stage:
// module references resolved from course metadata, outline entries,
// generated section fragments, and the chunk records persisted in the
// vector index. It also provides content-based ID generation and binary
// serializers for the persisted types.
package core
