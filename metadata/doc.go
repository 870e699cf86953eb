// Package metadata parses crawled course metadata descriptors and
// resolves a 1-based topic number into the module reference the rest of
// the pipeline operates on. Resolution is a pure read: bad input is
// fatal and never retried.
package metadata
