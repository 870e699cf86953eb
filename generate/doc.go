// Package generate implements the content generation stage: for each
// outline entry it retrieves the most relevant transcript chunks from
// the vector index, asks the completion model for a LaTeX section, and
// writes the result as one fragment file per entry.
//
// Fragments are independent: a failure generating one section is
// recorded and the stage moves on, so a partial run can be resumed by
// re-running without overwrite. Entries are dispatched on a bounded
// worker pool; the order prefix in the fragment filename, not
// completion order, determines the final document order.
package generate
