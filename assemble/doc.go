// Package assemble implements the document assembly stage: it collects
// the generated section fragments in document order and concatenates
// them between a header and footer template into one compilable LaTeX
// file. The merged document is written atomically and overwritten
// wholesale on each run.
package assemble
