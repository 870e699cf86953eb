// Package paths is the single source of truth for on-disk artifact
// locations. Every stage receives its input and output paths from the
// Builder here, so stage N+1 can locate stage N's output without any
// state passed between them. All derivations are pure and
// deterministic: identical inputs always yield identical paths.
package paths
