// Package aggregates implements the write-side of the split domain: every
// mutation runs inside its own transaction and commits through a
// compare-and-set on the split row's version column, so concurrent joins,
// leaves and payment applications can never oversubscribe slots or clobber
// each other's state.
package aggregates
