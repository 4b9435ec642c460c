// Package resolve links every pending constructor of a graph to a component
// exporting the interface it needs and validates the result.
//
// A pass runs in constructor list order. Runtime interfaces are skipped,
// pinned targets are verified and never replaced, and unpinned constructors
// take the first exporter in catalog insertion order unless the resolver is
// configured to reject ambiguous matches. Every problem is collected in the
// Report; the pass never stops early.
package resolve
