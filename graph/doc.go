// Package graph is the registry wail assembles an application in.
//
// Components enter through MergeComponent, which is the only place link
// constructors are created. MergeDescription folds an existing manifest in
// as a sequence of MergeComponent calls plus explicit pins, so a description
// produced by an earlier run reproduces its links.
//
// Catalogs are kept in an insertion-ordered map; resolution walks it in that
// order, which makes first-match linking deterministic.
package graph
