// Package catalog models the interface surface of a component.
//
// An Interface is a (namespace, package, name) triple; it is the only key
// used to match importers with exporters. A Catalog holds a component's
// imports and exports and is produced either by a Decoder from a component
// binary or taken from the built-in Providers table for capability providers
// that have no binary.
package catalog
