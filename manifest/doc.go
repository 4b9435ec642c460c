// Package manifest models the two documents wail reads and writes: the wadm
// application manifest (core.oam.dev/v1beta1 Application) and the components
// list naming the binaries to assemble.
//
// Link traits are decoded into typed LinkProperty values so the graph can
// match them against component catalogs; all other traits pass through as
// generic property maps.
package manifest
