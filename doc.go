// Package wail assembles a wasmCloud application manifest from independently
// built WebAssembly components by matching what each component imports with
// what the others export.
//
// # Architecture Overview
//
//	wail/            Run: merge, resolve, refuse-or-emit
//	├── component/   Component binary section walker
//	├── catalog/     Interface identifiers, catalogs, built-in providers
//	├── whitelist/   Interfaces the runtime provides without a link
//	├── link/        Link constructors and their state machine
//	├── manifest/    wadm manifest and components document models
//	├── graph/       The application being assembled
//	├── loader/      Entities and images to catalogs, decode cache
//	├── resolve/     Link resolution and validation report
//	├── emit/        Graph to manifest projection
//	├── config/      Flags, .env and WAIL_* environment
//	└── cmd/wail/    Command-line entry point
//
// # Quick Start
//
//	cfg, err := manifest.LoadComponents("components.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := wail.Run(ctx, wail.Options{
//	    Components: cfg,
//	    Defaults:   emit.Defaults{Name: "shop", Version: "0.1.0"},
//	})
//	if err != nil {
//	    log.Fatal(err) // wraps ErrInvalidManifest when links cannot be satisfied
//	}
//	manifest.Write(os.Stdout, res.Manifest)
//
// # Linking Policy
//
// Linking is optimistic: an import is satisfied by the first other component,
// in the order components were added, whose exports contain the same
// namespace, package and interface name. Versions are ignored. Links pinned
// by an existing manifest are verified but never replaced. Set Strict to
// report interfaces exported by several components instead.
package wail
