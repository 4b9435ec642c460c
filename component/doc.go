// Package component reads the interface surface of WebAssembly Component
// Model binaries.
//
// Decode walks the top-level sections and keeps what interface discovery
// needs: import names (section 10), export names (section 11) and the raw
// bytes of embedded core modules. Custom, type, canon and alias sections are
// skipped without interpretation. VerifyCoreModules optionally
// compiles the embedded core modules with wazero.
package component
