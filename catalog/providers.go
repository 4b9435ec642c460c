package catalog

import "strings"

// Provider is a capability provider that is not a WebAssembly component and
// so has no binary to decode. Its catalog is fixed.
type Provider struct {
	// Name is the conventional component name in deployment descriptions.
	Name string
	// Reference is a substring identifying the provider's image reference.
	Reference string
	Catalog   Catalog
}

// Providers is a lookup table of built-in providers.
type Providers []Provider

// HTTPServer is the wasmCloud HTTP server provider. It calls into components
// through incoming-handler and offers outgoing-handler.
var HTTPServer = Provider{
	Name:      "httpserver",
	Reference: "wasmcloud/http-server",
	Catalog: New(
		[]Interface{NewInterface("wasi", "http", "incoming-handler")},
		[]Interface{NewInterface("wasi", "http", "outgoing-handler")},
		&PackageInfo{Namespace: "wasmcloud", Name: "httpserver"},
	),
}

// DefaultProviders returns the providers known out of the box.
func DefaultProviders() Providers {
	return Providers{HTTPServer}
}

// ByName finds a provider by component name.
func (ps Providers) ByName(name string) (Provider, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// ByReference finds a provider whose reference marker occurs in ref.
func (ps Providers) ByReference(ref string) (Provider, bool) {
	for _, p := range ps {
		if p.Reference != "" && strings.Contains(ref, p.Reference) {
			return p, true
		}
	}
	return Provider{}, false
}
