// Package whitelist holds the set of interfaces a hosting runtime satisfies
// by itself. Imports in the set are never linked and never reported.
package whitelist

import (
	"slices"
	"strings"

	"github.com/wippyai/wail/catalog"
)

// Set is an immutable set of runtime-provided interfaces. The zero value is
// an empty set.
type Set struct {
	ids map[catalog.Interface]struct{}
}

// New builds a set from the given identifiers.
func New(ids ...catalog.Interface) Set {
	s := Set{ids: make(map[catalog.Interface]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Default returns the WASI interfaces the wasmCloud host provides.
func Default() Set {
	return New(
		catalog.NewInterface("wasi", "io", "poll"),
		catalog.NewInterface("wasi", "io", "error"),
		catalog.NewInterface("wasi", "io", "streams"),
		catalog.NewInterface("wasi", "http", "types"),
		catalog.NewInterface("wasi", "cli", "environment"),
		catalog.NewInterface("wasi", "cli", "exit"),
		catalog.NewInterface("wasi", "cli", "stdin"),
		catalog.NewInterface("wasi", "cli", "stdout"),
		catalog.NewInterface("wasi", "cli", "stderr"),
		catalog.NewInterface("wasi", "clocks", "wall-clock"),
		catalog.NewInterface("wasi", "filesystem", "types"),
		catalog.NewInterface("wasi", "filesystem", "preopens"),
	)
}

// Contains reports whether id is satisfied by the runtime.
func (s Set) Contains(id catalog.Interface) bool {
	_, ok := s.ids[id]
	return ok
}

// With returns a copy of s extended with ids. s is unchanged.
func (s Set) With(ids ...catalog.Interface) Set {
	out := Set{ids: make(map[catalog.Interface]struct{}, len(s.ids)+len(ids))}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	for _, id := range ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// Len returns the number of interfaces in the set.
func (s Set) Len() int {
	return len(s.ids)
}

// List returns the interfaces sorted by their string form.
func (s Set) List() []catalog.Interface {
	out := make([]catalog.Interface, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b catalog.Interface) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}
