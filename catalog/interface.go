package catalog

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

// Interface identifies a capability contract by namespace, package and
// interface name. Equality is structural; there is no version component.
type Interface struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Package   string `yaml:"package" json:"package"`
	Name      string `yaml:"name" json:"name"`
}

// NewInterface builds an identifier from its three parts.
func NewInterface(namespace, pkg, name string) Interface {
	return Interface{Namespace: namespace, Package: pkg, Name: name}
}

// ParseInterface parses a Component Model interface name such as
// "wasi:http/incoming-handler@0.2.0". The version, if any, is discarded.
// Names without an interface part ("wasi:http", "run") are rejected.
func ParseInterface(s string) (Interface, error) {
	id, err := wit.ParseIdent(s)
	if err != nil {
		return Interface{}, fmt.Errorf("parse interface name %q: %w", s, err)
	}
	if id.Extension == "" {
		return Interface{}, fmt.Errorf("parse interface name %q: missing interface", s)
	}
	return Interface{Namespace: id.Namespace, Package: id.Package, Name: id.Extension}, nil
}

// MustParseInterface is like ParseInterface but panics on error.
func MustParseInterface(s string) Interface {
	i, err := ParseInterface(s)
	if err != nil {
		panic(err)
	}
	return i
}

// String renders the identifier as "namespace:package/name".
func (i Interface) String() string {
	var b strings.Builder
	b.Grow(len(i.Namespace) + len(i.Package) + len(i.Name) + 2)
	b.WriteString(i.Namespace)
	b.WriteByte(':')
	b.WriteString(i.Package)
	b.WriteByte('/')
	b.WriteString(i.Name)
	return b.String()
}

// IsZero reports whether all three parts are empty.
func (i Interface) IsZero() bool {
	return i == Interface{}
}
