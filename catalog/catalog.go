package catalog

import "slices"

// PackageInfo is the owning package identity of a component.
type PackageInfo struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Name      string `yaml:"name" json:"name"`
}

// String renders the package as "namespace:name".
func (p PackageInfo) String() string {
	return p.Namespace + ":" + p.Name
}

// Catalog is the full import/export surface of one component. It is built
// once when the component is introduced and replaced wholesale, never edited.
type Catalog struct {
	Package *PackageInfo `yaml:"package,omitempty" json:"package,omitempty"`
	Imports []Interface  `yaml:"imports" json:"imports"`
	Exports []Interface  `yaml:"exports" json:"exports"`
}

// New builds a catalog, dropping duplicate identifiers while keeping the
// first-seen order.
func New(imports, exports []Interface, pkg *PackageInfo) Catalog {
	return Catalog{
		Package: pkg,
		Imports: dedupe(imports),
		Exports: dedupe(exports),
	}
}

// ImportsInterface reports whether the component requires id.
func (c Catalog) ImportsInterface(id Interface) bool {
	return slices.Contains(c.Imports, id)
}

// ExportsInterface reports whether the component provides id.
func (c Catalog) ExportsInterface(id Interface) bool {
	return slices.Contains(c.Exports, id)
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Imports: slices.Clone(c.Imports),
		Exports: slices.Clone(c.Exports),
	}
	if c.Package != nil {
		p := *c.Package
		out.Package = &p
	}
	return out
}

func dedupe(ids []Interface) []Interface {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[Interface]struct{}, len(ids))
	out := make([]Interface, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
