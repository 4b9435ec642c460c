// Package emit projects a resolved graph into a wadm application manifest.
package emit

import (
	"maps"
	"slices"

	"github.com/wippyai/wail/graph"
	"github.com/wippyai/wail/manifest"
)

// Defaults fill the manifest metadata when the graph carries none.
type Defaults struct {
	Name        string
	Version     string
	Description string
}

// Manifest builds the output document. Link constructors become link traits
// appended after each component's existing traits; runtime interfaces are
// filtered again here because constructors may have arrived through a
// description. The graph is not modified.
//
// Unresolved constructors are emitted with an empty target, so callers check
// the resolution report first.
func Manifest(g *graph.Graph, d Defaults) *manifest.Manifest {
	m := &manifest.Manifest{
		APIVersion: g.APIVersion,
		Kind:       g.Kind,
	}
	if m.APIVersion == "" {
		m.APIVersion = manifest.OAMVersion
	}
	if m.Kind == "" {
		m.Kind = manifest.ApplicationKind
	}

	if g.Metadata != nil {
		m.Metadata = manifest.Metadata{
			Name:        g.Metadata.Name,
			Annotations: maps.Clone(g.Metadata.Annotations),
			Labels:      maps.Clone(g.Metadata.Labels),
		}
	} else {
		m.Metadata = manifest.Metadata{
			Name: d.Name,
			Annotations: map[string]string{
				manifest.VersionAnnotationKey:     d.Version,
				manifest.DescriptionAnnotationKey: d.Description,
			},
		}
	}

	wl := g.Whitelist()
	m.Spec.Components = make([]manifest.Component, 0, len(g.Components))
	for _, comp := range g.Components {
		out := comp
		out.Traits = make([]manifest.Trait, 0, len(comp.Traits))
		for _, t := range comp.Traits {
			out.Traits = append(out.Traits, t.Clone())
		}
		for _, c := range g.LinksFrom(comp.Name) {
			if wl.Contains(c.Interface()) {
				continue
			}
			out.Traits = append(out.Traits, c.Trait())
		}
		out.Properties.Config = slices.Clone(comp.Properties.Config)
		out.Properties.Secrets = slices.Clone(comp.Properties.Secrets)
		m.Spec.Components = append(m.Spec.Components, out)
	}
	m.Spec.Policies = slices.Clone(g.Policies)
	return m
}
