package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/graph"
	"github.com/wippyai/wail/link"
	"github.com/wippyai/wail/manifest"
	"github.com/wippyai/wail/whitelist"
)

var (
	backendCall = catalog.NewInterface("ns", "pkg", "backend-call")
	other       = catalog.NewInterface("ns", "pkg", "other")
	streams     = catalog.NewInterface("wasi", "io", "streams")
)

func ids(list ...catalog.Interface) []catalog.Interface { return list }

func merge(t *testing.T, g *graph.Graph, name string, imports, exports []catalog.Interface) {
	t.Helper()
	require.NoError(t, g.MergeComponent(name, catalog.New(imports, exports, nil), "file://"+name+".wasm"))
}

func TestResolveFrontBack(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)
	merge(t, g, "back", nil, ids(backendCall))

	report := New().Resolve(g)
	require.True(t, report.Valid, report.Summary())
	assert.Empty(t, report.Errors)
	require.Len(t, report.Discovered, 1)

	c := g.Links[0]
	assert.Equal(t, "back", c.Target)
	assert.Equal(t, link.Resolved, c.State)
	assert.Same(t, c, report.Discovered[0])
	assert.Equal(t, "discovered 1 implicit links", report.Summary())
	assert.NoError(t, report.Err())
}

func TestResolveAfterLaterMerge(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)

	report := New().Resolve(g)
	require.False(t, report.Valid)
	assert.Equal(t, link.Unsatisfiable, g.Links[0].State)

	merge(t, g, "back", nil, ids(backendCall))

	report = New().Resolve(g)
	require.True(t, report.Valid, report.Summary())
	assert.Empty(t, report.Errors)
	require.Len(t, report.Discovered, 1)
	assert.Equal(t, "back", g.Links[0].Target)
	assert.Equal(t, link.Resolved, g.Links[0].State)
	assert.Empty(t, g.Links[0].Reason)
}

func TestResolveNoImportsNoErrors(t *testing.T) {
	g := graph.New()
	merge(t, g, "a", ids(streams), ids(other))
	merge(t, g, "b", nil, nil)

	report := New().Resolve(g)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Equal(t, "all validations passed", report.Summary())
}

func TestResolveMissingExporter(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)
	merge(t, g, "unrelated", nil, ids(other))

	report := New().Resolve(g)
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)

	e := report.Errors[0]
	assert.Equal(t, errors.KindInterface, e.Kind)
	assert.Equal(t, "front", e.Component)
	assert.Equal(t, "ns:pkg/backend-call", e.Interface)
	assert.Contains(t, e.Detail, "required by front")

	require.Len(t, report.Unlinked, 1)
	assert.Equal(t, Unlinked{Component: "front", Interface: backendCall}, report.Unlinked[0])
	assert.Equal(t, link.Unsatisfiable, g.Links[0].State)
	assert.Empty(t, g.Links[0].Target)
	assert.NotEmpty(t, g.Links[0].Reason)
	assert.Error(t, report.Err())
}

func TestResolveSkipsSelf(t *testing.T) {
	g := graph.New()
	merge(t, g, "loop", ids(backendCall), ids(backendCall))

	report := New().Resolve(g)
	require.Len(t, report.ErrorsOfKind(errors.KindInterface), 1)
}

func TestResolveFirstMatchInInsertionOrder(t *testing.T) {
	for _, order := range [][]string{{"b1", "b2"}, {"b2", "b1"}} {
		g := graph.New()
		merge(t, g, order[0], nil, ids(backendCall))
		merge(t, g, "front", ids(backendCall), nil)
		merge(t, g, order[1], nil, ids(backendCall))

		report := New().Resolve(g)
		require.True(t, report.Valid)
		assert.Empty(t, report.Errors)
		assert.Equal(t, order[0], g.Links[0].Target)
	}
}

func TestResolveRejectAmbiguous(t *testing.T) {
	g := graph.New()
	merge(t, g, "b1", nil, ids(backendCall))
	merge(t, g, "b2", nil, ids(backendCall))
	merge(t, g, "front", ids(backendCall), nil)

	report := New(WithAmbiguityPolicy(RejectAmbiguous)).Resolve(g)
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, errors.KindInterface, report.Errors[0].Kind)
	assert.Equal(t, []string{"b1", "b2"}, report.Errors[0].Value)
	require.Len(t, report.Unlinked, 1)
	assert.Equal(t, []string{"b1", "b2"}, report.Unlinked[0].Candidates)
	assert.Equal(t, link.Unsatisfiable, g.Links[0].State)

	single := graph.New()
	merge(t, single, "b1", nil, ids(backendCall))
	merge(t, single, "front", ids(backendCall), nil)
	assert.True(t, New(WithAmbiguityPolicy(RejectAmbiguous)).Resolve(single).Valid)
}

func pinnedDescription(target string) *manifest.Manifest {
	return &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{{
			Name: "front",
			Traits: []manifest.Trait{manifest.NewLinkTrait(manifest.LinkProperty{
				Namespace:  "ns",
				Package:    "pkg",
				Interfaces: []string{"backend-call"},
				Target:     manifest.TargetConfig{Name: target},
			})},
		}},
	}}
}

func TestResolvePinnedTarget(t *testing.T) {
	g := graph.New()
	merge(t, g, "back", nil, ids(backendCall))
	merge(t, g, "front", ids(backendCall), nil)
	merge(t, g, "alt", nil, ids(backendCall))
	require.NoError(t, g.MergeDescription(context.Background(), pinnedDescription("alt")))

	report := New().Resolve(g)
	require.True(t, report.Valid)
	assert.Empty(t, report.Discovered)
	assert.Equal(t, "alt", g.Links[0].Target, "pins are never replaced")
	assert.Equal(t, link.Pinned, g.Links[0].State)
}

func TestResolvePinnedTargetNotExporting(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)
	merge(t, g, "back", nil, ids(backendCall))
	merge(t, g, "c", nil, ids(other))
	require.NoError(t, g.MergeDescription(context.Background(), pinnedDescription("c")))

	report := New().Resolve(g)
	assert.False(t, report.Valid)
	errs := report.ErrorsOfKind(errors.KindInterface)
	require.Len(t, errs, 1)
	assert.Equal(t, "c", errs[0].Component)
	assert.Equal(t, "c", g.Links[0].Target, "failed pin keeps its target")
	assert.Equal(t, link.Unsatisfiable, g.Links[0].State)
}

func TestResolvePinnedTargetMissing(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)
	require.NoError(t, g.MergeDescription(context.Background(), pinnedDescription("ghost")))

	report := New().Resolve(g)
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1, "a dangling pin is reported once")
	assert.Equal(t, errors.KindLink, report.Errors[0].Kind)
	assert.Equal(t, "front", report.Errors[0].Component)
	assert.Contains(t, report.Errors[0].Detail, `target component "ghost" not found`)
	assert.Equal(t, "ghost", g.Links[0].Target)
	assert.Equal(t, link.Unsatisfiable, g.Links[0].State)
}

func TestResolveBasicRequirements(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)
	merge(t, g, "back", nil, ids(backendCall))
	g.Components[1].Properties.Image = ""

	g.Links = append(g.Links,
		&link.Constructor{Source: "front", Namespace: "ns", Package: "pkg"},
		&link.Constructor{Source: "nobody", Interfaces: []string{"x"}, Namespace: "ns", Package: "pkg"},
	)

	report := New().Resolve(g)
	assert.False(t, report.Valid)

	comp := report.ErrorsOfKind(errors.KindComponent)
	require.Len(t, comp, 1)
	assert.Equal(t, "back must specify image or application", comp[0].Detail)

	links := report.ErrorsOfKind(errors.KindLink)
	require.Len(t, links, 2)
	assert.Contains(t, links[0].Detail, "link must have at least one interface")
	assert.Contains(t, links[1].Detail, `source component "nobody" not found`)

	assert.Equal(t, "back", g.Links[0].Target, "valid links still resolve")
}

func TestResolveApplicationReferenceIsEnough(t *testing.T) {
	g := graph.New()
	merge(t, g, "shared", nil, nil)
	g.Components[0].Properties.Image = ""
	g.Components[0].Properties.Application = &manifest.SharedReference{Name: "app", Component: "shared"}

	assert.True(t, New().Resolve(g).Valid)
}

func TestResolveWhitelistOverride(t *testing.T) {
	g := graph.New()
	merge(t, g, "front", ids(backendCall), nil)

	report := New(WithWhitelist(whitelist.Default().With(backendCall))).Resolve(g)
	assert.True(t, report.Valid)
	assert.Equal(t, link.Pending, g.Links[0].State)
}

func TestResolveCarriesGraphWarnings(t *testing.T) {
	g := graph.New()
	g.Warnings = append(g.Warnings, "skipping component x")

	report := New().Resolve(g)
	assert.True(t, report.Valid)
	assert.Equal(t, []string{"skipping component x"}, report.Warnings)
	assert.Equal(t, "1 warnings", report.Summary())
}

func TestAmbiguityPolicyString(t *testing.T) {
	assert.Equal(t, "first-match", FirstMatch.String())
	assert.Equal(t, "reject-ambiguous", RejectAmbiguous.String())
}
