package graph

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/link"
	"github.com/wippyai/wail/manifest"
	"github.com/wippyai/wail/whitelist"
)

var (
	orders   = catalog.NewInterface("shop", "api", "orders")
	billing  = catalog.NewInterface("shop", "api", "billing")
	streams  = catalog.NewInterface("wasi", "io", "streams")
	incoming = catalog.NewInterface("wasi", "http", "incoming-handler")
)

type fakeLoader struct {
	catalogs map[string]catalog.Catalog
	calls    []string
}

func (l *fakeLoader) LoadImage(_ context.Context, name, image string) (catalog.Catalog, error) {
	l.calls = append(l.calls, name)
	c, ok := l.catalogs[image]
	if !ok {
		return catalog.Catalog{}, stderrors.New("not a WebAssembly binary")
	}
	return c, nil
}

func linkTrait(ns, pkg, iface, target string) manifest.Trait {
	return manifest.NewLinkTrait(manifest.LinkProperty{
		Namespace:  ns,
		Package:    pkg,
		Interfaces: []string{iface},
		Target:     manifest.TargetConfig{Name: target},
	})
}

func TestMergeComponent(t *testing.T) {
	g := New()
	cat := catalog.New([]catalog.Interface{orders, streams}, []catalog.Interface{billing}, nil)

	require.NoError(t, g.MergeComponent("front", cat, "file://front.wasm"))

	require.Len(t, g.Components, 1)
	entry := g.Components[0]
	assert.Equal(t, "front", entry.Name)
	assert.Equal(t, manifest.TypeComponent, entry.Type)
	assert.Equal(t, "file://front.wasm", entry.Properties.Image)
	assert.Equal(t, "front", entry.Properties.ID)
	assert.Empty(t, entry.Traits)

	require.Len(t, g.Links, 1, "whitelisted import must not produce a link")
	c := g.Links[0]
	assert.Equal(t, "front", c.Source)
	assert.Equal(t, []string{"orders"}, c.Interfaces)
	assert.Equal(t, "shop", c.Namespace)
	assert.Equal(t, "api", c.Package)
	assert.Equal(t, link.Pending, c.State)

	got, ok := g.Catalog("front")
	require.True(t, ok)
	assert.Equal(t, cat, got)
}

func TestMergeComponentWhitelistOnly(t *testing.T) {
	for _, id := range whitelist.Default().List() {
		t.Run(id.String(), func(t *testing.T) {
			g := New()
			require.NoError(t, g.MergeComponent("a", catalog.New([]catalog.Interface{id}, nil, nil), "a.wasm"))
			assert.Empty(t, g.Links)
		})
	}
}

func TestMergeComponentCustomWhitelist(t *testing.T) {
	g := New(WithWhitelist(whitelist.New(orders)))
	require.NoError(t, g.MergeComponent("a", catalog.New([]catalog.Interface{orders, streams}, nil, nil), "a.wasm"))

	require.Len(t, g.Links, 1)
	assert.Equal(t, streams, g.Links[0].Interface())
}

func TestMergeComponentReplace(t *testing.T) {
	g := New()
	require.NoError(t, g.MergeComponent("a", catalog.New(nil, []catalog.Interface{orders}, nil), "a-v1.wasm"))
	require.NoError(t, g.MergeComponent("b", catalog.New(nil, nil, nil), "b.wasm"))
	require.NoError(t, g.MergeComponent("a", catalog.New(nil, []catalog.Interface{billing}, nil), "a-v2.wasm"))

	assert.Equal(t, []string{"a", "b"}, g.CatalogNames(), "replacement keeps insertion position")
	require.Len(t, g.Components, 2)
	assert.Equal(t, "a-v2.wasm", g.Components[0].Properties.Image)

	cat, _ := g.Catalog("a")
	assert.True(t, cat.ExportsInterface(billing))
	assert.False(t, cat.ExportsInterface(orders))
}

func TestMergeComponentDuplicatesLinks(t *testing.T) {
	g := New()
	cat := catalog.New([]catalog.Interface{orders}, nil, nil)
	require.NoError(t, g.MergeComponent("a", cat, "a.wasm"))
	require.NoError(t, g.MergeComponent("a", cat, "a.wasm"))
	assert.Len(t, g.LinksFrom("a"), 2)
}

func TestMergeComponentEmptyName(t *testing.T) {
	g := New()
	err := g.MergeComponent("", catalog.New([]catalog.Interface{orders}, nil, nil), "x.wasm")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
	assert.Empty(t, g.Components)
	assert.Empty(t, g.Links)
	assert.Empty(t, g.CatalogNames())
}

func TestMergeDescriptionPinsKnownComponent(t *testing.T) {
	g := New()
	require.NoError(t, g.MergeComponent("front", catalog.New([]catalog.Interface{orders, billing}, nil, nil), "front.wasm"))

	desc := &manifest.Manifest{
		APIVersion: manifest.OAMVersion,
		Kind:       manifest.ApplicationKind,
		Metadata:   manifest.Metadata{Name: "shop", Annotations: map[string]string{"version": "v1"}},
		Spec: manifest.Specification{
			Components: []manifest.Component{{
				Name: "front",
				Traits: []manifest.Trait{
					linkTrait("shop", "api", "orders", "back"),
					linkTrait("shop", "api", "billing", ""),
					{Type: manifest.SpreadScalerTrait, Properties: map[string]any{"instances": 2}},
				},
			}},
			Policies: []manifest.Policy{{Name: "p", Type: "secret"}},
		},
	}
	require.NoError(t, g.MergeDescription(context.Background(), desc))

	links := g.LinksFrom("front")
	require.Len(t, links, 2)
	assert.Equal(t, link.Pinned, links[0].State)
	assert.Equal(t, "back", links[0].Target)
	assert.Equal(t, link.Pending, links[1].State, "empty target is ignored")

	entry, _ := g.Component("front")
	require.Len(t, entry.Traits, 1)
	assert.Equal(t, manifest.SpreadScalerTrait, entry.Traits[0].Type)

	assert.Equal(t, manifest.OAMVersion, g.APIVersion)
	require.NotNil(t, g.Metadata)
	assert.Equal(t, "shop", g.Metadata.Name)
	assert.Len(t, g.Policies, 1)

	require.NoError(t, g.MergeDescription(context.Background(), desc))
	assert.Len(t, g.Policies, 2, "policies are not deduplicated")
	assert.Len(t, entry.Traits, 1, "present trait types are not adopted twice")
}

func TestMergeDescriptionKeepsOwnMetadata(t *testing.T) {
	g := New()
	g.Metadata = &manifest.Metadata{Name: "mine"}
	g.APIVersion = "custom/v1"

	desc := &manifest.Manifest{APIVersion: manifest.OAMVersion, Metadata: manifest.Metadata{Name: "theirs"}}
	require.NoError(t, g.MergeDescription(context.Background(), desc))

	assert.Equal(t, "mine", g.Metadata.Name)
	assert.Equal(t, "custom/v1", g.APIVersion)
}

func TestMergeDescriptionMismatch(t *testing.T) {
	g := New()
	require.NoError(t, g.MergeComponent("front", catalog.New([]catalog.Interface{orders}, nil, nil), "front.wasm"))

	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{{
			Name:   "front",
			Traits: []manifest.Trait{linkTrait("shop", "api", "inventory", "back")},
		}},
	}}
	err := g.MergeDescription(context.Background(), desc)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindComponent))
	assert.Contains(t, err.Error(), "shop:api/inventory")
	assert.Equal(t, link.Pending, g.Links[0].State)
}

func TestMergeDescriptionWhitelistedLinkIgnored(t *testing.T) {
	g := New(WithWhitelist(whitelist.New(orders)))
	require.NoError(t, g.MergeComponent("front", catalog.New([]catalog.Interface{orders}, nil, nil), "front.wasm"))

	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{{
			Name:   "front",
			Traits: []manifest.Trait{linkTrait("shop", "api", "orders", "back")},
		}},
	}}
	require.NoError(t, g.MergeDescription(context.Background(), desc))
	assert.Empty(t, g.Links)
}

func TestMergeDescriptionMultiInterfaceTrait(t *testing.T) {
	g := New()
	require.NoError(t, g.MergeComponent("front", catalog.New([]catalog.Interface{orders, billing}, nil, nil), "front.wasm"))

	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{{
			Name: "front",
			Traits: []manifest.Trait{manifest.NewLinkTrait(manifest.LinkProperty{
				Namespace:  "shop",
				Package:    "api",
				Interfaces: []string{"orders", "billing"},
				Target:     manifest.TargetConfig{Name: "back"},
			})},
		}},
	}}
	require.NoError(t, g.MergeDescription(context.Background(), desc))
	for _, c := range g.Links {
		assert.Equal(t, link.Pinned, c.State)
		assert.Equal(t, "back", c.Target)
	}
}

func TestMergeDescriptionIntroducesProvider(t *testing.T) {
	g := New()
	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{{
			Name: "httpserver",
			Type: manifest.TypeCapability,
			Properties: manifest.Properties{
				Image:  "ghcr.io/wasmcloud/http-server:0.23.0",
				Config: []manifest.ConfigProperty{{Name: "addr", Properties: map[string]string{"address": "0.0.0.0:8080"}}},
			},
			Traits: []manifest.Trait{linkTrait("wasi", "http", "incoming-handler", "front")},
		}},
	}}
	require.NoError(t, g.MergeDescription(context.Background(), desc))

	cat, ok := g.Catalog("httpserver")
	require.True(t, ok)
	assert.True(t, cat.ImportsInterface(incoming))

	entry, _ := g.Component("httpserver")
	assert.Equal(t, manifest.TypeCapability, entry.Type)
	assert.Equal(t, "ghcr.io/wasmcloud/http-server:0.23.0", entry.Properties.Image)
	assert.Equal(t, "httpserver", entry.Properties.ID)
	require.Len(t, entry.Properties.Config, 1)

	require.Len(t, g.Links, 1)
	assert.Equal(t, link.Pinned, g.Links[0].State)
	assert.Equal(t, "front", g.Links[0].Target)
}

func TestMergeDescriptionIntroducesImage(t *testing.T) {
	loader := &fakeLoader{catalogs: map[string]catalog.Catalog{
		"file://back.wasm": catalog.New(nil, []catalog.Interface{orders}, nil),
	}}
	g := New(WithLoader(loader))

	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{
			{Name: "back", Type: manifest.TypeComponent, Properties: manifest.Properties{Image: "file://back.wasm"}},
			{Name: "broken", Type: manifest.TypeComponent, Properties: manifest.Properties{Image: "file://broken.wasm"}},
			{Name: "shared", Type: manifest.TypeComponent, Properties: manifest.Properties{
				Application: &manifest.SharedReference{Name: "other", Component: "shared"},
			}},
		},
	}}
	require.NoError(t, g.MergeDescription(context.Background(), desc))

	assert.Equal(t, []string{"back"}, g.CatalogNames())
	assert.Equal(t, []string{"back", "broken"}, loader.calls)
	require.Len(t, g.Warnings, 1)
	assert.Contains(t, g.Warnings[0], "broken")
}

func TestMergeDescriptionFatalDecode(t *testing.T) {
	g := New(
		WithLoader(&fakeLoader{}),
		WithDescriptionDecodePolicy(DecodeFailFatal),
	)
	desc := &manifest.Manifest{Spec: manifest.Specification{
		Components: []manifest.Component{
			{Name: "broken", Type: manifest.TypeComponent, Properties: manifest.Properties{Image: "file://broken.wasm"}},
		},
	}}
	err := g.MergeDescription(context.Background(), desc)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindComponent))
	assert.Contains(t, err.Error(), "not a WebAssembly binary")
}

func TestMergeDescriptionNil(t *testing.T) {
	err := New().MergeDescription(context.Background(), nil)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestEachCatalogOrder(t *testing.T) {
	g := New()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, g.MergeComponent(name, catalog.New(nil, nil, nil), name+".wasm"))
	}

	var seen []string
	g.EachCatalog(func(name string, _ catalog.Catalog) bool {
		seen = append(seen, name)
		return name != "a"
	})
	assert.Equal(t, []string{"c", "a"}, seen)
}

func TestDecodePolicyString(t *testing.T) {
	assert.Equal(t, "fatal", DecodeFailFatal.String())
	assert.Equal(t, "skip", DecodeFailSkip.String())
}
