package graph

import (
	"context"
	"fmt"
	"maps"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/link"
	"github.com/wippyai/wail/manifest"
	"github.com/wippyai/wail/whitelist"
)

// DecodePolicy decides what a catalog-construction failure does to a merge.
type DecodePolicy int

const (
	// DecodeFailFatal aborts the merge.
	DecodeFailFatal DecodePolicy = iota
	// DecodeFailSkip records a warning and leaves the component out.
	DecodeFailSkip
)

func (p DecodePolicy) String() string {
	switch p {
	case DecodeFailFatal:
		return "fatal"
	case DecodeFailSkip:
		return "skip"
	default:
		return fmt.Sprintf("DecodePolicy(%d)", int(p))
	}
}

// ImageLoader builds the catalog of a component named in a description.
type ImageLoader interface {
	LoadImage(ctx context.Context, name, image string) (catalog.Catalog, error)
}

// Graph is the application being assembled: component entries, their
// catalogs in insertion order, and one link constructor per non-runtime
// import. It only grows; nothing is ever removed.
type Graph struct {
	APIVersion string
	Kind       string
	Metadata   *manifest.Metadata

	Components []manifest.Component
	Policies   []manifest.Policy
	Links      []*link.Constructor

	// Warnings collects non-fatal problems found while merging.
	Warnings []string

	catalogs   *orderedmap.OrderedMap[string, catalog.Catalog]
	whitelist  whitelist.Set
	providers  catalog.Providers
	loader     ImageLoader
	descPolicy DecodePolicy
}

// Option configures a Graph.
type Option func(*Graph)

// WithWhitelist replaces the default runtime interface set.
func WithWhitelist(set whitelist.Set) Option {
	return func(g *Graph) {
		g.whitelist = set
	}
}

// WithProviders replaces the built-in provider table.
func WithProviders(ps catalog.Providers) Option {
	return func(g *Graph) {
		g.providers = ps
	}
}

// WithLoader sets the loader used for description components with an image.
func WithLoader(l ImageLoader) Option {
	return func(g *Graph) {
		g.loader = l
	}
}

// WithDescriptionDecodePolicy sets how MergeDescription treats images that
// fail to load. The default is DecodeFailSkip.
func WithDescriptionDecodePolicy(p DecodePolicy) Option {
	return func(g *Graph) {
		g.descPolicy = p
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		catalogs:   orderedmap.New[string, catalog.Catalog](),
		whitelist:  whitelist.Default(),
		providers:  catalog.DefaultProviders(),
		descPolicy: DecodeFailSkip,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Whitelist returns the runtime interface set the graph filters with.
func (g *Graph) Whitelist() whitelist.Set {
	return g.whitelist
}

// Catalog returns the catalog of a known component.
func (g *Graph) Catalog(name string) (catalog.Catalog, bool) {
	return g.catalogs.Get(name)
}

// HasCatalog reports whether name has been merged.
func (g *Graph) HasCatalog(name string) bool {
	_, ok := g.catalogs.Get(name)
	return ok
}

// CatalogNames lists known components in insertion order.
func (g *Graph) CatalogNames() []string {
	names := make([]string, 0, g.catalogs.Len())
	for pair := g.catalogs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// EachCatalog calls fn for every catalog in insertion order until fn
// returns false.
func (g *Graph) EachCatalog(fn func(name string, c catalog.Catalog) bool) {
	for pair := g.catalogs.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Component returns the entry named name.
func (g *Graph) Component(name string) (*manifest.Component, bool) {
	for i := range g.Components {
		if g.Components[i].Name == name {
			return &g.Components[i], true
		}
	}
	return nil, false
}

// LinksFrom returns the constructors whose source is name, in list order.
func (g *Graph) LinksFrom(name string) []*link.Constructor {
	var out []*link.Constructor
	for _, c := range g.Links {
		if c.Source == name {
			out = append(out, c)
		}
	}
	return out
}

// MergeComponent introduces or refreshes a component. It stores the
// catalog, creates or updates the component entry, and appends a pending
// link for every import the runtime does not provide.
//
// Merging the same component twice appends its links twice; callers merge a
// component once per catalog.
func (g *Graph) MergeComponent(name string, cat catalog.Catalog, location string) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseMerge, "component name is empty")
	}

	g.catalogs.Set(name, cat.Clone())

	if entry, ok := g.Component(name); ok {
		entry.Properties.Image = location
	} else {
		g.Components = append(g.Components, manifest.Component{
			Name: name,
			Type: manifest.TypeComponent,
			Properties: manifest.Properties{
				Image: location,
				ID:    name,
			},
		})
	}

	added := 0
	for _, imp := range cat.Imports {
		if g.whitelist.Contains(imp) {
			continue
		}
		g.Links = append(g.Links, link.New(name, imp))
		added++
	}

	Logger().Debug("merged component",
		zap.String("component", name),
		zap.String("location", location),
		zap.Int("imports", len(cat.Imports)),
		zap.Int("exports", len(cat.Exports)),
		zap.Int("links", added))
	return nil
}

// MergeDescription folds an existing application manifest into the graph.
// Components already known only contribute link pins and missing traits;
// unknown ones are introduced through MergeComponent first.
func (g *Graph) MergeDescription(ctx context.Context, desc *manifest.Manifest) error {
	if desc == nil {
		return errors.InvalidInput(errors.PhaseMerge, "description is nil")
	}

	if g.APIVersion == "" {
		g.APIVersion = desc.APIVersion
	}
	if g.Kind == "" {
		g.Kind = desc.Kind
	}
	if g.Metadata == nil && !isEmptyMetadata(desc.Metadata) {
		md := cloneMetadata(desc.Metadata)
		g.Metadata = &md
	}

	for i := range desc.Spec.Components {
		dc := &desc.Spec.Components[i]
		if !g.HasCatalog(dc.Name) {
			introduced, err := g.introduce(ctx, dc)
			if err != nil {
				return err
			}
			if !introduced {
				continue
			}
		}
		if err := g.applyTraits(dc); err != nil {
			return err
		}
	}

	g.Policies = append(g.Policies, desc.Spec.Policies...)
	return nil
}

// introduce merges a description component the graph has not seen. It
// reports false when the component was skipped.
func (g *Graph) introduce(ctx context.Context, dc *manifest.Component) (bool, error) {
	log := Logger().With(zap.String("component", dc.Name))

	var cat catalog.Catalog
	switch p, isProvider := g.providers.ByName(dc.Name); {
	case dc.Type == manifest.TypeCapability && isProvider:
		cat = p.Catalog
	case dc.Properties.Image != "" && g.loader != nil:
		loaded, err := g.loader.LoadImage(ctx, dc.Name, dc.Properties.Image)
		if err != nil {
			if g.descPolicy == DecodeFailFatal {
				return false, errors.New(errors.PhaseMerge, errors.KindComponent).
					Component(dc.Name).
					Detail("load image %s", dc.Properties.Image).
					Cause(err).
					Build()
			}
			msg := fmt.Sprintf("skipping component %s: %v", dc.Name, err)
			g.Warnings = append(g.Warnings, msg)
			log.Warn("skipping component with unloadable image",
				zap.String("image", dc.Properties.Image),
				zap.Error(err))
			return false, nil
		}
		cat = loaded
	default:
		log.Info("ignoring description component",
			zap.String("type", string(dc.Type)),
			zap.String("image", dc.Properties.Image))
		return false, nil
	}

	if err := g.MergeComponent(dc.Name, cat, dc.Properties.Image); err != nil {
		return false, err
	}

	entry, _ := g.Component(dc.Name)
	if dc.Type != "" {
		entry.Type = dc.Type
	}
	props := dc.Properties
	if props.ID == "" {
		props.ID = entry.Properties.ID
	}
	entry.Properties = props
	return true, nil
}

// applyTraits pins links declared by dc and adopts its other traits.
func (g *Graph) applyTraits(dc *manifest.Component) error {
	cat, _ := g.catalogs.Get(dc.Name)
	entry, ok := g.Component(dc.Name)
	if !ok {
		return errors.NotFound(errors.PhaseMerge, "component entry", dc.Name)
	}
	log := Logger().With(zap.String("component", dc.Name))

	for _, tr := range dc.Traits {
		if !tr.IsLink() {
			if !hasTraitType(entry.Traits, tr.Type) {
				entry.Traits = append(entry.Traits, tr.Clone())
			}
			continue
		}

		lp := tr.Link
		ids := make([]catalog.Interface, 0, len(lp.Interfaces))
		for _, name := range lp.Interfaces {
			id := catalog.NewInterface(lp.Namespace, lp.Package, name)
			if !cat.ImportsInterface(id) {
				return errors.ComponentMismatch(dc.Name, id.String())
			}
			ids = append(ids, id)
		}

		if g.allWhitelisted(ids) {
			log.Debug("ignoring link for runtime interface",
				zap.Strings("interfaces", lp.Interfaces))
			continue
		}
		if lp.Target.Name == "" {
			log.Debug("ignoring link without target",
				zap.Strings("interfaces", lp.Interfaces))
			continue
		}

		pinned := g.pin(dc.Name, lp, ids)
		if pinned == 0 {
			log.Info("no pending link matches description link",
				zap.String("namespace", lp.Namespace),
				zap.String("package", lp.Package),
				zap.Strings("interfaces", lp.Interfaces))
		}
	}
	return nil
}

// pin sets the target on the constructor matching the trait exactly, or, for
// multi-interface traits, on each single-interface constructor it covers.
func (g *Graph) pin(source string, lp *manifest.LinkProperty, ids []catalog.Interface) int {
	for _, c := range g.Links {
		if c.Matches(source, lp.Interfaces, lp.Namespace, lp.Package) {
			c.Pin(lp.Target.Name)
			return 1
		}
	}
	if len(ids) < 2 {
		return 0
	}
	n := 0
	for _, id := range ids {
		for _, c := range g.Links {
			if c.Matches(source, []string{id.Name}, id.Namespace, id.Package) {
				c.Pin(lp.Target.Name)
				n++
				break
			}
		}
	}
	return n
}

func (g *Graph) allWhitelisted(ids []catalog.Interface) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !g.whitelist.Contains(id) {
			return false
		}
	}
	return true
}

func hasTraitType(traits []manifest.Trait, typ string) bool {
	for _, t := range traits {
		if t.Type == typ {
			return true
		}
	}
	return false
}

func isEmptyMetadata(md manifest.Metadata) bool {
	return md.Name == "" && len(md.Annotations) == 0 && len(md.Labels) == 0
}

func cloneMetadata(md manifest.Metadata) manifest.Metadata {
	return manifest.Metadata{
		Name:        md.Name,
		Annotations: maps.Clone(md.Annotations),
		Labels:      maps.Clone(md.Labels),
	}
}
