package resolve

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/graph"
	"github.com/wippyai/wail/link"
	"github.com/wippyai/wail/whitelist"
)

// AmbiguityPolicy decides what happens when several components export the
// interface an unpinned link needs.
type AmbiguityPolicy int

const (
	// FirstMatch links to the first exporter in catalog insertion order.
	FirstMatch AmbiguityPolicy = iota
	// RejectAmbiguous reports an interface error listing the candidates.
	RejectAmbiguous
)

func (p AmbiguityPolicy) String() string {
	switch p {
	case FirstMatch:
		return "first-match"
	case RejectAmbiguous:
		return "reject-ambiguous"
	default:
		return fmt.Sprintf("AmbiguityPolicy(%d)", int(p))
	}
}

// Resolver links pending constructors to exporters and validates the graph.
type Resolver struct {
	policy    AmbiguityPolicy
	whitelist *whitelist.Set
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAmbiguityPolicy sets the ambiguity policy. The default is FirstMatch.
func WithAmbiguityPolicy(p AmbiguityPolicy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithWhitelist overrides the graph's runtime interface set for bypass.
func WithWhitelist(set whitelist.Set) Option {
	return func(r *Resolver) {
		r.whitelist = &set
	}
}

// New creates a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs one full pass over g. It updates constructor states in place
// and collects every problem in the report; it never stops early.
func (r *Resolver) Resolve(g *graph.Graph) *Report {
	report := newReport()
	report.Warnings = append(report.Warnings, g.Warnings...)

	wl := g.Whitelist()
	if r.whitelist != nil {
		wl = *r.whitelist
	}

	invalid := r.checkBasics(g, report)

	for _, c := range g.Links {
		if invalid[c] {
			continue
		}
		id := c.Interface()
		if wl.Contains(id) {
			Logger().Debug("runtime interface needs no link",
				zap.String("component", c.Source),
				zap.Stringer("interface", id))
			continue
		}
		if c.HasTarget() {
			r.verifyTarget(g, c, id, report)
			continue
		}
		r.findTarget(g, c, id, report)
	}

	Logger().Info("resolution finished",
		zap.Int("links", len(g.Links)),
		zap.Int("discovered", len(report.Discovered)),
		zap.Int("errors", len(report.Errors)))
	return report
}

// checkBasics validates component entries and link references. It returns
// the constructors that were already reported, so the link pass skips them.
func (r *Resolver) checkBasics(g *graph.Graph, report *Report) map[*link.Constructor]bool {
	for _, comp := range g.Components {
		if !comp.Properties.HasCode() {
			report.addError(errors.ComponentError(errors.PhaseResolve, comp.Name,
				fmt.Sprintf("%s must specify image or application", comp.Name)))
		}
	}

	invalid := make(map[*link.Constructor]bool)
	for _, c := range g.Links {
		if _, ok := g.Component(c.Source); !ok {
			report.addError(errors.LinkError(errors.PhaseResolve, c.Source,
				fmt.Sprintf("source component %q not found", c.Source)))
			continue
		}
		if c.HasTarget() {
			if _, ok := g.Component(c.Target); !ok {
				reason := fmt.Sprintf("target component %q not found", c.Target)
				invalid[c] = true
				c.Fail(reason)
				report.addError(errors.LinkError(errors.PhaseResolve, c.Source, reason))
				continue
			}
		}
		if err := c.Validate(); err != nil {
			invalid[c] = true
			report.addError(errors.New(errors.PhaseResolve, errors.KindLink).
				Component(c.Source).
				Detail("%s", err.Error()).
				Build())
		}
	}
	return invalid
}

func (r *Resolver) verifyTarget(g *graph.Graph, c *link.Constructor, id catalog.Interface, report *Report) {
	target, ok := g.Catalog(c.Target)
	if !ok {
		reason := fmt.Sprintf("target component %s not found", c.Target)
		c.Fail(reason)
		report.addError(errors.ComponentError(errors.PhaseResolve, c.Target, reason))
		return
	}
	if !target.ExportsInterface(id) {
		reason := fmt.Sprintf("component %s does not export interface %s required by %s", c.Target, id, c.Source)
		c.Fail(reason)
		report.addError(errors.InterfaceError(errors.PhaseResolve, c.Target, id.String(), reason))
		return
	}
	if c.State == link.Unsatisfiable {
		c.Pin(c.Target)
	}
}

func (r *Resolver) findTarget(g *graph.Graph, c *link.Constructor, id catalog.Interface, report *Report) {
	var candidates []string
	g.EachCatalog(func(name string, cat catalog.Catalog) bool {
		if name == c.Source || !cat.ExportsInterface(id) {
			return true
		}
		candidates = append(candidates, name)
		return r.policy == RejectAmbiguous
	})

	switch {
	case len(candidates) == 0:
		reason := fmt.Sprintf("no component exports interface %s required by %s", id, c.Source)
		if c.State != link.Unsatisfiable {
			c.Fail(reason)
		}
		report.addError(errors.InterfaceError(errors.PhaseResolve, c.Source, id.String(), reason))
		report.Unlinked = append(report.Unlinked, Unlinked{Component: c.Source, Interface: id})

	case len(candidates) > 1 && r.policy == RejectAmbiguous:
		reason := fmt.Sprintf("interface %s required by %s is exported by several components: %s",
			id, c.Source, strings.Join(candidates, ", "))
		c.Fail(reason)
		report.addError(errors.New(errors.PhaseResolve, errors.KindInterface).
			Component(c.Source).
			Interface(id.String()).
			Value(candidates).
			Detail("%s", reason).
			Build())
		report.Unlinked = append(report.Unlinked, Unlinked{Component: c.Source, Interface: id, Candidates: candidates})

	default:
		if err := c.Resolve(candidates[0]); err != nil {
			report.addError(errors.New(errors.PhaseResolve, errors.KindLink).
				Component(c.Source).
				Interface(id.String()).
				Detail("cannot link to %s", candidates[0]).
				Cause(err).
				Build())
			return
		}
		report.Discovered = append(report.Discovered, c)
		Logger().Debug("resolved link",
			zap.String("source", c.Source),
			zap.String("target", c.Target),
			zap.Stringer("interface", id))
	}
}
