package wail

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/emit"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/graph"
	"github.com/wippyai/wail/loader"
	"github.com/wippyai/wail/manifest"
	"github.com/wippyai/wail/resolve"
	"github.com/wippyai/wail/whitelist"
)

// ErrInvalidManifest is returned when resolution reports errors. The result
// still carries the graph and report, but no manifest.
var ErrInvalidManifest = stderrors.New("invalid manifest")

// Options configure one run.
type Options struct {
	// Components are decoded and merged first; any failure aborts the run.
	Components *manifest.ComponentsConfig
	// Description is an existing manifest folded in after the components.
	Description *manifest.Manifest
	// Defaults fill the metadata when the description carries none.
	Defaults emit.Defaults

	// Strict rejects interfaces exported by more than one component.
	Strict bool
	// Verify compiles embedded core modules while decoding.
	Verify bool
	// FailOnDescriptionDecode makes unloadable description images fatal
	// instead of skipped with a warning.
	FailOnDescriptionDecode bool

	// BaseDir resolves relative component paths.
	BaseDir string
	// Whitelist replaces the default runtime interface set.
	Whitelist *whitelist.Set
	// Loader replaces the default loader; BaseDir and Verify are ignored.
	Loader *loader.Loader
}

// Result is the outcome of a run.
type Result struct {
	Graph    *graph.Graph
	Report   *resolve.Report
	Manifest *manifest.Manifest
}

// Run merges the configured inputs, resolves every link and emits the
// manifest. It is all-or-nothing: a merge failure returns no result, and an
// invalid report returns ErrInvalidManifest without a manifest.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Components == nil && opts.Description == nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, "either components or a description is required")
	}

	ld := opts.Loader
	if ld == nil {
		var err error
		ld, err = newLoader(opts)
		if err != nil {
			return nil, err
		}
	}

	gopts := []graph.Option{graph.WithLoader(ld)}
	if opts.Whitelist != nil {
		gopts = append(gopts, graph.WithWhitelist(*opts.Whitelist))
	}
	if opts.FailOnDescriptionDecode {
		gopts = append(gopts, graph.WithDescriptionDecodePolicy(graph.DecodeFailFatal))
	}
	g := graph.New(gopts...)

	if opts.Components != nil {
		for _, e := range opts.Components.Entities {
			cat, location, err := ld.LoadEntity(ctx, e)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", e.Name, err)
			}
			if err := g.MergeComponent(e.Name, cat, location); err != nil {
				return nil, err
			}
			Logger().Info("merged component",
				zap.String("component", e.Name),
				zap.String("location", location))
		}
	}

	if opts.Description != nil {
		if err := g.MergeDescription(ctx, opts.Description); err != nil {
			return nil, err
		}
		Logger().Info("merged description",
			zap.String("name", opts.Description.Metadata.Name),
			zap.Int("components", len(opts.Description.Spec.Components)))
	}

	var ropts []resolve.Option
	if opts.Strict {
		ropts = append(ropts, resolve.WithAmbiguityPolicy(resolve.RejectAmbiguous))
	}
	report := resolve.New(ropts...).Resolve(g)

	res := &Result{Graph: g, Report: report}
	if !report.Valid {
		return res, fmt.Errorf("%w: %w", ErrInvalidManifest, report.Err())
	}
	for _, w := range report.Warnings {
		Logger().Warn(w)
	}

	res.Manifest = emit.Manifest(g, opts.Defaults)
	return res, nil
}

func newLoader(opts Options) (*loader.Loader, error) {
	log := Logger().Named("loader")
	dopts := []catalog.DecoderOption{catalog.WithDecoderLogger(log)}
	if opts.Verify {
		dopts = append(dopts, catalog.WithCoreVerification())
	}
	return loader.New(
		loader.WithDecoder(catalog.NewDecoder(dopts...)),
		loader.WithBaseDir(opts.BaseDir),
		loader.WithLogger(log),
	)
}
