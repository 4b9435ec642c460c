// Package loader turns component declarations and image references into
// interface catalogs.
//
// File sources are read and decoded; registry references are only understood
// when they name a built-in provider. Decoded catalogs are cached by content
// digest so a binary shared by several components is decoded once.
package loader

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/manifest"
)

// DefaultCacheSize bounds the number of decoded catalogs kept in memory.
const DefaultCacheSize = 256

// ErrUnsupportedReference is returned for registry references that do not
// name a built-in provider. Pulling images from a registry is not supported.
var ErrUnsupportedReference = stderrors.New("unsupported component reference")

// Stats counts cache behavior.
type Stats struct {
	Hits   int
	Misses int
}

// Loader builds catalogs from files and provider references.
type Loader struct {
	decoder   *catalog.Decoder
	providers catalog.Providers
	baseDir   string
	cacheSize int
	cache     *lru.Cache[digest.Digest, catalog.Catalog]
	logger    *zap.Logger
	stats     Stats
}

// Option configures a Loader.
type Option func(*Loader)

// WithDecoder sets the binary decoder.
func WithDecoder(d *catalog.Decoder) Option {
	return func(l *Loader) {
		l.decoder = d
	}
}

// WithProviders replaces the built-in provider table.
func WithProviders(ps catalog.Providers) Option {
	return func(l *Loader) {
		l.providers = ps
	}
}

// WithBaseDir resolves relative paths against dir instead of the working
// directory.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithCacheSize bounds the decode cache.
func WithCacheSize(n int) Option {
	return func(l *Loader) {
		l.cacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = log
	}
}

// New creates a loader.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		providers: catalog.DefaultProviders(),
		cacheSize: DefaultCacheSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.decoder == nil {
		l.decoder = catalog.NewDecoder(catalog.WithDecoderLogger(l.logger))
	}

	cache, err := lru.New[digest.Digest, catalog.Catalog](l.cacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "create decode cache")
	}
	l.cache = cache
	return l, nil
}

// Stats returns cache counters.
func (l *Loader) Stats() Stats {
	return l.stats
}

// LoadEntity builds the catalog of a declared component and returns it with
// the image location to record for it.
func (l *Loader) LoadEntity(ctx context.Context, e manifest.Entity) (catalog.Catalog, string, error) {
	if e.Source == nil {
		path, err := l.conventionalPath(e)
		if err != nil {
			return catalog.Catalog{}, "", err
		}
		cat, err := l.decodeFile(ctx, e.Name, path)
		return cat, manifest.FileScheme + path, err
	}

	switch e.Source.Kind {
	case manifest.SourceFile:
		path := l.resolve(e.Source.Value)
		cat, err := l.decodeFile(ctx, e.Name, path)
		return cat, manifest.FileScheme + path, err
	case manifest.SourceOCI:
		if p, ok := l.providers.ByReference(e.Source.Value); ok {
			l.logger.Debug("using built-in provider",
				zap.String("component", e.Name),
				zap.String("provider", p.Name))
			return p.Catalog.Clone(), e.Source.Value, nil
		}
		return catalog.Catalog{}, "", l.unsupported(e.Name, e.Source.String())
	default:
		return catalog.Catalog{}, "", l.unsupported(e.Name, e.Source.String())
	}
}

// LoadImage builds the catalog of a component named in a manifest. Images
// are file URLs, bare paths or provider references.
func (l *Loader) LoadImage(ctx context.Context, name, image string) (catalog.Catalog, error) {
	if p, ok := l.providers.ByReference(image); ok {
		return p.Catalog.Clone(), nil
	}
	if strings.HasPrefix(image, manifest.FileScheme) {
		return l.decodeFile(ctx, name, l.resolve(strings.TrimPrefix(image, manifest.FileScheme)))
	}
	if strings.Contains(image, "://") {
		return catalog.Catalog{}, l.unsupported(name, image)
	}
	path := l.resolve(image)
	if _, err := os.Stat(path); err != nil {
		return catalog.Catalog{}, l.unsupported(name, image)
	}
	return l.decodeFile(ctx, name, path)
}

func (l *Loader) conventionalPath(e manifest.Entity) (string, error) {
	pattern := l.resolve(e.DefaultLocation())
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Component(e.Name).
			Detail("bad build location %s", pattern).
			Cause(err).
			Build()
	}
	if len(matches) == 0 {
		return "", errors.New(errors.PhaseLoad, errors.KindNotFound).
			Component(e.Name).
			Detail("no component binary matches %s", pattern).
			Build()
	}
	slices.Sort(matches)
	if len(matches) > 1 {
		l.logger.Warn("several binaries in build directory, using the first",
			zap.String("component", e.Name),
			zap.Strings("matches", matches))
	}
	return matches[0], nil
}

func (l *Loader) decodeFile(ctx context.Context, name, path string) (catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Catalog{}, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Component(name).
			Detail("read %s", path).
			Cause(err).
			Build()
	}

	key := digest.FromBytes(data)
	if cat, ok := l.cache.Get(key); ok {
		l.stats.Hits++
		l.logger.Debug("decode cache hit",
			zap.String("component", name),
			zap.String("digest", key.String()))
		return cat.Clone(), nil
	}
	l.stats.Misses++

	cat, err := l.decoder.Decode(ctx, data)
	if err != nil {
		return catalog.Catalog{}, errors.Decode(name, err)
	}
	l.cache.Add(key, cat)
	l.logger.Debug("decoded component",
		zap.String("component", name),
		zap.String("path", path),
		zap.String("digest", key.String()),
		zap.Int("imports", len(cat.Imports)),
		zap.Int("exports", len(cat.Exports)))
	return cat.Clone(), nil
}

func (l *Loader) resolve(path string) string {
	if l.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.baseDir, path)
}

func (l *Loader) unsupported(name, ref string) error {
	err := errors.Unsupported(errors.PhaseLoad, ref)
	err.Component = name
	err.Cause = ErrUnsupportedReference
	return err
}
