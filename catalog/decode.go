package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wail/component"
	"github.com/wippyai/wail/errors"
)

// Decoder turns component binaries into catalogs.
type Decoder struct {
	logger       *zap.Logger
	verifyModule bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithCoreVerification compiles every embedded core module during decoding.
func WithCoreVerification() DecoderOption {
	return func(d *Decoder) {
		d.verifyModule = true
	}
}

// WithDecoderLogger sets the logger used for skipped names.
func WithDecoderLogger(l *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = l
	}
}

// NewDecoder creates a decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode extracts the interface catalog of a component binary. Import and
// export names that are not interface names (plain functions, types) carry
// no identity and are skipped.
func (d *Decoder) Decode(ctx context.Context, data []byte) (Catalog, error) {
	comp, err := component.Decode(data)
	if err != nil {
		return Catalog{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("decode component").
			Cause(err).
			Build()
	}

	if d.verifyModule {
		if err := component.VerifyCoreModules(ctx, comp); err != nil {
			return Catalog{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("verify core modules").
				Cause(err).
				Build()
		}
	}

	var imports, exports []Interface
	for _, imp := range comp.Imports {
		if id, ok := d.interfaceName(imp.Name, "import"); ok {
			imports = append(imports, id)
		}
	}
	for _, exp := range comp.Exports {
		if id, ok := d.interfaceName(exp.Name, "export"); ok {
			exports = append(exports, id)
		}
	}

	return New(imports, exports, nil), nil
}

func (d *Decoder) interfaceName(name, direction string) (Interface, bool) {
	id, err := ParseInterface(name)
	if err != nil {
		d.logger.Debug("skipping non-interface name",
			zap.String("direction", direction),
			zap.String("name", name),
			zap.Error(err))
		return Interface{}, false
	}
	return id, true
}
