// Package wasmtest assembles minimal Component Model binaries for tests.
//
// The binaries carry one empty core module plus import and export sections
// whose names follow the `ns:pkg/iface@version` convention, which is all the
// interface catalog decoder looks at.
package wasmtest

// CoreModule is the smallest valid core module: magic + version 1.
var CoreModule = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// Component header: magic + version 0x0d + layer 1.
var componentHeader = []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00}

const (
	sectionCustom     = 0
	sectionCoreModule = 1
	sectionImport     = 10
	sectionExport     = 11

	externInstance = 0x05
	sortInstance   = 0x05
	sortFunc       = 0x01
)

// Builder accumulates sections of a component binary.
type Builder struct {
	imports []string
	exports []string
	funcs   []string
	custom  map[string][]byte
	core    [][]byte
}

// New returns a builder with one empty core module.
func New() *Builder {
	return &Builder{core: [][]byte{CoreModule}}
}

// Import adds instance imports by name.
func (b *Builder) Import(names ...string) *Builder {
	b.imports = append(b.imports, names...)
	return b
}

// Export adds instance exports by name.
func (b *Builder) Export(names ...string) *Builder {
	b.exports = append(b.exports, names...)
	return b
}

// ExportFunc adds plain function exports, which carry no interface identity.
func (b *Builder) ExportFunc(names ...string) *Builder {
	b.funcs = append(b.funcs, names...)
	return b
}

// Custom adds a custom section.
func (b *Builder) Custom(name string, data []byte) *Builder {
	if b.custom == nil {
		b.custom = make(map[string][]byte)
	}
	b.custom[name] = data
	return b
}

// CoreModules replaces the embedded core modules.
func (b *Builder) CoreModules(mods ...[]byte) *Builder {
	b.core = mods
	return b
}

// Bytes encodes the component.
func (b *Builder) Bytes() []byte {
	out := append([]byte(nil), componentHeader...)

	for name, data := range b.custom {
		payload := appendName(nil, name)
		payload = append(payload, data...)
		out = appendSection(out, sectionCustom, payload)
	}

	for _, mod := range b.core {
		out = appendSection(out, sectionCoreModule, mod)
	}

	if len(b.imports) > 0 {
		payload := uleb(nil, uint32(len(b.imports)))
		for i, name := range b.imports {
			payload = append(payload, 0x00)
			payload = appendName(payload, name)
			payload = append(payload, externInstance)
			payload = uleb(payload, uint32(i))
		}
		out = appendSection(out, sectionImport, payload)
	}

	if n := len(b.exports) + len(b.funcs); n > 0 {
		payload := uleb(nil, uint32(n))
		for i, name := range b.exports {
			payload = append(payload, 0x00)
			payload = appendName(payload, name)
			payload = append(payload, sortInstance)
			payload = uleb(payload, uint32(i))
		}
		for i, name := range b.funcs {
			payload = append(payload, 0x00)
			payload = appendName(payload, name)
			payload = append(payload, sortFunc)
			payload = uleb(payload, uint32(i))
		}
		out = appendSection(out, sectionExport, payload)
	}

	return out
}

// Component is shorthand for New().Import(imports...).Export(exports...).Bytes().
func Component(imports, exports []string) []byte {
	return New().Import(imports...).Export(exports...).Bytes()
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = uleb(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendName(out []byte, name string) []byte {
	out = uleb(out, uint32(len(name)))
	return append(out, name...)
}

func uleb(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}
