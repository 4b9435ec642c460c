package component

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Component holds the parts of a WebAssembly Component binary that describe
// its outer interface surface.
type Component struct {
	CoreModules [][]byte
	Imports     []Import
	Exports     []Export
}

type Import struct {
	Name       string
	ExternKind byte
	TypeIndex  uint32
}

type Export struct {
	Name      string
	Sort      byte
	SortIndex uint32
}

// externDesc kinds
const (
	ExternCoreModule byte = 0x00
	ExternFunc       byte = 0x01
	ExternValue      byte = 0x02
	ExternType       byte = 0x03
	ExternComponent  byte = 0x04
	ExternInstance   byte = 0x05
)

// Sort kinds
const (
	SortCore      byte = 0x00
	SortFunc      byte = 0x01
	SortValue     byte = 0x02
	SortType      byte = 0x03
	SortComponent byte = 0x04
	SortInstance  byte = 0x05
)

// Section ids read by the decoder. Everything else is skipped.
const (
	sectionCoreModule byte = 1
	sectionImport     byte = 10
	sectionExport     byte = 11
)

const (
	// maxNameLength bounds allocations to prevent OOM from malformed binaries
	maxNameLength = 100000
	maxSections   = 100000
	maxEntries    = 100000
)

var (
	// ErrNotWasm is returned for data without the \0asm magic.
	ErrNotWasm = errors.New("not a WebAssembly binary")
	// ErrCoreModule is returned for core modules, which have no component
	// level imports or exports.
	ErrCoreModule = errors.New("core module, not a component")
)

// IsWasm reports whether data starts with the WebAssembly magic bytes.
func IsWasm(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 0x61 && data[2] == 0x73 && data[3] == 0x6D
}

// IsComponent reports whether data carries a component (not core module) header.
func IsComponent(data []byte) bool {
	if len(data) < 8 || !IsWasm(data) {
		return false
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	return version > 1
}

// Decode walks the top-level sections of a component binary.
func Decode(data []byte) (*Component, error) {
	if !IsWasm(data) {
		return nil, ErrNotWasm
	}
	if !IsComponent(data) {
		return nil, ErrCoreModule
	}

	r := getReader(data[8:])
	defer putReader(r)
	comp := &Component{}

	sectionCount := 0
	for {
		sectionCount++
		if sectionCount > maxSections {
			return nil, fmt.Errorf("exceeded maximum section count %d", maxSections)
		}

		sectionID, err := readByte(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read section ID: %w", err)
		}

		size, err := readLEB128(r)
		if err != nil {
			return nil, fmt.Errorf("read section size: %w", err)
		}

		// Sanity check on section size
		if size > uint32(len(data)) {
			return nil, fmt.Errorf("section %d size %d exceeds component size %d", sectionCount, size, len(data))
		}

		sectionData := make([]byte, size)
		if _, err := io.ReadFull(r, sectionData); err != nil {
			return nil, fmt.Errorf("read section data: %w", err)
		}

		switch sectionID {
		case sectionCoreModule:
			comp.CoreModules = append(comp.CoreModules, sectionData)
		case sectionImport:
			imports, err := decodeImports(sectionData)
			if err != nil {
				return nil, fmt.Errorf("decode imports: %w", err)
			}
			comp.Imports = append(comp.Imports, imports...)
		case sectionExport:
			exports, err := decodeExports(sectionData)
			if err != nil {
				return nil, fmt.Errorf("decode exports: %w", err)
			}
			comp.Exports = append(comp.Exports, exports...)
		}
	}

	return comp, nil
}

func decodeImports(data []byte) ([]Import, error) {
	r := getReader(data)
	defer putReader(r)

	count, err := readLEB128(r)
	if err != nil {
		return nil, err
	}
	if count > maxEntries {
		return nil, fmt.Errorf("import count %d exceeds maximum", count)
	}

	imports := make([]Import, 0, count)

	for i := uint32(0); i < count; i++ {
		// 0x00 plain name, 0x01 name with embedded version
		if _, err := readByte(r); err != nil {
			return nil, fmt.Errorf("import %d: read name kind: %w", i, err)
		}

		name, err := readName(r)
		if err != nil {
			return nil, fmt.Errorf("import %d: %w", i, err)
		}

		externKind, err := readByte(r)
		if err != nil {
			return nil, fmt.Errorf("import %d: read extern kind: %w", i, err)
		}

		if externKind == ExternCoreModule {
			extraByte, err := readByte(r)
			if err != nil {
				return nil, fmt.Errorf("import %d: read core module extra byte: %w", i, err)
			}
			if extraByte != 0x11 {
				return nil, fmt.Errorf("import %d: expected 0x11 after 0x00, got 0x%02x", i, extraByte)
			}
		}

		var typeIndex uint32
		if externKind == ExternType {
			boundsKind, err := readByte(r)
			if err != nil {
				return nil, fmt.Errorf("import %d: read type bounds kind: %w", i, err)
			}
			switch boundsKind {
			case 0x00:
				typeIndex, err = readLEB128(r)
				if err != nil {
					return nil, fmt.Errorf("import %d: read type bounds index: %w", i, err)
				}
			case 0x01:
				typeIndex = 0
			default:
				return nil, fmt.Errorf("import %d: unknown type bounds kind 0x%02x", i, boundsKind)
			}
		} else {
			typeIndex, err = readLEB128(r)
			if err != nil {
				return nil, fmt.Errorf("import %d: read type index: %w", i, err)
			}
		}

		imports = append(imports, Import{
			Name:       name,
			ExternKind: externKind,
			TypeIndex:  typeIndex,
		})
	}

	return imports, nil
}

func decodeExports(data []byte) ([]Export, error) {
	r := getReader(data)
	defer putReader(r)

	count, err := readLEB128(r)
	if err != nil {
		return nil, err
	}
	if count > maxEntries {
		return nil, fmt.Errorf("export count %d exceeds maximum", count)
	}

	exports := make([]Export, 0, count)

	for i := uint32(0); i < count; i++ {
		if _, err := readByte(r); err != nil {
			return nil, fmt.Errorf("export %d: read name kind: %w", i, err)
		}

		name, err := readName(r)
		if err != nil {
			return nil, fmt.Errorf("export %d: %w", i, err)
		}

		sort, err := readByte(r)
		if err != nil {
			return nil, fmt.Errorf("export %d: read sort: %w", i, err)
		}

		if sort == SortCore {
			if _, err := readByte(r); err != nil {
				return nil, fmt.Errorf("export %d: read core sort: %w", i, err)
			}
		}

		sortIndex, err := readLEB128(r)
		if err != nil {
			return nil, fmt.Errorf("export %d: read sort index: %w", i, err)
		}

		exports = append(exports, Export{
			Name:      name,
			Sort:      sort,
			SortIndex: sortIndex,
		})
	}

	return exports, nil
}

func readName(r io.Reader) (string, error) {
	n, err := readLEB128(r)
	if err != nil {
		return "", fmt.Errorf("read name length: %w", err)
	}
	if n > maxNameLength {
		return "", fmt.Errorf("name length %d exceeds maximum %d", n, maxNameLength)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read name: %w", err)
	}
	return string(buf), nil
}

func readLEB128(r io.Reader) (uint32, error) {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ { // Max 5 bytes for uint32
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 32 {
			return 0, fmt.Errorf("LEB128 value too large")
		}
	}
	return 0, fmt.Errorf("LEB128 encoding exceeded maximum length")
}
