package component

import (
	"testing"

	"github.com/wippyai/wail/internal/wasmtest"
)

func FuzzDecode(f *testing.F) {
	f.Add(wasmtest.Component([]string{"ns:pkg/a@0.1.0"}, []string{"ns:pkg/b"}))
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00})
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	f.Add([]byte{0x00, 0x61, 0x73})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		comp, err := Decode(data)
		if err == nil && comp == nil {
			t.Fatal("nil component without error")
		}
	})
}

func FuzzIsComponent(f *testing.F) {
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00})
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		if IsComponent(data) && !IsWasm(data) {
			t.Fatal("component without wasm magic")
		}
	})
}
