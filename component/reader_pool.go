package component

import (
	"bytes"
	"io"
	"sync"
)

// Section payloads are decoded through pooled readers; a registry scan
// decodes many binaries back to back.
var readerPool = sync.Pool{
	New: func() any {
		return &bytes.Reader{}
	},
}

func getReader(data []byte) *bytes.Reader {
	r := readerPool.Get().(*bytes.Reader)
	r.Reset(data)
	return r
}

func putReader(r *bytes.Reader) {
	r.Reset(nil)
	readerPool.Put(r)
}

func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
