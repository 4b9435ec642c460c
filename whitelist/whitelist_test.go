package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wippyai/wail/catalog"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, 12, s.Len())

	for _, name := range []string{
		"wasi:io/poll", "wasi:io/error", "wasi:io/streams", "wasi:http/types",
		"wasi:cli/environment", "wasi:cli/exit", "wasi:cli/stdin", "wasi:cli/stdout",
		"wasi:cli/stderr", "wasi:clocks/wall-clock", "wasi:filesystem/types",
		"wasi:filesystem/preopens",
	} {
		assert.True(t, s.Contains(catalog.MustParseInterface(name)), name)
	}

	assert.False(t, s.Contains(catalog.MustParseInterface("wasi:http/incoming-handler")))
	assert.False(t, s.Contains(catalog.MustParseInterface("other:io/streams")))
}

func TestWith_DoesNotMutate(t *testing.T) {
	base := New(catalog.NewInterface("a", "b", "c"))
	extended := base.With(catalog.NewInterface("x", "y", "z"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
	assert.False(t, base.Contains(catalog.NewInterface("x", "y", "z")))
	assert.True(t, extended.Contains(catalog.NewInterface("a", "b", "c")))
}

func TestZeroValue(t *testing.T) {
	var s Set
	assert.False(t, s.Contains(catalog.NewInterface("wasi", "io", "poll")))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestList_Sorted(t *testing.T) {
	s := New(
		catalog.NewInterface("wasi", "io", "poll"),
		catalog.NewInterface("wasi", "cli", "exit"),
	)
	assert.Equal(t, []catalog.Interface{
		catalog.NewInterface("wasi", "cli", "exit"),
		catalog.NewInterface("wasi", "io", "poll"),
	}, s.List())
}
