package smcache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsscopes/internal/scopeindex"
	"github.com/standardbeagle/jsscopes/internal/scopename"
)

func buildIndex(t *testing.T, entries ...scopename.Entry) *scopeindex.ScopeIndex {
	t.Helper()
	idx, err := scopeindex.New(entries)
	require.NoError(t, err)
	return idx
}

func TestWriteRead_RoundTripsNamedAnonymousAndGaps(t *testing.T) {
	idx := buildIndex(t,
		scopename.Entry{Span: scopename.Span{Start: 0}, Name: nil},
		scopename.Entry{Span: scopename.Span{Start: 10}, Name: scopename.New(scopename.Interpolation("Klass.method"))},
		scopename.Entry{Span: scopename.Span{Start: 20}, Name: scopename.New(scopename.Interpolation("other"))},
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))

	c, err := Read(&buf)
	require.NoError(t, err)

	// Offsets 0 and 5 fall in the anonymous entry starting at 0.
	got := c.Lookup(0)
	require.Equal(t, scopeindex.AnonymousScope, got.Kind)

	got = c.Lookup(5)
	require.Equal(t, scopeindex.AnonymousScope, got.Kind)

	got = c.Lookup(10)
	require.Equal(t, scopeindex.NamedScope, got.Kind)
	require.Equal(t, "Klass.method", got.Name)

	got = c.Lookup(15)
	require.Equal(t, scopeindex.NamedScope, got.Kind)
	require.Equal(t, "Klass.method", got.Name)

	got = c.Lookup(20)
	require.Equal(t, scopeindex.NamedScope, got.Kind)
	require.Equal(t, "other", got.Name)
}

func TestLookup_BeforeFirstEntryIsUnknown(t *testing.T) {
	idx := buildIndex(t, scopename.Entry{Span: scopename.Span{Start: 10}, Name: scopename.New(scopename.Interpolation("foo"))})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))

	c, err := Read(&buf)
	require.NoError(t, err)

	got := c.Lookup(5)
	require.Equal(t, scopeindex.Unknown, got.Kind)
}

func TestWriteRead_EmptyIndex(t *testing.T) {
	idx := buildIndex(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))

	c, err := Read(&buf)
	require.NoError(t, err)

	got := c.Lookup(0)
	require.Equal(t, scopeindex.Unknown, got.Kind)
}

func TestWriteRead_DuplicateNamesInternedOnce(t *testing.T) {
	idx := buildIndex(t,
		scopename.Entry{Span: scopename.Span{Start: 0}, Name: scopename.New(scopename.Interpolation("dup"))},
		scopename.Entry{Span: scopename.Span{Start: 10}, Name: scopename.New(scopename.Interpolation("dup"))},
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))
	written := buf.Len()

	c, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, "dup", c.Lookup(0).Name)
	require.Equal(t, "dup", c.Lookup(10).Name)
	// 32-byte header (4 uint32 fields + 16 reserved bytes) + 2*8-byte
	// records + one 4-byte ("dup\0") interned string entry.
	require.Equal(t, 32+16+4, written)
}

func TestRead_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0}) // wrong magic
	buf.Write(make([]byte, 28))   // rest of the 32-byte header

	_, err := Read(&buf)
	require.Error(t, err)
}

func TestRead_RejectsTruncatedHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 2, 3})

	_, err := Read(&buf)
	require.Error(t, err)
}

func TestRead_RejectsUnsupportedVersion(t *testing.T) {
	idx := buildIndex(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))

	raw := buf.Bytes()
	// Version is the second little-endian uint32, right after magic.
	raw[4] = 99

	_, err := Read(bytes.NewReader(raw))
	require.Error(t, err)
}
