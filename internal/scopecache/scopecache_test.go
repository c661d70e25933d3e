package scopecache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsscopes/internal/scopeindex"
	"github.com/standardbeagle/jsscopes/internal/scopename"
)

func emptyIndex(t *testing.T) *scopeindex.ScopeIndex {
	t.Helper()
	idx, err := scopeindex.New(nil)
	require.NoError(t, err)
	return idx
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
}

func TestGet_MissOnEmptyCache(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	_, ok := c.Get(123)
	require.False(t, ok)
}

func TestPutThenGet_ReturnsSameIndex(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	idx := emptyIndex(t)
	c.Put(42, idx)

	got, ok := c.Get(42)
	require.True(t, ok)
	require.Same(t, idx, got)
}

func TestLen_TracksStoredEntries(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	require.Equal(t, 0, c.Len())
	c.Put(1, emptyIndex(t))
	c.Put(2, emptyIndex(t))
	require.Equal(t, 2, c.Len())
}

func TestPut_EvictsLeastRecentlyUsedWhenFull(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Put(1, emptyIndex(t))
	c.Put(2, emptyIndex(t))

	// Touch 1 so 2 becomes the least recently used.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Put(3, emptyIndex(t))

	_, ok = c.Get(2)
	require.False(t, ok, "least recently used entry should have been evicted")
	_, ok = c.Get(1)
	require.True(t, ok)
	_, ok = c.Get(3)
	require.True(t, ok)
}

func TestPurge_EmptiesCache(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Put(1, emptyIndex(t))
	c.Put(2, emptyIndex(t))
	require.Equal(t, 2, c.Len())

	c.Purge()
	require.Equal(t, 0, c.Len())
	_, ok := c.Get(1)
	require.False(t, ok)
}

func TestPut_OverwritesExistingEntry(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	first := emptyIndex(t)
	second, err := scopeindex.New([]scopename.Entry{
		{Span: scopename.Span{Start: 0}, Name: scopename.New(scopename.Interpolation("foo"))},
	})
	require.NoError(t, err)

	c.Put(1, first)
	c.Put(1, second)

	got, ok := c.Get(1)
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, c.Len())
}
