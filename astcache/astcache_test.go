package astcache

import (
	"testing"

	"github.com/aetherscript/aether/parser"
	"github.com/stretchr/testify/require"
)

func TestGetMissThenInsertThenHit(t *testing.T) {
	c := New(4)
	prog, err := parser.Parse("Set X 1")
	require.NoError(t, err)

	_, ok := c.Get("Set X 1")
	require.False(t, ok)

	c.Insert("Set X 1", prog)
	got, ok := c.Get("Set X 1")
	require.True(t, ok)
	require.Same(t, prog, got)

	stats := c.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, 1, stats.Size)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	p1, _ := parser.Parse("Set A 1")
	p2, _ := parser.Parse("Set B 1")
	p3, _ := parser.Parse("Set C 1")

	c.Insert("a", p1)
	c.Insert("b", p2)
	c.Get("a") // a is now most-recently-used
	c.Insert("c", p3)

	_, ok := c.Get("b")
	require.False(t, ok, "b should have been evicted as least-recently-used")
	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestClearResetsCountersAndEntries(t *testing.T) {
	c := New(4)
	p1, _ := parser.Parse("Set A 1")
	c.Insert("a", p1)
	c.Get("a")
	c.Get("missing")

	c.Clear()
	stats := c.Stats()
	require.Equal(t, 0, stats.Size)
	require.Equal(t, uint64(0), stats.Hits)
	require.Equal(t, uint64(0), stats.Misses)
}
