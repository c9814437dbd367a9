package lexical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_PutGet(t *testing.T) {
	c := newResultCache(time.Minute, 4)
	matches := []Match{{File: "/w/a.go", Line: 3, Text: "alpha"}}

	c.put("k", matches)
	got, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, matches, got)
}

func TestResultCache_OldestInsertedEvicted(t *testing.T) {
	c := newResultCache(time.Minute, 2)
	c.put("first", []Match{{Line: 1}})
	c.put("second", []Match{{Line: 2}})

	// Re-reading the oldest entry must not save it from eviction.
	_, ok := c.get("first")
	require.True(t, ok)

	c.put("third", []Match{{Line: 3}})

	_, ok = c.get("first")
	assert.False(t, ok)
	_, ok = c.get("second")
	assert.True(t, ok)
	_, ok = c.get("third")
	assert.True(t, ok)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	c := newResultCache(time.Minute, 4)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.put("k", []Match{{Line: 1}})
	_, ok := c.get("k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("k")
	assert.False(t, ok)
}

func TestResultCache_ZeroTTLDisables(t *testing.T) {
	c := newResultCache(0, 4)
	c.put("k", []Match{{Line: 1}})
	_, ok := c.get("k")
	assert.False(t, ok)
}

func TestResultCache_ReinsertMovesToNewest(t *testing.T) {
	c := newResultCache(time.Minute, 2)
	c.put("a", []Match{{Line: 1}})
	c.put("b", []Match{{Line: 2}})
	c.put("a", []Match{{Line: 10}})
	c.put("c", []Match{{Line: 3}})

	_, ok := c.get("b")
	assert.False(t, ok)
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got[0].Line)
}

func TestCacheKey_Normalizes(t *testing.T) {
	a := cacheKey("  alpha ", []string{"/w"}, "*.go", 10, false)
	b := cacheKey("alpha", []string{"/w"}, "*.go", 10, false)
	assert.Equal(t, a, b)

	c := cacheKey("alpha", []string{"/w"}, "*.go", 10, true)
	assert.NotEqual(t, a, c)
}
