package lexical

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// resultCache is a TTL cache with insertion-order eviction: when capacity is
// exceeded the oldest-inserted entry goes first, regardless of access
// recency. Process-local, never persisted.
type resultCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]cacheEntry
	order    []string
	now      func() time.Time
}

type cacheEntry struct {
	matches []Match
	expires time.Time
}

func newResultCache(ttl time.Duration, capacity int) *resultCache {
	return &resultCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// cacheKey normalizes the request into a stable key.
func cacheKey(query string, scopes []string, glob string, maxResults int, caseSensitive bool) string {
	return fmt.Sprintf("%s|%s|%s|%d|%t",
		strings.TrimSpace(query), strings.Join(scopes, ","), glob, maxResults, caseSensitive)
}

func (c *resultCache) get(key string) ([]Match, bool) {
	if c.ttl == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		c.remove(key)
		return nil, false
	}
	return entry.matches, true
}

func (c *resultCache) put(key string, matches []Match) {
	if c.ttl == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.remove(key)
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.remove(c.order[0])
	}
	c.entries[key] = cacheEntry{matches: matches, expires: c.now().Add(c.ttl)}
	c.order = append(c.order, key)
}

// remove must be called with the lock held.
func (c *resultCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
