package snapshot

import (
	"sync"
	"time"

	"github.com/railyard-ops/railyard/core/store"
)

// Cache is an explicit per-resource TTL cache over raw table reads. It
// is owned by the Loader and injected where needed; invalidation is an
// explicit call made by the commit pipeline after a mutation, never a
// hidden side effect of a write path.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	rows   []store.Row
	expiry time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns the cached rows for the resource when still fresh.
func (c *Cache) Get(resource string) ([]store.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[resource]
	if !ok || c.now().After(e.expiry) {
		delete(c.entries, resource)
		return nil, false
	}
	return e.rows, true
}

// Put stores rows for the resource with the given time to live.
func (c *Cache) Put(resource string, rows []store.Row, ttl time.Duration) {
	c.mu.Lock()
	c.entries[resource] = cacheEntry{rows: rows, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops the entries for the given resources.
func (c *Cache) Invalidate(resources ...string) {
	c.mu.Lock()
	for _, r := range resources {
		delete(c.entries, r)
	}
	c.mu.Unlock()
}
