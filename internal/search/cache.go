package search

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResultCache stores search results by normalized query.
type ResultCache interface {
	// GetFresh returns the cached results for key if they have not expired.
	GetFresh(key string) ([]Result, bool)
	// Put stores results under key with a fresh expiry, replacing any
	// previous entry.
	Put(key string, results []Result)
}

// TTLCache is a process-lifetime ResultCache with a flat TTL. Expired
// entries are only detected on read and are never swept; they stay in
// memory until the same query overwrites them.
type TTLCache struct {
	items *gocache.Cache
	ttl   time.Duration
}

// NewTTLCache creates a TTLCache whose entries live for ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		// A cleanup interval of 0 disables the janitor goroutine.
		items: gocache.New(ttl, 0),
		ttl:   ttl,
	}
}

// GetFresh implements ResultCache.
func (c *TTLCache) GetFresh(key string) ([]Result, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	results, ok := v.([]Result)
	return results, ok
}

// Put implements ResultCache.
func (c *TTLCache) Put(key string, results []Result) {
	c.items.Set(key, results, c.ttl)
}

// Len reports how many entries are held, expired ones included.
func (c *TTLCache) Len() int {
	return c.items.ItemCount()
}
