package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the interface for our in-memory store of rendered views.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// InMemoryCache is a thread-safe in-memory cache whose entries expire after a TTL.
type InMemoryCache struct {
	items *gocache.Cache
}

// NewInMemoryCache creates a cache whose entries live for ttl.
// A ttl of zero or less keeps entries until the process exits.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		return &InMemoryCache{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &InMemoryCache{items: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(key string) (interface{}, bool) {
	return c.items.Get(key)
}

// Set adds a value to the cache, overwriting an existing one if present.
func (c *InMemoryCache) Set(key string, value interface{}) {
	c.items.Set(key, value, gocache.DefaultExpiration)
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *InMemoryCache) Len() int {
	return c.items.ItemCount()
}
