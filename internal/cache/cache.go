// Package cache is the read-through cache in front of public content lists.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Cache struct {
	c *gocache.Cache

	mu sync.Mutex
	// generations counts invalidations per key so a load that overlapped
	// one is not stored.
	generations map[string]uint64
}

// New returns a cache whose entries live for ttl. A non-positive ttl disables
// caching; every lookup goes to the loader.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{c: gocache.New(ttl, 2*ttl), generations: make(map[string]uint64)}
}

func (c *Cache) GetOrLoad(key string, load func() (any, error)) (any, error) {
	if c.c == nil {
		return load()
	}
	if data, found := c.c.Get(key); found {
		return data, nil
	}

	c.mu.Lock()
	gen := c.generations[key]
	c.mu.Unlock()

	data, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[key] == gen {
		c.c.Set(key, data, gocache.DefaultExpiration)
	}
	c.mu.Unlock()
	return data, nil
}

func (c *Cache) Invalidate(keys ...string) {
	if c.c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.generations[key]++
		c.c.Delete(key)
	}
}

// Load is GetOrLoad with a typed loader.
func Load[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	data, err := c.GetOrLoad(key, func() (any, error) { return load() })
	if err != nil {
		var zero T
		return zero, err
	}
	return data.(T), nil
}
