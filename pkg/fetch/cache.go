package fetch

import (
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a process-local, time-boxed store of fetched payloads keyed by
// endpoint plus parameters. It only avoids redundant network calls within a
// run; a miss is never an error, and nothing persists across processes.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates an empty response cache. Entries carry their own TTL;
// expired entries are swept every few minutes.
func NewCache() *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 5*time.Minute),
	}
}

// GetOrFetch returns the cached payload for key if present and unexpired;
// otherwise it invokes fn, caches the result under ttl, and returns it.
// A non-positive ttl bypasses the cache entirely.
func (c *Cache) GetOrFetch(key string, ttl time.Duration, fn func() (*Payload, error)) (*Payload, error) {
	if c == nil || ttl <= 0 {
		return fn()
	}

	if cached, ok := c.store.Get(key); ok {
		return cached.(*Payload), nil
	}

	payload, err := fn()
	if err != nil {
		return nil, err
	}

	c.store.Set(key, payload, ttl)
	return payload, nil
}

// CacheKey builds a canonical cache key from an endpoint and its parameters.
// url.Values.Encode sorts by key, so equivalent parameter sets collide.
func CacheKey(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}
