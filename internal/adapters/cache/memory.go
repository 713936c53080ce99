package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process byte cache with TTL support.
type MemoryCache struct {
	entries sync.Map
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// cacheEntry holds a cached value with expiration metadata.
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache with the specified TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{ttl: ttl, done: make(chan struct{})}
	go cache.cleanup()
	return cache
}

// Get returns the value and true if found and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}

	entry := value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, false
	}

	return entry.value, true
}

// Set stores a value with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.entries.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Close stops the cleanup loop.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// cleanup periodically removes expired entries from the cache.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.entries.Range(func(key, value any) bool {
				if now.After(value.(*cacheEntry).expiresAt) {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
