// Package resultcache memoizes execution payloads for a bounded time.
package resultcache

import (
	"sync"
	"time"

	"go.trai.ch/twin/internal/core/domain"
)

// Cache is a thread-safe in-memory store of payloads keyed by call signature.
//
// Expiry is lazy: a stale entry is reported as a miss on lookup and stays in
// memory until the same key is stored again or the cache is cleared.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a Cache whose entries stay fresh for ttl.
// A ttl of zero or less disables memoization.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]domain.CacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c.ttl > 0
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the payload stored under key and true on a hit.
// Entries older than the TTL are misses.
func (c *Cache) Get(key string) (domain.Value, bool) {
	if !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.StoredAt) > c.ttl {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores payload under key, replacing any previous entry.
func (c *Cache) Put(key string, payload domain.Value) {
	if !c.Enabled() {
		return
	}

	entry := domain.CacheEntry{StoredAt: c.now(), Payload: payload}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
