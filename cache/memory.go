package cache

import (
	"sync"
	"time"
)

// entry holds a cached model with the time it was stored.
type entry struct {
	model    string
	storedAt time.Time
}

// InMemoryCache is a thread-safe in-memory model cache with TTL support.
type InMemoryCache struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (c *InMemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *InMemoryCache) expired(e entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.storedAt) > c.ttl
}

// Get retrieves a model from the cache.
// Returns the model and true if found and not expired, empty string and false otherwise.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.expired(e, now) {
		c.mu.Lock()
		// Only drop it if nobody refreshed it meanwhile
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return e.model, true
}

// Set stores a model in the cache.
func (c *InMemoryCache) Set(key string, model string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		model:    model,
		storedAt: c.now(),
	}
	return nil
}

// Delete removes a model from the cache. Deleting a missing key is not an error.
func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Entries returns all non-expired entries as key-model pairs.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.entries))
	now := c.now()

	for key, e := range c.entries {
		if c.expired(e, now) {
			continue
		}
		result[key] = e.model
	}

	return result, nil
}

var (
	_ ModelCache = (*InMemoryCache)(nil)
	_ Lister     = (*InMemoryCache)(nil)
)
