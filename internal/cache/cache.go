package cache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so expiry can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory TTL cache. Expired entries read as misses immediately;
// their memory is reclaimed on the next Set for the same key or on Purge.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   Clock
}

func New(clock Clock) *Cache {
	if clock == nil {
		clock = RealClock()
	}
	return &Cache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every expired entry.
func (c *Cache) Purge() {
	now := c.clock.Now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
