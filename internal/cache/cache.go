// Package cache provides a process-local TTL cache used to memoize external
// calls for a short window. Entries expire lazily on read; a periodic sweep
// bounds growth from keys that are never re-read.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a mutex-guarded key -> (value, expiry) store. The zero value is
// not usable; construct with New.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the cache size. When a Set would exceed the bound,
// the entries closest to expiry are evicted first.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key with the given TTL, unconditionally overwriting
// any existing entry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictLocked(len(c.entries) - c.maxEntries)
	}
}

// Get returns the value stored under key while the entry is still live.
// An expired entry is deleted and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes an entry regardless of expiry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup evicts every expired entry and reports how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= e.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs Cleanup every interval until the returned stop function
// is called. Callers wire the stop function into process shutdown so tests
// and short-lived commands exit cleanly.
func (c *Cache) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// evictLocked removes n entries, oldest expiry first. Caller holds the lock.
func (c *Cache) evictLocked(n int) {
	for ; n > 0; n-- {
		var victim string
		var victimExpiry time.Time
		first := true
		for key, e := range c.entries {
			expiry := e.storedAt.Add(e.ttl)
			if first || expiry.Before(victimExpiry) {
				victim = key
				victimExpiry = expiry
				first = false
			}
		}
		if first {
			return
		}
		delete(c.entries, victim)
	}
}
