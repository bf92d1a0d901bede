package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidTTL is returned by Set when the effective TTL is not strictly
// positive. The entry is not inserted.
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// Stats is a point-in-time snapshot of cache effectiveness since the last
// Clear.
type Stats struct {
	Size      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
	Keys      []string
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is an in-memory key/value store with per-entry TTL and an optional
// entry cap. Expired entries are removed lazily on Get; there is no
// background sweeper. When full, Set evicts the least recently accessed
// entry before inserting. The value store and the access-time map are
// mutated together under one mutex so "exists" and "is fresh" can never
// diverge.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	access     map[string]time.Time
	maxEntries int
	defaultTTL time.Duration
	hits       uint64
	misses     uint64
	evictions  uint64
	now        func() time.Time
}

type Option[V any] func(*Cache[V])

// WithMaxEntries bounds the cache. Zero or negative means unbounded; a
// negative value is a misconfiguration and is treated as unbounded rather
// than rejected.
func WithMaxEntries[V any](n int) Option[V] {
	return func(c *Cache[V]) {
		if n < 0 {
			n = 0
		}
		c.maxEntries = n
	}
}

// WithDefaultTTL sets the TTL used when Set is called with a
// non-positive ttl.
func WithDefaultTTL[V any](d time.Duration) Option[V] {
	return func(c *Cache[V]) { c.defaultTTL = d }
}

// WithClock injects the time source. Tests use this to advance the clock
// without sleeping.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		access:  make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key. Absent and expired keys both count as
// misses; an expired entry found here is deleted as a side effect. A hit
// refreshes the entry's access time.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	now := c.now()
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		delete(c.access, key)
		c.misses++
		return zero, false
	}

	c.access[key] = now
	c.hits++
	return e.value, true
}

// Set inserts or fully replaces the entry for key, value and expiry both.
// A non-positive ttl falls back to the configured default; if that is also
// non-positive, Set fails with ErrInvalidTTL and inserts nothing. At
// capacity the least recently accessed entry is evicted first.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 {
		if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
			c.evictOldest()
		}
	}

	now := c.now()
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}
	c.access[key] = now
	return nil
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.access, key)
}

// Clear drops every entry and resets the hit/miss/eviction counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.access = make(map[string]time.Time)
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	s := Stats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Keys:      keys,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOldest removes the entry with the oldest access time. Caller holds
// the mutex.
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, at := range c.access {
		if first || at.Before(oldest) {
			oldestKey = k
			oldest = at
			first = false
		}
	}
	if first {
		return
	}
	delete(c.entries, oldestKey)
	delete(c.access, oldestKey)
	c.evictions++
}
