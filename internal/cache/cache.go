package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"stockdash/internal/model"
)

// Key identifies one fetch request shape: the sorted ticker set, the
// period, and the interval. Identical requests map to the same key
// regardless of ticker order or case.
type Key string

// NewKey builds the cache key for a request.
func NewKey(symbols []string, period model.Period, interval string) Key {
	s := make([]string, len(symbols))
	for i, sym := range symbols {
		s[i] = strings.ToUpper(strings.TrimSpace(sym))
	}
	sort.Strings(s)
	return Key(strings.Join(s, ",") + "|" + string(period) + "|" + interval)
}

type entry struct {
	result   *model.FetchResult
	storedAt time.Time
}

// Cache holds fetch results for a fixed TTL. Entries are immutable once
// written and expire by TTL only; there is no explicit invalidation.
// Now is injectable so staleness can be tested without sleeping.
type Cache struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.RWMutex
	entries map[Key]entry
}

// New creates a cache with the given TTL and the wall clock.
func New(ttl time.Duration) *Cache {
	return &Cache{TTL: ttl, Now: time.Now, entries: make(map[Key]entry)}
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// stale reports whether an entry written at storedAt has expired by now.
func stale(storedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(storedAt) >= ttl
}

// Get returns the cached result for a key if present and fresh.
func (c *Cache) Get(k Key) (*model.FetchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok || stale(e.storedAt, c.now(), c.TTL) {
		return nil, false
	}
	return e.result, true
}

// Put stores a result under a key, stamped with the current clock.
func (c *Cache) Put(k Key, res *model.FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{result: res, storedAt: c.now()}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for k, e := range c.entries {
		if stale(e.storedAt, now, c.TTL) {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
