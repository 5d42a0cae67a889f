package sector

import (
	"sync"
	"time"
)

// CacheStats reports cache effectiveness for the stats accessor.
type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

// cache stores comparison results keyed by a hash of the input batch. Expired
// entries are dropped lazily on access.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uint64]cacheEntry
	hits    int64
	misses  int64
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[uint64]cacheEntry)}
}

func (c *cache) get(key uint64) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && time.Now().Before(e.expiresAt) {
		c.hits++
		return e.result, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	return Result{}, false
}

func (c *cache) put(key uint64, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: r, expiresAt: time.Now().Add(c.ttl)}
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]cacheEntry)
}

func (c *cache) stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Size: len(c.entries), Hits: c.hits, Misses: c.misses}
}
