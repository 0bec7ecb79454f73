package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a fixed-capacity cache that evicts the least recently used entry
// and counts hits and misses.
type LRU[K comparable, V any] struct {
	inner  *lru.Cache[K, V]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// New returns an empty cache. Panics if capacity is not positive.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		panic("cache: " + err.Error())
	}
	return &LRU[K, V]{inner: inner}
}

// Get returns the cached value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add inserts or replaces the value for key. It reports whether an older
// entry had to be evicted to make room.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	return c.inner.Add(key, value)
}

// Remove drops key from the cache and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	return c.inner.Remove(key)
}

func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}

// Purge removes every entry. Counters are kept.
func (c *LRU[K, V]) Purge() {
	c.inner.Purge()
}

func (c *LRU[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.inner.Len()}
}
