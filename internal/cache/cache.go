// Package cache provides a bounded, TTL-aware in-process cache with
// oldest-inserted-first eviction. Capacity and TTL are explicit
// constructor arguments so the limits are a visible contract rather
// than a side effect of an unbounded map.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a fixed-capacity key/value cache. Entries expire after the
// TTL and are evicted in insertion order when the capacity is reached.
// Safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[K]entry[V]
	order    []K

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a cache with the given capacity and TTL. A non-positive
// capacity defaults to 1; a non-positive TTL disables expiry.
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[K]entry[V], capacity),
		now:      time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a value, evicting the oldest-inserted entry if the cache
// is full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.entries) >= c.capacity {
		c.remove(c.order[0])
	}

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.order = append(c.order, key)
}

// Len returns the number of stored entries, including any not yet
// observed to be expired.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove must be called with the lock held.
func (c *Cache[K, V]) remove(key K) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
