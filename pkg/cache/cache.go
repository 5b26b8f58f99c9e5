// Package cache provides a small bounded TTL cache used by the
// authorization resolver to avoid refetching slow-changing data
// (member roles, guild allow-lists, ship presence) on every interaction.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache maps keys to values that expire after a fixed TTL. When full it
// evicts the single oldest entry by store time; the scan is O(size), which
// is fine at the default capacity.
type TTLCache[K comparable, V any] struct {
	ttl     time.Duration
	maxSize int

	mu         sync.Mutex
	threadSafe bool
	store      map[K]entry[V]

	now func() time.Time
}

const DefaultMaxSize = 1024

type Option func(*options)

type options struct {
	maxSize    int
	threadSafe bool
}

// WithMaxSize bounds the number of entries.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

// ThreadSafe guards every operation with a mutex. The bot runs handlers on
// concurrent gateway goroutines, so production caches enable this.
func ThreadSafe(on bool) Option {
	return func(o *options) { o.threadSafe = on }
}

func New[K comparable, V any](ttl time.Duration, opts ...Option) *TTLCache[K, V] {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLCache[K, V]{
		ttl:        ttl,
		maxSize:    o.maxSize,
		threadSafe: o.threadSafe,
		store:      make(map[K]entry[V]),
		now:        time.Now,
	}
}

func (c *TTLCache[K, V]) lock() {
	if c.threadSafe {
		c.mu.Lock()
	}
}

func (c *TTLCache[K, V]) unlock() {
	if c.threadSafe {
		c.mu.Unlock()
	}
}

// Get returns the cached value if present and younger than the TTL.
// Expired entries are evicted on read.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.lock()
	defer c.unlock()

	var zero V
	e, ok := c.store[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.store, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry first if at capacity.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.lock()
	defer c.unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxSize {
		var oldestKey K
		var oldestAt time.Time
		first := true
		for k, e := range c.store {
			if first || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.storedAt
				first = false
			}
		}
		delete(c.store, oldestKey)
	}
	c.store[key] = entry[V]{value: value, storedAt: c.now()}
}

// Invalidate removes key unconditionally.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.lock()
	defer c.unlock()
	delete(c.store, key)
}

// Clear removes every entry.
func (c *TTLCache[K, V]) Clear() {
	c.lock()
	defer c.unlock()
	c.store = make(map[K]entry[V])
}

// Len reports stored entries, expired ones included until they are read.
func (c *TTLCache[K, V]) Len() int {
	c.lock()
	defer c.unlock()
	return len(c.store)
}
