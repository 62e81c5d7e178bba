// Package cache provides a small bounded-TTL cache handed to the adapters
// that need one (player IDs, rankings). Nothing here is ambient: each owner
// constructs and holds its own instance.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val     V
	expires time.Time
}

type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	items   map[K]entry[V]
	now     func() time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration, maxSize int) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		items:   make(map[K]entry[V]),
		now:     time.Now,
	}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok || c.now().After(e.expires) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.val, true
}

func (c *TTL[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= c.maxSize {
		c.evictLocked()
	}
	c.items[key] = entry[V]{val: val, expires: c.now().Add(c.ttl)}
}

func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evictLocked drops expired entries first; if everything is still live it
// drops the soonest-to-expire entry to make room.
func (c *TTL[K, V]) evictLocked() {
	now := c.now()
	for k, e := range c.items {
		if now.After(e.expires) {
			delete(c.items, k)
		}
	}
	if len(c.items) < c.maxSize {
		return
	}
	var oldest K
	var oldestAt time.Time
	first := true
	for k, e := range c.items {
		if first || e.expires.Before(oldestAt) {
			oldest, oldestAt, first = k, e.expires, false
		}
	}
	delete(c.items, oldest)
}
