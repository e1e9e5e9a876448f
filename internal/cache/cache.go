// Package cache provides a bounded, expiring key/value store injected into the
// data collector in place of process-wide maps.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a size-bounded LRU cache whose entries expire after a TTL.
// A zero TTL disables expiry. It is safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	ll         *list.List
	items      map[string]*list.Element
	now        func() time.Time
}

type entry[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

// New creates a cache holding at most maxEntries values (minimum 1).
func New[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expired(e) {
		c.removeElement(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.storedAt = c.now()
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&entry[V]{key: key, value: value, storedAt: c.now()})
	for c.ll.Len() > c.maxEntries {
		c.removeElement(c.ll.Back())
	}
}

// Invalidate removes key. It reports whether an entry was present.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Purge removes every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// PurgeExpired removes expired entries and returns how many were removed.
func (c *Cache[V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry[V])) {
			c.removeElement(el)
			n++
		}
		el = prev
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

func (c *Cache[V]) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
