package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sona-ai/sona/pkg/models"
)

// Cache is a bounded, time-boxed memoization of backend answers.
//
// Entries are evicted least-recently-used when the cache reaches
// capacity, and expire absolutely once older than the TTL. An entry
// survives only while it satisfies both bounds.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	maxItems int
	ttl      time.Duration
	enabled  bool

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

type entry struct {
	key        string
	value      string
	insertedAt time.Time
}

// New creates a Cache holding at most maxItems entries, each valid for
// ttl after insertion.
func New(maxItems int, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		maxItems: maxItems,
		ttl:      ttl,
		enabled:  true,
		now:      time.Now,
	}
}

// Disabled returns a Cache that never stores and always misses.
func Disabled() *Cache {
	c := New(0, 0)
	c.enabled = false
	return c
}

// Get returns the cached value for key if present and unexpired,
// marking it most recently used. Expired entries are deleted on read.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}

	e := el.Value.(*entry)
	if c.now().Sub(e.insertedAt) > c.ttl {
		c.removeLocked(el)
		c.misses.Add(1)
		return "", false
	}

	c.order.MoveToFront(el)
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key as the most recently used entry, evicting
// least-recently-used entries while the cache is at capacity.
func (c *Cache) Set(key, value string) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}

	for c.maxItems > 0 && c.order.Len() >= c.maxItems {
		c.removeLocked(c.order.Back())
	}

	el := c.order.PushFront(&entry{key: key, value: value, insertedAt: c.now()})
	c.entries[key] = el
}

// Remove deletes a single entry, bypassing TTL and LRU logic.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache performance counters.
func (c *Cache) Stats() models.CacheStats {
	return models.CacheStats{
		Entries: int64(c.Len()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// removeLocked unlinks an element from both indexes. Caller must hold c.mu.
func (c *Cache) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}
