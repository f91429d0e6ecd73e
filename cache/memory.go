package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Stats holds cache hit/miss counters. Counters only ever increase.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// MemoryCache is a fixed-capacity in-memory cache with LRU eviction and
// optional TTL expiry. TTL is anchored to write time: a hit refreshes an
// entry's recency but not its timestamp, so entries still expire ttl after
// they were last written.
//
// All operations are safe for concurrent use.
type MemoryCache[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration // 0 disables expiry
	clock   clockwork.Clock
	items   map[K]*list.Element
	order   *list.List // front = most recently used
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a cache holding at most maxSize entries. A ttl of 0
// disables expiry. The clock is injectable so tests can control time.
func NewMemoryCache[K comparable, V any](maxSize int, ttl time.Duration, clock clockwork.Clock) *MemoryCache[K, V] {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCache[K, V]{
		maxSize: maxSize,
		ttl:     ttl,
		clock:   clock,
		items:   make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value for key if present and not expired. An expired entry
// is removed and counted as a miss. A hit moves the entry to the
// most-recently-used position.
func (c *MemoryCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	ent := el.Value.(*entry[K, V])
	if c.ttl > 0 && c.clock.Now().Sub(ent.storedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		c.misses++
		return zero, false
	}

	c.order.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Set stores value under key. An existing key gets its value and timestamp
// replaced and is moved to the most-recently-used position. After insertion
// the least-recently-used entries are evicted until the size bound holds.
func (c *MemoryCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[K, V])
		ent.value = value
		ent.storedAt = now
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&entry[K, V]{key: key, value: value, storedAt: now})
		c.items[key] = el
	}

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[K, V]).key)
	}
}

// Len returns the current number of entries, including any not yet
// expired-on-read.
func (c *MemoryCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the hit/miss counters.
func (c *MemoryCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses}
}

// Clear drops all entries. Counters are kept.
func (c *MemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
}
