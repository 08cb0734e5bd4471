package cache

import (
	"sync"
	"time"

	"monu/internal/domain"
	"monu/internal/port"
)

var (
	_ port.CorrectionCache   = (*MemoryCache)(nil)
	_ port.CorrectionHistory = (*MemoryCache)(nil)
)

// MemoryCache is an in-process LRU correction cache with TTL expiry.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	order      []string
	maxSize    int
	ttl        time.Duration
	generation uint64
}

type cacheEntry struct {
	record     domain.CorrectionRecord
	timestamp  time.Time
	generation uint64
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(key string) (domain.Correction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return domain.Correction{}, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.generation != c.generation {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return domain.Correction{}, false
	}

	c.moveToEnd(key)
	return entry.record.Result, true
}

func (c *MemoryCache) Put(key string, rec domain.CorrectionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{
		record:     rec,
		timestamp:  time.Now(),
		generation: c.generation,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	return nil
}

// List returns up to limit live records, most recently used first.
func (c *MemoryCache) List(limit int) ([]domain.CorrectionRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.CorrectionRecord
	for i := len(c.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		entry, ok := c.entries[c.order[i]]
		if !ok || time.Since(entry.timestamp) > c.ttl {
			continue
		}
		out = append(out, entry.record)
	}
	return out, nil
}

func (c *MemoryCache) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Clear drops every entry and bumps the generation so concurrent readers
// holding stale entries miss.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.generation++
	return nil
}

// evictOldest removes the least recently used entry. Keys in order without
// an entry are dropped along the way.
func (c *MemoryCache) evictOldest() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			return
		}
	}
}

func (c *MemoryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *MemoryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
