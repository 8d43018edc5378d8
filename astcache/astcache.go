// Package astcache implements the bounded, LRU source-text-keyed memo
// of optimized programs described by the AST cache component: exact byte
// match on source, default capacity 256, eviction on overflow, and
// hit/miss counters that persist across the engine's lifetime except on
// an explicit Clear.
package astcache

import (
	"container/list"
	"sync"

	"github.com/aetherscript/aether/parser"
)

// DefaultCapacity is the cache's default maximum entry count.
const DefaultCapacity = 256

type entry struct {
	source  string
	program *parser.Program
}

// Cache is a bounded LRU mapping exact source text to its optimized
// program.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element

	hits, misses uint64
}

// New creates a Cache with the given capacity, or DefaultCapacity if
// capacity <= 0.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get looks up source, moving it to most-recently-used on a hit.
func (c *Cache) Get(source string) (*parser.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[source]; ok {
		c.ll.MoveToFront(el)
		c.hits++
		return el.Value.(*entry).program, true
	}
	c.misses++
	return nil, false
}

// Insert adds or replaces the optimized program for source, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *Cache) Insert(source string, program *parser.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[source]; ok {
		el.Value.(*entry).program = program
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{source: source, program: program})
	c.index[source] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*entry).source)
		}
	}
}

// Stats mirrors the cache's stats() contract.
type Stats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
}

// HitRate returns hits / (hits + misses), or 0 when nothing has been
// looked up yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the cache's current size and running
// hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:    c.ll.Len(),
		MaxSize: c.capacity,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// Clear empties the cache and resets hit/miss counters. This is the one
// operation allowed to reset the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.index = make(map[string]*list.Element)
	c.hits, c.misses = 0, 0
}
