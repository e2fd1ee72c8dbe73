// Package tlb implements the translation lookaside buffer: a small cache of
// recently used page to frame mappings probed before the page table.
package tlb

import "fmt"

// An Entry is one cached page to frame mapping.
type Entry struct {
	Page  uint64
	Frame uint64
}

// A Cache holds a bounded set of page to frame mappings with FIFO
// replacement. Eviction of any resident frame flushes the whole cache; the
// coarse flush is the coherence mechanism that keeps mappings to reclaimed
// frames from surviving.
type Cache struct {
	capacity int
	frames   map[uint64]uint64
	order    []uint64
}

// New creates an empty Cache holding at most capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		panic(fmt.Sprintf("tlb capacity must be positive, got %d", capacity))
	}

	return &Cache{
		capacity: capacity,
		frames:   make(map[uint64]uint64, capacity),
	}
}

// Lookup returns the cached frame of the given page.
func (c *Cache) Lookup(pageNumber uint64) (frame uint64, ok bool) {
	frame, ok = c.frames[pageNumber]
	return frame, ok
}

// Insert caches a page to frame mapping. A page already present is updated
// in place and keeps its replacement position. Otherwise the oldest inserted
// entry makes room when the cache is full.
func (c *Cache) Insert(pageNumber, frame uint64) {
	if _, ok := c.frames[pageNumber]; ok {
		c.frames[pageNumber] = frame
		return
	}

	if len(c.frames) == c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.frames, oldest)
	}

	c.frames[pageNumber] = frame
	c.order = append(c.order, pageNumber)
}

// Flush removes every entry unconditionally.
func (c *Cache) Flush() {
	c.frames = make(map[uint64]uint64, c.capacity)
	c.order = nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.frames)
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Entries returns the cached mappings, oldest insertion first.
func (c *Cache) Entries() []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, page := range c.order {
		entries = append(entries, Entry{Page: page, Frame: c.frames[page]})
	}

	return entries
}
