// Package meta provides the in-memory partition metadata cache.
//
// The cache avoids repeated filesystem stat/open calls on the hot path. It
// is a performance optimization only: every lookup falls back to the
// filesystem on a miss, so correctness never depends on it being
// populated. It is private to one warehouse instance, in-process, and
// unsynchronized; writes made through another instance or process are not
// observed.
package meta

import "time"

// Prober supplies the filesystem fallbacks used on cache misses. It is
// implemented by the store's partition layout.
type Prober interface {
	// PartitionExists reports whether the partition's backing file exists.
	PartitionExists(ordinal int) bool

	// PartitionHeader reads the partition's header row from disk.
	PartitionHeader(ordinal int) ([]string, error)
}

// entry holds the cached metadata for one partition.
type entry struct {
	exists     bool
	header     []string // nil until read or written through this cache
	rowCount   int64    // approximate, maintained incrementally
	lastAccess time.Time
}

// Cache maps partition ordinals to cached metadata, populated lazily.
type Cache struct {
	prober  Prober
	entries map[int]*entry
	now     func() time.Time
}

// NewCache creates an empty Cache backed by the given prober.
func NewCache(p Prober) *Cache {
	return &Cache{
		prober:  p,
		entries: make(map[int]*entry),
		now:     time.Now,
	}
}

// Exists reports whether the partition exists, probing the filesystem and
// caching the answer on a miss.
func (c *Cache) Exists(ordinal int) bool {
	if e, ok := c.entries[ordinal]; ok {
		e.lastAccess = c.now()
		return e.exists
	}
	exists := c.prober.PartitionExists(ordinal)
	c.entries[ordinal] = &entry{exists: exists, lastAccess: c.now()}
	return exists
}

// Header returns the partition's header. On a miss it reads the header row
// from disk and caches it. A missing partition or an unreadable header is
// a soft miss, reported as (nil, false) and never cached as a header.
func (c *Cache) Header(ordinal int) ([]string, bool) {
	if e, ok := c.entries[ordinal]; ok && e.header != nil {
		e.lastAccess = c.now()
		return copyHeader(e.header), true
	}
	if !c.Exists(ordinal) {
		return nil, false
	}
	header, err := c.prober.PartitionHeader(ordinal)
	if err != nil || len(header) == 0 {
		return nil, false
	}
	e := c.entries[ordinal]
	e.header = copyHeader(header)
	e.lastAccess = c.now()
	return header, true
}

// RecordWrite updates the cache after any write to the partition. The
// partition is marked existing, the header is replaced when a non-nil one
// is given, and the row count is adjusted by delta, clamped at zero.
func (c *Cache) RecordWrite(ordinal int, header []string, delta int64) {
	e, ok := c.entries[ordinal]
	if !ok {
		e = &entry{}
		c.entries[ordinal] = e
	}
	e.exists = true
	if header != nil {
		e.header = copyHeader(header)
	}
	e.rowCount += delta
	if e.rowCount < 0 {
		e.rowCount = 0
	}
	e.lastAccess = c.now()
}

// Drop records the full removal of a partition: the cached header and row
// count are cleared and the partition is remembered as absent.
func (c *Cache) Drop(ordinal int) {
	c.entries[ordinal] = &entry{lastAccess: c.now()}
}

// RowCount returns the approximate cached row count for the partition, or
// zero when nothing is cached.
func (c *Cache) RowCount(ordinal int) int64 {
	if e, ok := c.entries[ordinal]; ok {
		return e.rowCount
	}
	return 0
}

// Stats returns the approximate row count for every partition the cache
// believes exists.
func (c *Cache) Stats() map[int]int64 {
	out := make(map[int]int64)
	for ordinal, e := range c.entries {
		if e.exists {
			out[ordinal] = e.rowCount
		}
	}
	return out
}

func copyHeader(header []string) []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}
