package schedule

import "sync"

// Cache holds per-date availability snapshots with a monotonically
// increasing sequence per date. Concurrent loads for the same date can
// resolve in any order; only the snapshot stored under the latest issued
// sequence wins, so a slow stale load can never overwrite a fresher one.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	seq   uint64
	avail *DayAvailability
}

func NewCache() *Cache {
	return &Cache{entries: map[string]*cacheEntry{}}
}

// maxCachedDates bounds the map; once reached, touching a date sweeps out
// every earlier date.
const maxCachedDates = 256

// evictOlderLocked drops entries for dates before the one being touched once
// the map has grown to the cap. Keys are ISO dates, so lexicographic order is
// chronological; past dates cannot be booked and their snapshots are dead
// weight. An evicted in-flight load stores into a nil entry, which Store
// already treats as superseded.
func (c *Cache) evictOlderLocked(date string) {
	if len(c.entries) < maxCachedDates {
		return
	}
	for d := range c.entries {
		if d < date {
			delete(c.entries, d)
		}
	}
}

// Begin issues a new sequence number for a load of the given date and
// marks any earlier in-flight load for that date as superseded.
func (c *Cache) Begin(date string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictOlderLocked(date)
	e := c.entries[date]
	if e == nil {
		e = &cacheEntry{}
		c.entries[date] = e
	}
	e.seq++
	e.avail = nil
	return e.seq
}

// Store records a snapshot loaded under seq. It reports false and discards
// the snapshot when a newer load for the date has been issued since.
func (c *Cache) Store(date string, seq uint64, avail DayAvailability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[date]
	if e == nil || e.seq != seq {
		return false
	}
	e.avail = &avail
	return true
}

func (c *Cache) Get(date string) (DayAvailability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[date]
	if e == nil || e.avail == nil {
		return DayAvailability{}, false
	}
	return *e.avail, true
}

// Invalidate drops the cached snapshot for a date after a booking or
// cancellation changes it. In-flight loads issued before the invalidation
// are superseded as well.
func (c *Cache) Invalidate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[date]
	if e == nil {
		return
	}
	e.seq++
	e.avail = nil
}
