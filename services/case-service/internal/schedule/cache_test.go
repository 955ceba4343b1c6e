package schedule

import (
	"testing"
	"time"
)

func TestCache_LatestIssuedWins(t *testing.T) {
	c := NewCache()
	date := "2026-03-16"

	first := c.Begin(date)
	second := c.Begin(date)

	// The slower, older load resolves last but must be discarded.
	if ok := c.Store(date, second, DayAvailability{UsedSlots: 5}); !ok {
		t.Fatal("latest load should store")
	}
	if ok := c.Store(date, first, DayAvailability{UsedSlots: 1}); ok {
		t.Fatal("superseded load must be discarded")
	}

	got, ok := c.Get(date)
	if !ok || got.UsedSlots != 5 {
		t.Fatalf("expected snapshot from latest load, got %+v ok=%v", got, ok)
	}
}

func TestCache_InvalidateSupersedesInFlight(t *testing.T) {
	c := NewCache()
	date := "2026-03-16"

	seq := c.Begin(date)
	c.Invalidate(date)

	if ok := c.Store(date, seq, DayAvailability{UsedSlots: 3}); ok {
		t.Fatal("load issued before invalidation must not store")
	}
	if _, ok := c.Get(date); ok {
		t.Fatal("invalidated date should have no snapshot")
	}
}

func TestCache_DatesAreIndependent(t *testing.T) {
	c := NewCache()
	a := c.Begin("2026-03-16")
	b := c.Begin("2026-03-17")

	if ok := c.Store("2026-03-16", a, DayAvailability{UsedSlots: 1}); !ok {
		t.Fatal("first date store failed")
	}
	if ok := c.Store("2026-03-17", b, DayAvailability{UsedSlots: 2}); !ok {
		t.Fatal("second date store failed")
	}

	got, _ := c.Get("2026-03-16")
	if got.UsedSlots != 1 {
		t.Fatalf("dates must not share sequences, got %+v", got)
	}
}

func TestCache_SweepsPastDatesAtCap(t *testing.T) {
	c := NewCache()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxCachedDates; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		c.Store(date, c.Begin(date), DayAvailability{UsedSlots: 1})
	}

	c.Begin("2026-06-01")

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	if size != 1 {
		t.Fatalf("touching a later date at the cap should sweep earlier ones, have %d entries", size)
	}
	if _, ok := c.Get("2025-01-01"); ok {
		t.Fatal("swept date should miss")
	}
}

func TestCache_GetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("2026-01-01"); ok {
		t.Fatal("unknown date should miss")
	}
}
