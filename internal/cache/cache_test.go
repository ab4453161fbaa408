package cache

import (
	"sync"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected hit immediately after Set")
	}
	if got != "value" {
		t.Errorf("expected %q, got %v", "value", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := New()
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetOverwrites(t *testing.T) {
	c := New()
	c.Set("key", "first", time.Minute)
	c.Set("key", "second", time.Minute)

	got, ok := c.Get("key")
	if !ok || got != "second" {
		t.Errorf("expected overwritten value %q, got %v (hit=%v)", "second", got, ok)
	}
}

func TestExpiryOnRead(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(withClock(clock))

	c.Set("key", 42, 100*time.Millisecond)

	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(100 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("expected miss at exactly ttl")
	}
	// The stale entry must be removed by the failed read.
	if c.Len() != 0 {
		t.Errorf("expected stale entry deleted, len=%d", c.Len())
	}
}

func TestCleanup(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(withClock(clock))

	c.Set("short", 1, time.Millisecond)
	c.Set("long", 2, time.Hour)

	now = now.Add(time.Second)
	removed := c.Cleanup()
	if removed != 1 {
		t.Errorf("expected 1 entry removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry remaining, got %d", c.Len())
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long-lived entry should survive cleanup")
	}
}

func TestMaxEntriesEvictsClosestToExpiry(t *testing.T) {
	c := New(WithMaxEntries(2))
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	c.Set("c", 3, time.Hour)

	if c.Len() != 2 {
		t.Fatalf("expected bound of 2, len=%d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry closest to expiry should have been evicted")
	}
}

func TestSweeperStops(t *testing.T) {
	c := New()
	stop := c.StartSweeper(time.Millisecond)
	stop()
	// Calling stop twice must not panic.
	stop()
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", j, time.Minute)
				c.Get("shared")
				c.Cleanup()
			}
		}()
	}
	wg.Wait()
}
