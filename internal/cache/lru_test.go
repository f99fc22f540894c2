package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was used most recently")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0 after lazy expiry", c.Size())
	}
}

func TestPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Size() != 0 {
		t.Errorf("Size after Purge = %d, want 0", c.Size())
	}
	c.Set("c", 3)
	if got, ok := c.Get("c"); !ok || got != 3 {
		t.Error("cache should be usable after Purge")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 3)

	if cleaned := c.CleanExpired(); cleaned != 2 {
		t.Errorf("CleanExpired = %d, want 2", cleaned)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestUpdateExistingKey(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("a", 10)
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1 after updating same key", c.Size())
	}
	if got, _ := c.Get("a"); got != 10 {
		t.Errorf("Get(a) = %d, want 10", got)
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0 after manager sweep", c.Size())
	}
}
