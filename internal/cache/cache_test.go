package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("key", "value")

	got, ok := c.Get("key")
	if !ok || got != "value" {
		t.Errorf("Get = (%v, %v), want (value, true)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.SetWithTTL("short", 1, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry still returned")
	}
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("reports::0", 1)
	c.Set("reports:pending:10", 2)
	c.Set("other", 3)

	c.InvalidatePrefix("reports:")

	if _, ok := c.Get("reports::0"); ok {
		t.Error("prefixed entry survived invalidation")
	}
	if _, ok := c.Get("reports:pending:10"); ok {
		t.Error("prefixed entry survived invalidation")
	}
	if _, ok := c.Get("other"); !ok {
		t.Error("unrelated entry was invalidated")
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("miss")

	stats := c.GetStats()
	if stats.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", stats.ItemCount)
	}
	if stats.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", stats.HitCount)
	}
	if stats.MissCount != 1 {
		t.Errorf("MissCount = %d, want 1", stats.MissCount)
	}
}
