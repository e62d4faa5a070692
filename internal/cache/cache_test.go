// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("movie:19995", []byte(`{"rating":7.2}`))
	value, exists := c.Get("movie:19995")
	if !exists {
		t.Fatal("expected movie:19995 to exist")
	}
	if string(value.([]byte)) != `{"rating":7.2}` {
		t.Errorf("Get() = %s", value)
	}

	if _, exists := c.Get("movie:1"); exists {
		t.Error("expected movie:1 to be absent")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected k to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected k to be expired")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheSetWithTTLOverridesDefault(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.SetWithTTL("short", 1, 20*time.Millisecond)
	c.Set("long", 2)
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("short-lived entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default-TTL entry should still exist")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}

	c.Clear()
	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys after Clear = %d, want 0", stats.TotalKeys)
	}
	if stats.Evictions != 3 {
		t.Errorf("Evictions = %d, want 3 (1 delete + 2 cleared)", stats.Evictions)
	}
}

func TestCacheCleanup(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	time.Sleep(20 * time.Millisecond)
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 0 || stats.Evictions != 5 {
		t.Errorf("after cleanup TotalKeys=%d Evictions=%d, want 0 and 5", stats.TotalKeys, stats.Evictions)
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	if c.HitRate() != 0 {
		t.Errorf("empty HitRate = %v, want 0", c.HitRate())
	}

	c.Set("k", 1)
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("nope")

	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("movie:%d", n%10)
			c.Set(key, n)
			c.Get(key)
			if n%7 == 0 {
				c.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	stats := c.GetStats()
	if stats.Hits+stats.Misses != 50 {
		t.Errorf("lookups = %d, want 50", stats.Hits+stats.Misses)
	}
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Close()
	c.Close()
}
