// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if v, found := c.Get("a"); !found || v.(int) != 1 {
		t.Errorf("expected to find 'a' = 1, got %v, %v", v, found)
	}
	if _, found := c.Get("b"); !found {
		t.Error("expected to find key 'b'")
	}
	if c.Len() != 3 {
		t.Errorf("expected len 3, got %d", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Access 'a' to make it most recently used
	c.Get("a")

	// Adding 'd' should evict 'b' (least recently used)
	c.Set("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("expected %q to be present", key)
		}
	}
}

func TestLRU_UpdateExistingDoesNotEvict(t *testing.T) {
	c := NewLRU(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	if c.Len() != 2 {
		t.Errorf("expected len 2 after update, got %d", c.Len())
	}
	if v, _ := c.Get("a"); v.(int) != 10 {
		t.Errorf("expected updated value 10, got %v", v)
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU(10, 30*time.Millisecond)

	c.Set("a", 1)
	if _, found := c.Get("a"); !found {
		t.Error("expected to find key 'a' immediately")
	}

	time.Sleep(40 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expected 'a' to be expired")
	}
}

func TestLRU_DeleteAndClear(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("expected 'a' to be deleted")
	}
	c.Delete("missing") // no-op

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if rate := c.HitRate(); rate < 66.0 || rate > 67.0 {
		t.Errorf("expected ~66.7%% hit rate, got %.2f", rate)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("capacity exceeded: %d entries", c.Len())
	}
}

func TestGenerateKey_Deterministic(t *testing.T) {
	type params struct {
		Actor string
		Year  string
	}

	k1 := GenerateKey("search", params{Actor: "Keanu Reeves", Year: "1999"})
	k2 := GenerateKey("search", params{Actor: "Keanu Reeves", Year: "1999"})
	k3 := GenerateKey("search", params{Actor: "Keanu Reeves", Year: "2003"})

	if k1 != k2 {
		t.Errorf("equal params produced different keys: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("different params produced the same key")
	}
}
