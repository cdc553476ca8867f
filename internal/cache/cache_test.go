// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package cache

import (
	"testing"
	"time"
)

func TestCache_BasicOperations(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	if v, found := c.Get("a"); !found || v.(int) != 1 {
		t.Errorf("expected to find 'a' = 1, got %v, %v", v, found)
	}
	if _, found := c.Get("missing"); found {
		t.Error("expected miss for absent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL("short", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("expected entry to expire")
	}
	stats := c.GetStats()
	if stats.Evictions == 0 {
		t.Error("lazy expiry on Get should count as an eviction")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("deleted key still present")
	}

	c.Clear()
	if _, found := c.Get("b"); found {
		t.Error("cleared key still present")
	}
	if c.GetStats().TotalKeys != 0 {
		t.Errorf("expected 0 keys after Clear, got %d", c.GetStats().TotalKeys)
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)

	c.Close()
	c.Close() // second call must not panic

	// The cache stays usable after the sweeper stops.
	c.Set("a", 1)
	if _, found := c.Get("a"); !found {
		t.Error("cache unusable after Close")
	}
}

func TestCache_HitRate(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("expected 50%% hit rate, got %.1f", rate)
	}
}
