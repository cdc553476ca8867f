// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package cache

import (
	"sync"
	"time"
)

// lruEntry is a node in the LRU cache's doubly-linked list.
type lruEntry struct {
	key       string
	value     interface{}
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// LRU implements a thread-safe Least Recently Used cache with TTL support.
// It provides O(1) Get, Set, Remove and eviction using a doubly-linked list
// for ordering and a hashmap for lookups.
//
// This is the bounded replacement for the unbounded per-process result and
// lookup dictionaries: capacity caps memory, TTL caps staleness.
type LRU struct {
	mu sync.RWMutex

	// capacity is the maximum number of entries
	capacity int

	// ttl is the time-to-live for entries
	ttl time.Duration

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*lruEntry

	// head and tail are sentinel nodes for the doubly-linked list.
	// head.next is the most recently used, tail.prev the least.
	head *lruEntry
	tail *lruEntry

	hits   int64
	misses int64
}

// NewLRU creates a new LRU cache with the specified capacity and TTL.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}

	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves a value and marks it as most recently used.
// Returns (nil, false) for missing or expired entries.
func (c *LRU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.items[key]
	if !found {
		c.misses++
		return nil, false
	}

	// Lazy expiration
	if time.Now().After(entry.expiresAt) {
		c.unlink(entry)
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when the cache
// is at capacity.
func (c *LRU) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *LRU) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, found := c.items[key]; found {
		entry.value = value
		entry.expiresAt = time.Now().Add(ttl)
		c.moveToFront(entry)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	entry := &lruEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.items[key] = entry
	c.pushFront(entry)
}

// Delete removes an entry. Safe to call with non-existent keys.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, found := c.items[key]; found {
		c.unlink(entry)
		delete(c.items, key)
	}
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetStats returns cache statistics.
func (c *LRU) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		TotalKeys: int64(len(c.items)),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *LRU) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// evictOldest removes the least recently used entry (must hold mu).
func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.unlink(oldest)
	delete(c.items, oldest.key)
}

// pushFront inserts the entry right after head (must hold mu).
func (c *LRU) pushFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// unlink removes the entry from the list (must hold mu).
func (c *LRU) unlink(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
}

// moveToFront marks the entry as most recently used (must hold mu).
func (c *LRU) moveToFront(entry *lruEntry) {
	c.unlink(entry)
	c.pushFront(entry)
}
