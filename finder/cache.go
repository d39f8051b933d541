// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so TTL behavior is testable.
type Clock func() time.Time

// TTLCache is a process-wide key-value store whose entries expire after
// a fixed duration. Safe for concurrent use; last write wins, which is
// fine because every cached value is idempotently recomputable.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
	now   Clock
}

type cacheItem struct {
	value  any
	expiry time.Time
}

// NewTTLCache creates a cache with the given time-to-live. A nil clock
// defaults to time.Now.
func NewTTLCache(ttl time.Duration, now Clock) *TTLCache {
	if now == nil {
		now = time.Now
	}

	return &TTLCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns the live value for key, if any.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if c.now().After(item.expiry) {
		c.mu.Lock()
		// re-check: another goroutine may have refreshed the entry
		if cur, ok := c.items[key]; ok && c.now().After(cur.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()

		return nil, false
	}

	return item.value, true
}

// Set stores value under key with a fresh expiry, and sweeps any entry
// that has already expired so the map does not grow without bound.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, v := range c.items {
		if now.After(v.expiry) {
			delete(c.items, k)
		}
	}

	c.items[key] = cacheItem{
		value:  value,
		expiry: now.Add(c.ttl),
	}
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
