// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// Entry is one cached item with its expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats is a snapshot of cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// Cache is a thread-safe in-memory TTL cache with singleflight
// deduplication for fill-on-miss callers.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu sync.Mutex
	stats   Stats

	group singleflight.Group
	stop  chan struct{}
	once  sync.Once
}

// New creates a cache whose entries expire after ttl. A background
// goroutine sweeps expired entries every cleanupInterval; call Close
// to stop it.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

const cleanupInterval = 5 * time.Minute

// Get returns the value for key if present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEvictions(1)
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: time.Now().Add(ttl)}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Fetch returns the cached value for key, or computes it once via fn
// and caches the result. Concurrent callers for the same key share a
// single fn invocation. fn errors are not cached.
func (c *Cache) Fetch(key string, fn func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another waiter may have filled the entry while we queued.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes one entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.recordEvictions(1)
}

// Clear drops every entry. Called when a fresh hyperedge set swaps in.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// GetStats returns a copy of the current counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the hit percentage over the cache lifetime.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine. Idempotent.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evicted := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEvictions(n int64) {
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
}

// GenerateKey builds a compact cache key from a method name and a
// JSON-serializable parameter struct.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
