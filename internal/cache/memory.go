package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// MemoryCache is the in-process fallback backend. Entries carry an
// absolute expiry and are evicted lazily on access; Sweep performs a
// full pass for the periodic hygiene task.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]memoryItem
	maxEntries int
}

// NewMemoryCache creates a MemoryCache bounded to maxEntries. A value
// of zero or less means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]memoryItem),
		maxEntries: maxEntries,
	}
}

// Get retrieves and unmarshals a value, evicting it if expired.
func (c *MemoryCache) Get(ctx context.Context, key string, value interface{}) error {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if item.expired(time.Now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return ErrNotFound
	}
	if err := json.Unmarshal(item.data, value); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}
	return nil
}

// Set marshals and stores a value with the given TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		if _, exists := c.items[key]; !exists {
			c.evictOldest()
		}
	}
	c.items[key] = memoryItem{data: data, expiresAt: expiresAt}
	return nil
}

// evictOldest removes the entry closest to expiry. Caller holds the lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for k, item := range c.items {
		if oldestKey == "" || (!item.expiresAt.IsZero() && (oldestAt.IsZero() || item.expiresAt.Before(oldestAt))) {
			oldestKey = k
			oldestAt = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// Delete removes a key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Exists reports whether a live entry is present.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if item.expired(time.Now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Flush removes all entries.
func (c *MemoryCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]memoryItem)
	c.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-process backend.
func (c *MemoryCache) Ping(ctx context.Context) error { return nil }

// Close is a no-op for the in-process backend.
func (c *MemoryCache) Close() error { return nil }

// Sweep removes all expired entries and returns how many were evicted.
func (c *MemoryCache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for k, item := range c.items {
		if item.expired(now) {
			delete(c.items, k)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
