package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Ensure MemoryCache implements Store
var _ Store = (*MemoryCache)(nil)

// MemoryCache is an in-process Store used when Redis is unavailable.
// Values are kept JSON-encoded so callers get the same copy semantics as Redis.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an in-process cache
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	val, ok := c.items.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(val.([]byte), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// SetWithTTL stores a value in cache with custom TTL
func (c *MemoryCache) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	c.items.Set(key, data, ttl)
	return nil
}

// DeletePrefix removes all keys starting with prefix
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
		}
	}
	return nil
}

// HealthCheck always succeeds for the in-process cache
func (c *MemoryCache) HealthCheck(_ context.Context) error {
	return nil
}
