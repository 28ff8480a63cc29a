package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the key was not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Store is the cache contract used by the services
type Store interface {
	// Get decodes the cached value for key into dest, or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	// SetWithTTL stores value under key for ttl
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// HealthCheck reports whether the cache is reachable
	HealthCheck(ctx context.Context) error
}
