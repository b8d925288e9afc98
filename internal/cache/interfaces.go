// Package cache provides the page cache the scraper fetches through. Cached
// HTML keeps repeated runs (and the serve-mode interval runner) from
// hammering the source site.
package cache

import (
	"context"
	"time"
)

// Cache is the abstraction over the page cache backends. Memory suits a
// single process; Redis survives restarts and can be shared.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// CacheError is a sentinel error type for cache conditions.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
