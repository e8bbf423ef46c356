// Package cache provides pluggable byte-oriented caching for resolved
// ownership structures.
//
// Three backends are provided:
//   - FileCache: file-based storage for CLI usage
//   - RedisCache: Redis-backed storage for shared deployments
//   - NullCache: no-op cache for tests or --no-cache runs
//
// Keys are arbitrary strings; backends hash them as needed. Values are opaque
// byte slices (typically JSON-encoded responses).
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
