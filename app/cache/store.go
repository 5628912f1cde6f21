package cache

import (
	"context"
	"time"
)

// Store is the byte-level backend behind the aggregation cache.
type Store interface {
	// Get reports false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Name() string
	Close() error
}
