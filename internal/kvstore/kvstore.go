package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key does not exist or its TTL elapsed.
var ErrNotFound = errors.New("key not found")

// Store is a small injected key-value capability with per-key expiry.
// Components that need transient local state receive a Store explicitly
// instead of reaching for process-wide globals.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
