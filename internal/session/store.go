// Package session keeps the per-browser session on the server: the backend
// bearer token and the cached user record, written together as one versioned
// record under a key derived from the session cookie.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session: key not found")

// Store is a byte-level key/value store with per-key expiry. A ttl of zero
// means the key does not expire.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores that do not expire keys on their own.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}
