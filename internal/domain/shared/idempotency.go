package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome of requests carrying a client-chosen key.
// A key is first reserved, then completed with the result reference.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns true if the key was newly claimed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete records the result reference for a reserved key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Lookup returns the result reference for key. An empty string with found=true
	// means the key is reserved but still in flight.
	Lookup(ctx context.Context, key string) (result string, found bool, err error)

	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
