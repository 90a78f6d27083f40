// Package cache provides the expiring cache layer that front-ends every
// expensive artifact in the service: index snapshots, answers, quizzes,
// summaries and chat list views.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is the expiring key-value store contract. Implementations must
// honor per-entry TTLs; a TTL of zero means no expiry.
type Cache interface {
	// Get retrieves a value by key and unmarshals it into value.
	// Returns ErrNotFound on a miss.
	Get(ctx context.Context, key string, value interface{}) error

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a live entry is present for key.
	Exists(ctx context.Context, key string) (bool, error)

	// Flush removes all entries.
	Flush(ctx context.Context) error

	// Ping reports backend reachability.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
