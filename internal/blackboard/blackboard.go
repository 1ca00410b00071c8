// Package blackboard defines the narrow capability the rest of the system
// uses to reach the shared key/value substrate: get, put with TTL, atomic
// increment, and compare-and-set. SPEC_FULL.md §4.5 calls this out as the
// sole shared-mutable state store; every status transition in
// internal/jobservice goes through CompareAndSet to preserve the
// monotonicity invariant from spec.md §3.
package blackboard

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist (expired,
// evicted, or never written).
var ErrNotFound = errors.New("blackboard: key not found")

// ErrConflict is returned by CompareAndSet when the stored value does not
// match expected, meaning a concurrent writer already moved the key.
var ErrConflict = errors.New("blackboard: compare-and-set conflict")

// Blackboard is the capability described in spec.md §4.5. Implementations
// must serialize values as opaque bytes; callers own JSON/msgpack
// encoding.
type Blackboard interface {
	// Get reads the raw bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key with the given ttl. A ttl of zero means
	// no expiration on the Redis backend; the freecache backend applies
	// its configured default TTL instead.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// AtomicIncrement increments the named counter and returns its new
	// value. Counters implicitly start at zero.
	AtomicIncrement(ctx context.Context, counter string) (int64, error)

	// CompareAndSet atomically replaces key's value with newValue only if
	// the current value equals expected. Passing a nil expected requires
	// the key to be absent (a "create once" guard). Returns ErrConflict on
	// mismatch.
	CompareAndSet(ctx context.Context, key string, expected, newValue []byte, ttl time.Duration) error

	// Delete removes key, if present. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying connection.
	Close() error
}
