// Package cache provides the key-value cache abstraction used by the
// request pipeline for rate-limit counters and by the auth subsystem for the
// refresh-token blacklist. The pipeline holds no mutable globals; a Cache is
// always injected, and tests substitute the in-memory implementation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a minimal key-value store with per-key time-to-live.
type Cache interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key is absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment adds one to the counter stored under key and returns the new
	// value. A missing or expired counter starts at zero and is given ttl;
	// an existing counter keeps its original expiry, so the window resets
	// abruptly at TTL expiry rather than sliding.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
