// Package cache holds the byte stores behind the rendered page store.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache: miss")

	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("cache: closed")
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// StatsReporter is implemented by stores that count their traffic.
type StatsReporter interface {
	Stats() Stats
}

// Stats is a snapshot of a store's counters.
type Stats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes,omitempty"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Writes  int64 `json:"writes"`
}
