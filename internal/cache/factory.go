package cache

import (
	"context"
	"time"
)

// Config selects and sizes the page store backend.
type Config struct {
	// RedisURL switches to the Redis backend when set,
	// e.g. redis://localhost:6379/0.
	RedisURL string
	Prefix   string

	DefaultTTL time.Duration

	// MaxEntries and SweepInterval apply to the memory backend only.
	MaxEntries    int
	SweepInterval time.Duration
}

// Open returns a Redis store when cfg names one and a memory store otherwise.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	if cfg.RedisURL == "" {
		return NewMemory(MemoryOptions{
			DefaultTTL:    cfg.DefaultTTL,
			MaxEntries:    cfg.MaxEntries,
			SweepInterval: cfg.SweepInterval,
		}), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return DialRedis(ctx, RedisOptions{
		URL:         cfg.RedisURL,
		Prefix:      cfg.Prefix,
		DefaultTTL:  cfg.DefaultTTL,
		DialTimeout: 5 * time.Second,
	})
}

// Backend names the implementation behind c for logs and health output.
func Backend(c Cache) string {
	switch c.(type) {
	case *Redis:
		return "redis"
	case *Memory:
		return "memory"
	default:
		return "custom"
	}
}
