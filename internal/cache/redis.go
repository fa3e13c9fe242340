package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis store.
type RedisOptions struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Prefix namespaces every key so several sites can share one server.
	Prefix string

	DefaultTTL  time.Duration
	DialTimeout time.Duration
}

// Redis keeps entries in a Redis server so every front-end instance serves
// the same generated pages.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	closed atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

// DialRedis connects to the server in opts.URL and pings it once.
func DialRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedis(client, opts.Prefix, opts.DefaultTTL), nil
}

// NewRedis wraps client. The store owns the client and closes it on Close.
func NewRedis(client *redis.Client, prefix string, defaultTTL time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: defaultTTL}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		r.misses.Add(1)
		return nil, ErrMiss
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	r.hits.Add(1)
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = r.ttl
	}

	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.writes.Add(1)
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Ping reports whether the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.closed.CompareAndSwap(false, true) {
		return r.client.Close()
	}
	return nil
}

// Stats counts the keys under the prefix with SCAN. Hit counters are local
// to this process.
func (r *Redis) Stats() Stats {
	s := Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Writes: r.writes.Load(),
	}
	if r.closed.Load() {
		return s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		s.Entries++
	}
	return s
}

var (
	_ Cache         = (*Redis)(nil)
	_ StatsReporter = (*Redis)(nil)
)
