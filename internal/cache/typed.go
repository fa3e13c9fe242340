package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// JSON stores values of T as JSON so the same entries read back from any
// backend.
type JSON[T any] struct {
	store Cache
	ttl   time.Duration
}

// NewJSON wraps store. Entries written through Put expire after ttl.
func NewJSON[T any](store Cache, ttl time.Duration) *JSON[T] {
	return &JSON[T]{store: store, ttl: ttl}
}

// Get returns ErrMiss when key is absent. An entry that no longer decodes
// into T, say after a deploy changed its shape, is dropped and reported as
// a miss.
func (j *JSON[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := j.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		_ = j.store.Delete(ctx, key)
		return nil, ErrMiss
	}
	return v, nil
}

func (j *JSON[T]) Put(ctx context.Context, key string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return j.store.Set(ctx, key, data, j.ttl)
}

func (j *JSON[T]) Delete(ctx context.Context, key string) error {
	return j.store.Delete(ctx, key)
}
