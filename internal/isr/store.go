// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package isr keeps generated page data and regenerates it in the background
// once it is older than the revalidation window.
package isr

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/storyfront/internal/cache"
	"github.com/olegiv/storyfront/internal/metrics"
)

// ErrNotFound is returned by a Loader when the page's source no longer exists.
// The stored entry is evicted so later requests see the absence.
var ErrNotFound = errors.New("isr: page source not found")

// Loader produces a fresh value for one key.
type Loader[T any] func(ctx context.Context) (*T, error)

// Status tells how a Get was served.
type Status int

const (
	Miss  Status = iota // generated during the request
	Fresh               // served from the store within the window
	Stale               // served from the store, regeneration triggered
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Entry is what the store persists per key.
type Entry[T any] struct {
	Value       T         `json:"value"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Options configures a Store.
type Options struct {
	// Revalidate is the age after which an entry is served stale and regenerated.
	Revalidate time.Duration

	// Retention bounds how long an entry is kept at all. Defaults to 24h.
	Retention time.Duration

	// RegenerateTimeout bounds one background regeneration. Defaults to 30s.
	RegenerateTimeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Store is a stale-while-revalidate page store. It is safe for concurrent use.
type Store[T any] struct {
	entries *cache.JSON[Entry[T]]
	group   singleflight.Group
	opts    Options
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// New creates a store on top of c.
func New[T any](c cache.Cache, opts Options) *Store[T] {
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	if opts.Retention < opts.Revalidate {
		opts.Retention = opts.Revalidate
	}
	if opts.RegenerateTimeout <= 0 {
		opts.RegenerateTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store[T]{
		entries:  cache.NewJSON[Entry[T]](c, opts.Retention),
		opts:     opts,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Get returns the value for key. A fresh entry is returned as is. A stale
// entry is returned immediately while one background regeneration runs. A
// missing entry is generated synchronously, with concurrent callers sharing
// one load. A caller whose ctx ends stops waiting without cancelling the load
// for the others.
func (s *Store[T]) Get(ctx context.Context, key string, load Loader[T]) (*T, Status, error) {
	entry, err := s.entries.Get(ctx, key)
	switch {
	case err == nil:
		if s.opts.Now().Sub(entry.GeneratedAt) < s.opts.Revalidate {
			metrics.PageStoreLookups.WithLabelValues(Fresh.String()).Inc()
			return &entry.Value, Fresh, nil
		}
		metrics.PageStoreLookups.WithLabelValues(Stale.String()).Inc()
		s.revalidate(key, load)
		return &entry.Value, Stale, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("page store read failed, generating directly", "key", key, "error", err)
	}

	metrics.PageStoreLookups.WithLabelValues(Miss.String()).Inc()
	ch := s.group.DoChan(key, func() (any, error) {
		// Every waiting caller shares this load, so it must outlive the
		// request that happened to start it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RegenerateTimeout)
		defer cancel()
		return s.generate(loadCtx, key, load)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, Miss, res.Err
		}
		return res.Val.(*T), Miss, nil
	case <-ctx.Done():
		return nil, Miss, ctx.Err()
	}
}

// Prime stores value as freshly generated.
func (s *Store[T]) Prime(ctx context.Context, key string, value *T) error {
	return s.entries.Put(ctx, key, &Entry[T]{Value: *value, GeneratedAt: s.opts.Now()})
}

// Invalidate drops the entry for key.
func (s *Store[T]) Invalidate(ctx context.Context, key string) error {
	return s.entries.Delete(ctx, key)
}

// Close stops new background regenerations and waits for running ones.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until running background regenerations finish.
func (s *Store[T]) Wait() {
	s.wg.Wait()
}

func (s *Store[T]) generate(ctx context.Context, key string, load Loader[T]) (*T, error) {
	v, err := load(ctx)
	if errors.Is(err, ErrNotFound) {
		if delErr := s.entries.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to evict page", "key", key, "error", delErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.Prime(ctx, key, v); err != nil {
		s.logger.Warn("failed to store page", "key", key, "error", err)
	}
	return v, nil
}

func (s *Store[T]) revalidate(key string, load Loader[T]) {
	s.mu.Lock()
	if _, running := s.inflight[key]; running || s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
			s.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RegenerateTimeout)
		defer cancel()

		_, err, _ := s.group.Do(key, func() (any, error) {
			return s.generate(ctx, key, load)
		})
		switch {
		case errors.Is(err, ErrNotFound):
			metrics.Regenerations.WithLabelValues("gone").Inc()
			s.logger.Info("page source removed, entry evicted", "key", key)
		case err != nil:
			metrics.Regenerations.WithLabelValues("error").Inc()
			s.logger.Error("page regeneration failed, keeping stale entry", "key", key, "error", err)
		default:
			metrics.Regenerations.WithLabelValues("ok").Inc()
			s.logger.Debug("page regenerated", "key", key)
		}
	}()
}
