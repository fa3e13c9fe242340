// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the blog's read and write flows on top of the
// content store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/isr"
)

// ContentStore is the part of the content client the services use.
type ContentStore interface {
	ListPosts(ctx context.Context) ([]content.PostSummary, error)
	ListPostPaths(ctx context.Context) ([]content.PostPath, error)
	PostBySlug(ctx context.Context, slug string) (*content.Post, error)
	CreateComment(ctx context.Context, in content.NewComment) (string, error)
}

// BuildReport summarises one Build run.
type BuildReport struct {
	Paths     int
	Generated int
	Failed    int
	Duration  time.Duration
}

// PostService serves the post index and the pre-generated post pages.
type PostService struct {
	content     ContentStore
	pages       *isr.Store[content.Post]
	logger      *slog.Logger
	concurrency int

	mu    sync.RWMutex
	paths map[string]content.PostPath // by slug
	ids   map[string]struct{}
}

// NewPostService creates a PostService. Build must run before Post can find anything.
func NewPostService(store ContentStore, pages *isr.Store[content.Post], logger *slog.Logger, concurrency int) *PostService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PostService{
		content:     store,
		pages:       pages,
		logger:      logger,
		concurrency: concurrency,
		paths:       map[string]content.PostPath{},
		ids:         map[string]struct{}{},
	}
}

// Index fetches the post list straight from the store on every call.
func (s *PostService) Index(ctx context.Context) ([]content.PostSummary, error) {
	posts, err := s.content.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Build enumerates the post paths and generates every page into the store.
// Failing to list paths is fatal. A page that fails to generate is logged and
// left for the first request to generate.
func (s *PostService) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()

	slugs, err := s.RefreshPaths(ctx)
	if err != nil {
		return BuildReport{}, err
	}

	var (
		mu     sync.Mutex
		report = BuildReport{Paths: len(slugs)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, slug := range slugs {
		g.Go(func() error {
			err := s.prerender(gctx, slug)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				s.logger.Warn("failed to pre-render post", "slug", slug, "error", err)
				return nil
			}
			report.Generated++
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	return report, nil
}

func (s *PostService) prerender(ctx context.Context, slug string) error {
	post, err := s.load(slug)(ctx)
	if err != nil {
		return err
	}
	return s.pages.Prime(ctx, pageKey(slug), post)
}

// RefreshPaths replaces the known path set with the store's current one and
// returns the sorted slugs. Pages of removed slugs are dropped from the store.
func (s *PostService) RefreshPaths(ctx context.Context) ([]string, error) {
	list, err := s.content.ListPostPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing post paths: %w", err)
	}

	paths := make(map[string]content.PostPath, len(list))
	ids := make(map[string]struct{}, len(list))
	for _, p := range list {
		if p.Slug.Current == "" {
			continue
		}
		paths[p.Slug.Current] = p
		ids[p.ID] = struct{}{}
	}

	s.mu.Lock()
	old := s.paths
	s.paths = paths
	s.ids = ids
	s.mu.Unlock()

	for slug := range old {
		if _, ok := paths[slug]; ok {
			continue
		}
		if err := s.pages.Invalidate(ctx, pageKey(slug)); err != nil {
			s.logger.Warn("failed to drop removed post page", "slug", slug, "error", err)
		}
	}

	return s.Slugs(), nil
}

// Post returns the page data for slug. Slugs outside the known path set are
// not found without asking the store.
func (s *PostService) Post(ctx context.Context, slug string) (*content.Post, isr.Status, error) {
	if !s.HasPath(slug) {
		return nil, isr.Miss, &NotFoundError{Resource: "post", Key: slug}
	}

	post, status, err := s.pages.Get(ctx, pageKey(slug), s.load(slug))
	if errors.Is(err, isr.ErrNotFound) {
		return nil, status, &NotFoundError{Resource: "post", Key: slug}
	}
	if err != nil {
		return nil, status, fmt.Errorf("loading post %s: %w", slug, err)
	}
	return post, status, nil
}

// HasPath reports whether slug is in the known path set.
func (s *PostService) HasPath(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.paths[slug]
	return ok
}

// PostID returns the id of the post at slug, if slug is in the known path set.
func (s *PostService) PostID(slug string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[slug]
	return p.ID, ok
}

// HasPostID reports whether id belongs to a known post.
func (s *PostService) HasPostID(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Slugs returns the known path set, sorted.
func (s *PostService) Slugs() []string {
	s.mu.RLock()
	slugs := make([]string, 0, len(s.paths))
	for slug := range s.paths {
		slugs = append(slugs, slug)
	}
	s.mu.RUnlock()

	sort.Strings(slugs)
	return slugs
}

// Paths returns the known path set ordered by slug.
func (s *PostService) Paths() []content.PostPath {
	s.mu.RLock()
	paths := make([]content.PostPath, 0, len(s.paths))
	for _, p := range s.paths {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	sort.Slice(paths, func(i, j int) bool { return paths[i].Slug.Current < paths[j].Slug.Current })
	return paths
}

// PathCount returns the size of the known path set.
func (s *PostService) PathCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

func (s *PostService) load(slug string) isr.Loader[content.Post] {
	return func(ctx context.Context) (*content.Post, error) {
		post, err := s.content.PostBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, isr.ErrNotFound
		}
		post.Comments = visibleComments(post.ID, post.Comments)
		return post, nil
	}
}

// visibleComments keeps the approved comments that belong to postID.
func visibleComments(postID string, comments []content.Comment) []content.Comment {
	out := make([]content.Comment, 0, len(comments))
	for _, c := range comments {
		if c.Approved && c.Post.Ref == postID {
			out = append(out, c)
		}
	}
	return out
}

func pageKey(slug string) string {
	return "post:" + slug
}
