// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/storyfront/internal/content"
)

// FakeContent is an in-memory content store. It filters comments the way the
// real detail query does unless LeakUnapproved is set.
type FakeContent struct {
	mu       sync.Mutex
	posts    []content.Post
	comments []content.Comment
	nextID   int

	ListErr  error // returned by ListPosts and ListPostPaths
	QueryErr error // returned by PostBySlug
	WriteErr error // returned by CreateComment
	PingErr  error // returned by Ping

	// LeakUnapproved makes PostBySlug return every comment of the post.
	LeakUnapproved bool

	PostBySlugCalls int
}

// NewFakeContent returns a store holding posts.
func NewFakeContent(posts ...content.Post) *FakeContent {
	return &FakeContent{posts: posts}
}

// SamplePost builds a minimal post with the given slug.
func SamplePost(id, slug, title string) content.Post {
	return content.Post{
		ID:          id,
		CreatedAt:   time.Date(2022, 3, 4, 10, 30, 0, 0, time.UTC),
		Title:       title,
		Slug:        content.Slug{Current: slug},
		Author:      &content.Author{Name: "Ann Author"},
		Description: "About " + title,
		MainImage:   &content.Image{Asset: &content.ImageAsset{Ref: "image-main-800x600-jpg"}},
		Comments:    []content.Comment{},
	}
}

// AddPost publishes a post.
func (f *FakeContent) AddPost(p content.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, p)
}

// RemovePost unpublishes the post with slug.
func (f *FakeContent) RemovePost(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = slices.DeleteFunc(f.posts, func(p content.Post) bool { return p.Slug.Current == slug })
}

// SetTitle edits a published post.
func (f *FakeContent) SetTitle(slug, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].Slug.Current == slug {
			f.posts[i].Title = title
		}
	}
}

// AddComment stores a comment as is, approved or not.
func (f *FakeContent) AddComment(c content.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, c)
}

// Approve marks a comment approved, as a moderator would.
func (f *FakeContent) Approve(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Approved = true
		}
	}
}

// Comments returns every stored comment.
func (f *FakeContent) Comments() []content.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.comments)
}

func (f *FakeContent) ListPosts(context.Context) ([]content.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	out := make([]content.PostSummary, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, content.PostSummary{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Author:      p.Author,
			Description: p.Description,
			MainImage:   p.MainImage,
		})
	}
	return out, nil
}

func (f *FakeContent) ListPostPaths(context.Context) ([]content.PostPath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	out := make([]content.PostPath, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, content.PostPath{ID: p.ID, Slug: p.Slug, UpdatedAt: p.CreatedAt})
	}
	return out, nil
}

func (f *FakeContent) PostBySlug(_ context.Context, slug string) (*content.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PostBySlugCalls++
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	for _, p := range f.posts {
		if p.Slug.Current != slug {
			continue
		}
		post := p
		post.Comments = []content.Comment{}
		for _, c := range f.comments {
			if f.LeakUnapproved || (c.Post.Ref == p.ID && c.Approved) {
				post.Comments = append(post.Comments, c)
			}
		}
		return &post, nil
	}
	return nil, nil
}

func (f *FakeContent) CreateComment(_ context.Context, in content.NewComment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return "", f.WriteErr
	}

	f.nextID++
	id := fmt.Sprintf("comment-%d", f.nextID)
	f.comments = append(f.comments, content.Comment{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Post:      content.Reference{Type: "reference", Ref: in.PostID},
		Name:      in.Name,
		Email:     in.Email,
		Comment:   in.Comment,
		Approved:  false,
	})
	return id, nil
}

func (f *FakeContent) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingErr
}
