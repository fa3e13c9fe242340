// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "context"

// GROQ queries, one per projection.
const (
	postsQuery = `*[_type == "post"] | order(_createdAt desc){
  _id,
  title,
  slug,
  author->{name, image},
  description,
  mainImage
}`

	postPathsQuery = `*[_type == "post" && defined(slug.current)]{
  _id,
  _updatedAt,
  slug{current}
}`

	postBySlugQuery = `*[_type == "post" && slug.current == $slug][0]{
  _id,
  _createdAt,
  title,
  slug,
  author->{name, image},
  "comments": *[_type == "comment" && post._ref == ^._id && approved == true] | order(_createdAt asc),
  description,
  mainImage,
  body
}`

	pingQuery = `count(*[_type == "post"])`
)

// ListPosts returns the index projection of every post, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]PostSummary, error) {
	posts := []PostSummary{}
	if err := c.Query(ctx, "list_posts", postsQuery, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListPostPaths returns the slug of every post that has one.
func (c *Client) ListPostPaths(ctx context.Context) ([]PostPath, error) {
	paths := []PostPath{}
	if err := c.Query(ctx, "list_post_paths", postPathsQuery, nil, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// PostBySlug returns the post with the given slug and its approved comments,
// or nil when no such post exists.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	var post *Post
	params := map[string]any{"slug": slug}
	if err := c.Query(ctx, "post_by_slug", postBySlugQuery, params, &post); err != nil {
		return nil, err
	}
	if post != nil && post.Comments == nil {
		post.Comments = []Comment{}
	}
	return post, nil
}

// Ping runs a trivial count query to verify the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var n int
	return c.Query(ctx, "ping", pingQuery, nil, &n)
}
