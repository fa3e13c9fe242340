// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"time"

	"github.com/olegiv/storyfront/internal/portabletext"
)

// Slug is the store's slug object.
type Slug struct {
	Current string `json:"current"`
}

// ImageAsset points at an uploaded image either by reference or by expanded URL.
type ImageAsset struct {
	Ref string `json:"_ref,omitempty"`
	URL string `json:"url,omitempty"`
}

// Image is an image field as returned by queries.
type Image struct {
	Asset *ImageAsset `json:"asset,omitempty"`
	Alt   string      `json:"alt,omitempty"`
}

// IsZero reports whether the image has no usable asset.
func (i *Image) IsZero() bool {
	return i == nil || i.Asset == nil || (i.Asset.Ref == "" && i.Asset.URL == "")
}

// Author is the resolved author reference of a post.
type Author struct {
	Name  string `json:"name"`
	Image *Image `json:"image,omitempty"`
}

// PostSummary is the index page projection of a post.
type PostSummary struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Slug        Slug    `json:"slug"`
	Author      *Author `json:"author,omitempty"`
	Description string  `json:"description"`
	MainImage   *Image  `json:"mainImage,omitempty"`
}

// PostPath is the slug listing projection used to enumerate post pages.
type PostPath struct {
	ID        string    `json:"_id"`
	Slug      Slug      `json:"slug"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// Reference is a typed pointer to another document.
type Reference struct {
	Type string `json:"_type,omitempty"`
	Ref  string `json:"_ref"`
}

// Comment is a reader comment as stored.
type Comment struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	Post      Reference `json:"post"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
}

// Post is the full detail projection with the approved comments attached.
type Post struct {
	ID          string              `json:"_id"`
	CreatedAt   time.Time           `json:"_createdAt"`
	Title       string              `json:"title"`
	Slug        Slug                `json:"slug"`
	Author      *Author             `json:"author,omitempty"`
	Description string              `json:"description"`
	MainImage   *Image              `json:"mainImage,omitempty"`
	Body        portabletext.Blocks `json:"body"`
	Comments    []Comment           `json:"comments"`
}

// NewComment is the input for CreateComment.
type NewComment struct {
	PostID  string
	Name    string
	Email   string
	Comment string
}
