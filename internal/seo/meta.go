// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo provides SEO utilities for building meta tags, structured data,
// sitemaps and robots.txt.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"
)

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // Page title (for <title> tag)
	Description   string // Meta description
	Canonical     string // Canonical URL
	OGTitle       string // Open Graph title
	OGDescription string // Open Graph description
	OGImage       string // Open Graph image URL (absolute)
	OGType        string // Open Graph type (website, article)
	OGSiteName    string // Open Graph site name
	OGURL         string // Open Graph URL
	Robots        string // Robots directive (index,follow / noindex,nofollow)
	TwitterCard   string // Twitter card type
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
}

// PostData contains the post fields meta tags are built from.
type PostData struct {
	Title       string
	Description string
	Body        string // plain text, used when Description is empty
	Slug        string
	ImageURL    string
	AuthorName  string
	PublishedAt time.Time
}

// BuildIndexMeta returns the meta tags of the post index.
func BuildIndexMeta(site SiteConfig) *Meta {
	return &Meta{
		Title:         site.SiteName,
		Description:   site.SiteDescription,
		Canonical:     canonical(site, "/"),
		OGTitle:       site.SiteName,
		OGDescription: site.SiteDescription,
		OGType:        "website",
		OGSiteName:    site.SiteName,
		OGURL:         canonical(site, "/"),
		Robots:        "index,follow",
		TwitterCard:   "summary",
	}
}

// BuildPostMeta returns the meta tags of a post page.
func BuildPostMeta(post PostData, site SiteConfig) *Meta {
	description := post.Description
	if description == "" {
		description = truncateText(strings.Join(strings.Fields(post.Body), " "), 160)
	}

	meta := &Meta{
		Title:         post.Title + " | " + site.SiteName,
		Description:   description,
		Canonical:     canonical(site, PostPath(post.Slug)),
		OGTitle:       post.Title,
		OGDescription: description,
		OGImage:       post.ImageURL,
		OGType:        "article",
		OGSiteName:    site.SiteName,
		Robots:        "index,follow",
		TwitterCard:   "summary",
	}
	meta.OGURL = meta.Canonical
	if meta.OGImage != "" {
		meta.TwitterCard = "summary_large_image"
	}
	return meta
}

// BuildNotFoundMeta returns meta tags for error pages, which must not be indexed.
func BuildNotFoundMeta(title string, site SiteConfig) *Meta {
	return &Meta{
		Title:      title + " | " + site.SiteName,
		OGSiteName: site.SiteName,
		Robots:     "noindex,nofollow",
	}
}

// PostPath returns the site-relative URL of a post page.
func PostPath(slug string) string {
	return "/post/" + slug
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	Author           *PersonSchema `json:"author,omitempty"`
	Publisher        *OrgSchema    `json:"publisher,omitempty"`
	MainEntityOfPage string        `json:"mainEntityOfPage,omitempty"`
}

// PersonSchema represents JSON-LD Person structured data.
type PersonSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// BuildArticleSchema creates JSON-LD Article structured data for a post.
func BuildArticleSchema(post PostData, site SiteConfig) template.JS {
	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "Article",
		Headline:         post.Title,
		Description:      post.Description,
		Image:            post.ImageURL,
		MainEntityOfPage: canonical(site, PostPath(post.Slug)),
		Publisher: &OrgSchema{
			Type: "Organization",
			Name: site.SiteName,
		},
	}
	if !post.PublishedAt.IsZero() {
		article.DatePublished = post.PublishedAt.Format(time.RFC3339)
	}
	if post.AuthorName != "" {
		article.Author = &PersonSchema{Type: "Person", Name: post.AuthorName}
	}

	data, err := json.Marshal(article)
	if err != nil {
		return ""
	}
	return template.JS(data) //nolint:gosec // json.Marshal escapes <, > and &
}

// canonical joins the site URL and path. Without a site URL the path is
// returned so templates still get a usable relative link.
func canonical(site SiteConfig, path string) string {
	return strings.TrimSuffix(site.SiteURL, "/") + path
}

// truncateText truncates text to maxLen characters at a word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "..."
}
