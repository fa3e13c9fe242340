// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var site = SiteConfig{SiteName: "Medium clone", SiteURL: "https://blog.example.com/", SiteDescription: "Stories"}

func TestBuildIndexMeta(t *testing.T) {
	meta := BuildIndexMeta(site)

	if meta.Title != "Medium clone" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Canonical != "https://blog.example.com/" {
		t.Errorf("Canonical = %q", meta.Canonical)
	}
	if meta.OGType != "website" {
		t.Errorf("OGType = %q, want website", meta.OGType)
	}
}

func TestBuildPostMeta(t *testing.T) {
	meta := BuildPostMeta(PostData{
		Title:       "Hello",
		Description: "A greeting",
		Slug:        "hello",
		ImageURL:    "https://cdn.sanity.io/images/p/d/a-1x1.png",
	}, site)

	if meta.Title != "Hello | Medium clone" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Canonical != "https://blog.example.com/post/hello" || meta.OGURL != meta.Canonical {
		t.Errorf("Canonical = %q, OGURL = %q", meta.Canonical, meta.OGURL)
	}
	if meta.TwitterCard != "summary_large_image" {
		t.Errorf("TwitterCard = %q", meta.TwitterCard)
	}
	if meta.OGType != "article" {
		t.Errorf("OGType = %q", meta.OGType)
	}
}

func TestBuildPostMeta_DescriptionFallback(t *testing.T) {
	body := strings.Repeat("word ", 100)
	meta := BuildPostMeta(PostData{Title: "T", Slug: "t", Body: body}, SiteConfig{SiteName: "S"})

	if !strings.HasSuffix(meta.Description, "...") {
		t.Errorf("Description should be truncated, got %q", meta.Description)
	}
	if len([]rune(meta.Description)) > 163 {
		t.Errorf("Description too long: %d", len(meta.Description))
	}
	if meta.Canonical != "/post/t" {
		t.Errorf("Canonical without site URL = %q, want /post/t", meta.Canonical)
	}
	if meta.TwitterCard != "summary" {
		t.Errorf("TwitterCard = %q", meta.TwitterCard)
	}
}

func TestBuildNotFoundMeta(t *testing.T) {
	meta := BuildNotFoundMeta("Not found", site)
	if meta.Robots != "noindex,nofollow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
}

func TestBuildArticleSchema(t *testing.T) {
	js := BuildArticleSchema(PostData{
		Title:       "Hello </script>",
		Slug:        "hello",
		AuthorName:  "Ann",
		PublishedAt: time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC),
	}, site)

	if strings.Contains(string(js), "</script>") {
		t.Error("schema must not contain a raw closing script tag")
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(js), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["headline"] != "Hello </script>" {
		t.Errorf("headline = %v", got["headline"])
	}
	if got["datePublished"] != "2022-01-02T03:04:05Z" {
		t.Errorf("datePublished = %v", got["datePublished"])
	}
	if got["mainEntityOfPage"] != "https://blog.example.com/post/hello" {
		t.Errorf("mainEntityOfPage = %v", got["mainEntityOfPage"])
	}
	author, _ := got["author"].(map[string]any)
	if author["name"] != "Ann" {
		t.Errorf("author = %v", got["author"])
	}
}

func TestBuildSitemap(t *testing.T) {
	out, err := BuildSitemap("https://blog.example.com/", []SitemapEntry{
		{Slug: "a", LastMod: time.Date(2022, 3, 4, 10, 0, 0, 0, time.UTC)},
		{Slug: "b"},
	})
	if err != nil {
		t.Fatalf("BuildSitemap: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://blog.example.com/</loc>",
		"<loc>https://blog.example.com/post/a</loc>",
		"<loc>https://blog.example.com/post/b</loc>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
	// The index and post a carry a lastmod; post b has none.
	if n := strings.Count(s, "<lastmod>2022-03-04T10:00:00Z</lastmod>"); n != 2 {
		t.Errorf("lastmod count = %d, want 2", n)
	}
}

func TestBuildSitemap_NoPosts(t *testing.T) {
	out, err := BuildSitemap("https://blog.example.com", nil)
	if err != nil {
		t.Fatalf("BuildSitemap: %v", err)
	}
	if strings.Count(string(out), "<url>") != 1 || strings.Contains(string(out), "lastmod") {
		t.Errorf("unexpected sitemap:\n%s", out)
	}
}

func TestGenerateRobots(t *testing.T) {
	got := GenerateRobots(RobotsConfig{SiteURL: "https://blog.example.com/"})
	for _, want := range []string{"User-agent: *", "Disallow: /api/", "Allow: /", "Sitemap: https://blog.example.com/sitemap.xml"} {
		if !strings.Contains(got, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, got)
		}
	}

	blocked := GenerateRobots(RobotsConfig{SiteURL: "https://x", DisallowAll: true})
	if blocked != "User-agent: *\nDisallow: /\n" {
		t.Errorf("DisallowAll robots = %q", blocked)
	}
}
