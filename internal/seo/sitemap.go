package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapEntry is one post page. A zero LastMod leaves lastmod out.
type SitemapEntry struct {
	Slug    string
	LastMod time.Time
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// BuildSitemap lists the post index followed by every post page. The index
// takes the newest post's modification time.
func BuildSitemap(siteURL string, posts []SitemapEntry) ([]byte, error) {
	base := strings.TrimSuffix(siteURL, "/")

	var newest time.Time
	urls := make([]sitemapURL, 0, len(posts)+1)
	urls = append(urls, sitemapURL{Loc: base + "/", ChangeFreq: "daily", Priority: "1.0"})
	for _, p := range posts {
		u := sitemapURL{Loc: base + PostPath(p.Slug), ChangeFreq: "weekly", Priority: "0.8"}
		if !p.LastMod.IsZero() {
			u.LastMod = p.LastMod.UTC().Format(time.RFC3339)
			if p.LastMod.After(newest) {
				newest = p.LastMod
			}
		}
		urls = append(urls, u)
	}
	if !newest.IsZero() {
		urls[0].LastMod = newest.UTC().Format(time.RFC3339)
	}

	body, err := xml.MarshalIndent(urlSet{XMLNS: sitemapNS, URLs: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
