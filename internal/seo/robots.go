// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	SiteURL       string   // Base URL for the sitemap reference
	DisallowAll   bool     // Block all crawlers (for development instances)
	DisallowPaths []string // Extra paths to disallow
}

// GenerateRobots generates the robots.txt content.
func GenerateRobots(cfg RobotsConfig) string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")

	if cfg.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	paths := append([]string{"/api/", "/health"}, cfg.DisallowPaths...)
	for _, path := range paths {
		sb.WriteString("Disallow: " + path + "\n")
	}
	sb.WriteString("Allow: /\n")

	if cfg.SiteURL != "" {
		sb.WriteString("\nSitemap: " + strings.TrimSuffix(cfg.SiteURL, "/") + "/sitemap.xml\n")
	}

	return sb.String()
}
