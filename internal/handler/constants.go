// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route patterns.
const (
	RouteRoot          = "/"
	RoutePost          = "/post/{slug}"
	RoutePostComment   = "/post/{slug}/comment"
	RouteCreateComment = "/api/create-comment"
	RouteSitemap       = "/sitemap.xml"
	RouteRobots        = "/robots.txt"
	RouteStatic        = "/static/dist/*"
	RouteMetrics       = "/metrics"
	RouteHealth        = "/health"
	RouteHealthLive    = "/health/live"
	RouteHealthReady   = "/health/ready"
)
