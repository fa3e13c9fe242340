// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/storyfront/internal/handler"
	"github.com/olegiv/storyfront/internal/middleware"
	"github.com/olegiv/storyfront/web"
)

// staticMaxAge caches bundled assets for a year.
const staticMaxAge = 31536000

// routerDeps carries everything the router needs from run.
type routerDeps struct {
	Frontend *handler.FrontendHandler
	Comments *handler.CommentHandler
	Health   *handler.HealthHandler
	Sessions *scs.SessionManager

	IsDev          bool
	SiteURL        string
	Port           int
	Revalidate     time.Duration
	RequestTimeout time.Duration
	MetricsEnabled bool
	CommentRate    float64
	CommentBurst   int
}

// newRouter builds the HTTP routes and the middleware stack.
func newRouter(d routerDeps) (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Metrics)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.IsDev)))
	// Flash messages and comment form state, also read by the 404 page.
	r.Use(d.Sessions.LoadAndSave)

	r.NotFound(d.Frontend.NotFound)

	// Health check routes
	r.Get(handler.RouteHealth, d.Health.Health)
	r.Get(handler.RouteHealthLive, d.Health.Liveness)
	r.Get(handler.RouteHealthReady, d.Health.Readiness)

	if d.MetricsEnabled {
		r.Handle(handler.RouteMetrics, promhttp.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle(handler.RouteStatic, middleware.StaticCache(staticMaxAge)(
		http.StripPrefix("/static/dist/", http.FileServerFS(staticFS))))

	r.Get(handler.RouteSitemap, d.Frontend.Sitemap)
	r.Get(handler.RouteRobots, d.Frontend.Robots)

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig(d.SiteURL, d.IsDev, d.Port))
	limiter := middleware.NewRateLimiter(d.CommentRate, d.CommentBurst)

	// JSON comment endpoint used by the form script.
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(limiter.Middleware())
		r.Post(handler.RouteCreateComment, d.Comments.Create)
	})

	r.Get(handler.RouteRoot, d.Frontend.Index)
	r.With(middleware.PageCache(d.Revalidate)).Get(handler.RoutePost, d.Frontend.Post)
	r.With(csrf, limiter.Middleware()).Post(handler.RoutePostComment, d.Comments.SubmitForm)

	return r, nil
}
