// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/storyfront/internal/cache"
	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/isr"
	"github.com/olegiv/storyfront/internal/render"
	"github.com/olegiv/storyfront/internal/seo"
	"github.com/olegiv/storyfront/internal/service"
	"github.com/olegiv/storyfront/internal/session"
	"github.com/olegiv/storyfront/internal/testutil"
	"github.com/olegiv/storyfront/internal/version"
	"github.com/olegiv/storyfront/web"
)

type testApp struct {
	store    *testutil.FakeContent
	posts    *service.PostService
	pages    *isr.Store[content.Post]
	sessions *scs.SessionManager
	router   http.Handler
}

// newTestApp wires the handlers over store the way the server does and runs
// the startup build.
func newTestApp(t *testing.T, store *testutil.FakeContent) *testApp {
	t.Helper()
	logger := testutil.TestLoggerSilent()

	mem := cache.NewMemory(cache.MemoryOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })
	pages := isr.New[content.Post](mem, isr.Options{Revalidate: time.Hour, Logger: logger})
	t.Cleanup(pages.Close)

	posts := service.NewPostService(store, pages, logger, 2)
	_, err := posts.Build(context.Background())
	require.NoError(t, err)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	sm := session.New(true)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		IsDev:          true,
		Images:         content.NewImageURLBuilder("proj", "production"),
		Site:           seo.SiteConfig{SiteName: "Medium clone", SiteURL: "https://blog.example.com"},
		Banner:         "# Medium is a place to write",
	})
	require.NoError(t, err)

	frontend := NewFrontendHandler(posts, renderer, logger)
	comments := NewCommentHandler(service.NewCommentService(store, posts, logger), frontend, renderer, logger)
	health := NewHealthHandler(store, mem, posts, version.Info{Version: "v0.0.1"})

	r := chi.NewRouter()
	r.NotFound(frontend.NotFound)
	r.Get(RouteHealth, health.Health)
	r.Get(RouteHealthLive, health.Liveness)
	r.Get(RouteHealthReady, health.Readiness)
	r.Get(RouteSitemap, frontend.Sitemap)
	r.Get(RouteRobots, frontend.Robots)
	r.Post(RouteCreateComment, comments.Create)
	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Get(RouteRoot, frontend.Index)
		r.Get(RoutePost, frontend.Post)
		r.Post(RoutePostComment, comments.SubmitForm)
	})

	return &testApp{store: store, posts: posts, pages: pages, sessions: sm, router: r}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return a.do(req)
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}
