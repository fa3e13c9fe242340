// Package handler provides HTTP handlers for the blog.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/render"
	"github.com/olegiv/storyfront/internal/seo"
	"github.com/olegiv/storyfront/internal/service"
)

// PageCacheHeader reports how a post page was served: miss, fresh or stale.
const PageCacheHeader = "X-Page-Cache"

// FrontendHandler serves the public pages.
type FrontendHandler struct {
	posts    *service.PostService
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(posts *service.PostService, renderer *render.Renderer, logger *slog.Logger) *FrontendHandler {
	return &FrontendHandler{
		posts:    posts,
		renderer: renderer,
		logger:   logger,
	}
}

// Index handles GET /. The post list is fetched on every request.
func (h *FrontendHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Index(r.Context())
	if err != nil {
		h.logger.Error("failed to list posts", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Couldn't load posts. Please try again later.")
		return
	}

	h.render(w, r, http.StatusOK, "index", render.TemplateData{
		Meta: seo.BuildIndexMeta(h.renderer.Site()),
		Data: render.IndexPage{Posts: posts},
	})
}

// Post handles GET /post/{slug}.
func (h *FrontendHandler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	form := render.CommentForm{State: h.renderer.PopCommentState(r, slug)}
	h.renderPost(w, r, http.StatusOK, slug, form)
}

// renderPost loads the post page for slug and renders it with the given
// comment form state.
func (h *FrontendHandler) renderPost(w http.ResponseWriter, r *http.Request, status int, slug string, form render.CommentForm) {
	post, cacheStatus, err := h.posts.Post(r.Context(), slug)
	if errors.Is(err, service.ErrNotFound) {
		h.renderNotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to load post", "slug", slug, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Couldn't load this post. Please try again later.")
		return
	}
	w.Header().Set(PageCacheHeader, cacheStatus.String())
	if form.State != "" || status != http.StatusOK {
		// The page carries one reader's form outcome.
		w.Header().Set("Cache-Control", "private, no-store")
	}

	form.PostID = post.ID
	form.Action = seo.PostPath(slug) + "/comment"

	data := h.postData(post)
	h.render(w, r, status, "post", render.TemplateData{
		Title:  post.Title + " | " + h.renderer.Site().SiteName,
		Meta:   seo.BuildPostMeta(data, h.renderer.Site()),
		Schema: seo.BuildArticleSchema(data, h.renderer.Site()),
		Data:   render.PostPage{Post: post, Form: form},
	})
}

func (h *FrontendHandler) postData(post *content.Post) seo.PostData {
	data := seo.PostData{
		Title:       post.Title,
		Description: post.Description,
		Body:        post.Body.PlainText(),
		Slug:        post.Slug.Current,
		ImageURL:    h.renderer.Images().URL(post.MainImage, content.ImageOptions{Width: 1200, Height: 630, Fit: "crop"}),
		PublishedAt: post.CreatedAt,
	}
	if post.Author != nil {
		data.AuthorName = post.Author.Name
	}
	return data
}

// NotFound handles unmatched routes.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w, r)
}

// Sitemap handles GET /sitemap.xml from the known post paths.
func (h *FrontendHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	paths := h.posts.Paths()
	entries := make([]seo.SitemapEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, seo.SitemapEntry{Slug: p.Slug.Current, LastMod: p.UpdatedAt})
	}
	body, err := seo.BuildSitemap(h.renderer.Site().SiteURL, entries)
	if err != nil {
		h.logger.Error("failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// Robots handles GET /robots.txt.
func (h *FrontendHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.GenerateRobots(seo.RobotsConfig{SiteURL: h.renderer.Site().SiteURL})))
}

// render renders a page, falling back to a plain text error when the
// template fails.
func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := h.renderer.RenderStatus(w, r, status, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
	}
}

// renderNotFound renders the 404 page.
func (h *FrontendHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", render.TemplateData{
		Title: "Page Not Found | " + h.renderer.Site().SiteName,
		Meta:  seo.BuildNotFoundMeta("Page Not Found", h.renderer.Site()),
	})
}

// renderError renders the error page with the given status.
func (h *FrontendHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", render.TemplateData{
		Title: http.StatusText(status) + " | " + h.renderer.Site().SiteName,
		Meta:  seo.BuildNotFoundMeta(http.StatusText(status), h.renderer.Site()),
		Data:  render.ErrorPage{Status: status, Message: message},
	})
}
