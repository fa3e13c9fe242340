// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/storyfront/internal/render"
	"github.com/olegiv/storyfront/internal/service"
)

// CommentHandler accepts reader comments from the API and the page form.
type CommentHandler struct {
	comments *service.CommentService
	pages    *FrontendHandler
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler. pages renders the post page
// again when a form submission is rejected.
func NewCommentHandler(comments *service.CommentService, pages *FrontendHandler, renderer *render.Renderer, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		pages:    pages,
		renderer: renderer,
		logger:   logger,
	}
}

// Create handles POST /api/create-comment with a JSON body of
// {"_id", "name", "email", "comment"}.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Info("rejected comment body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	sub := h.comments.Submit(r.Context(), in)
	switch {
	case sub.State == service.StateSubmitted:
		writeJSONSuccess(w, map[string]any{
			"id":      sub.CommentID,
			"message": "Comment submitted",
		})
	case sub.Invalid():
		writeJSONError(w, http.StatusBadRequest, "Invalid comment", validationFields(sub.Err))
	default:
		writeJSONError(w, http.StatusInternalServerError, "Couldn't submit comment", nil)
	}
}

// SubmitForm handles POST /post/{slug}/comment for browsers without
// JavaScript. Success and store failures redirect back to the post page;
// rejected input re-renders it with the field errors.
func (h *CommentHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	postID, ok := h.pages.posts.PostID(slug)
	if !ok {
		h.pages.renderNotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		redirectToComments(w, r, h.renderer, slug, string(service.StateFailed), "Invalid form data")
		return
	}

	in := service.CommentInput{
		PostID:  r.PostForm.Get("_id"),
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Comment: r.PostForm.Get("comment"),
	}

	// The form may only comment on the post it was served with.
	if strings.TrimSpace(in.PostID) != postID {
		h.logger.Warn("comment form post id does not match page", "slug", slug, "post_id", in.PostID)
		h.pages.renderPost(w, r, http.StatusBadRequest, slug, render.CommentForm{
			State:   string(service.StateFailed),
			Error:   "This form belongs to a different post. Please reload the page and try again.",
			Name:    in.Name,
			Email:   in.Email,
			Comment: in.Comment,
		})
		return
	}

	sub := h.comments.Submit(r.Context(), in)
	switch {
	case sub.State == service.StateSubmitted:
		redirectToComments(w, r, h.renderer, slug, string(service.StateSubmitted), "")
	case sub.Invalid():
		h.pages.renderPost(w, r, http.StatusBadRequest, slug, render.CommentForm{
			State:       string(service.StateFailed),
			Error:       "Please correct the highlighted fields.",
			FieldErrors: validationFields(sub.Err),
			Name:        in.Name,
			Email:       in.Email,
			Comment:     in.Comment,
		})
	default:
		redirectToComments(w, r, h.renderer, slug, string(service.StateFailed), "Couldn't submit your comment. Please try again.")
	}
}

func validationFields(err error) map[string]string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
