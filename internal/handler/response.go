// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/storyfront/internal/render"
	"github.com/olegiv/storyfront/internal/seo"
)

// redirectToComments records the form outcome for slug's next page view and
// sends the browser back to the comment section with 303 See Other. An empty
// flash sets no banner.
func redirectToComments(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, slug, state, flash string) {
	renderer.SetCommentState(r, slug, state)
	if flash != "" {
		renderer.SetFlash(r, flash, "error")
	}
	http.Redirect(w, r, seo.PostPath(slug)+"#comments", http.StatusSeeOther)
}
