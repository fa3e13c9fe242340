// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantLoc    string
	}{
		{"root untouched", http.MethodGet, "/", http.StatusOK, ""},
		{"no slash", http.MethodGet, "/post/hello", http.StatusOK, ""},
		{"trailing slash", http.MethodGet, "/post/hello/", http.StatusMovedPermanently, "/post/hello"},
		{"keeps query", http.MethodGet, "/post/hello/?ref=x", http.StatusMovedPermanently, "/post/hello?ref=x"},
		{"head", http.MethodHead, "/post/hello/", http.StatusMovedPermanently, "/post/hello"},
		{"post passes through", http.MethodPost, "/post/hello/comment/", http.StatusOK, ""},
		{"no protocol-relative redirect", http.MethodGet, "//evil.example/", http.StatusMovedPermanently, "/evil.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://blog.local"+tt.target, nil)
			rr := httptest.NewRecorder()
			StripTrailingSlash(simpleOKHandler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
		})
	}
}
