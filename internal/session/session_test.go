// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		wantSecure bool
	}{
		{"development", true, false},
		{"production", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := New(tt.isDev)

			if sm.Lifetime != Lifetime {
				t.Errorf("Lifetime = %v, want %v", sm.Lifetime, Lifetime)
			}
			if !sm.Cookie.HttpOnly {
				t.Error("Cookie.HttpOnly should be true")
			}
			if sm.Cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("Cookie.SameSite = %v, want Lax", sm.Cookie.SameSite)
			}
			if sm.Cookie.Secure != tt.wantSecure {
				t.Errorf("Cookie.Secure = %v, want %v", sm.Cookie.Secure, tt.wantSecure)
			}
		})
	}
}

func TestSession_RoundTrip(t *testing.T) {
	sm := New(true)

	put := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "state", "submitted")
		w.WriteHeader(http.StatusSeeOther)
	}))
	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var got string
	pop := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = sm.PopString(r.Context(), "state")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	pop.ServeHTTP(httptest.NewRecorder(), req)

	if got != "submitted" {
		t.Errorf("PopString = %q, want submitted", got)
	}
}
