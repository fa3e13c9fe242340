package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultCSRFConfig(t *testing.T) {
	tests := []struct {
		name    string
		siteURL string
		isDev   bool
		want    []string
	}{
		{"production without site URL", "", false, nil},
		{"production behind proxy", "https://blog.example.com", false, []string{"blog.example.com"}},
		{"development", "", true, []string{"localhost:3000", "127.0.0.1:3000"}},
		{"development with site URL", "http://blog.test:8000/", true, []string{"blog.test:8000", "localhost:3000", "127.0.0.1:3000"}},
		{"unparsable site URL", "://", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultCSRFConfig(tt.siteURL, tt.isDev, 3000).TrustedOrigins
			if len(got) != len(tt.want) {
				t.Fatalf("TrustedOrigins = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("TrustedOrigins[%d] = %q, want %q (host:port, not a URL)", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func csrfTestHandler() http.Handler {
	return CSRF(DefaultCSRFConfig("", false, 3000))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRF_AllowsSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/create-comment", nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	rr := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRF_AllowsSafeMethods(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/post/hello", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	rr := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRF_RejectsCrossSiteAPIPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/create-comment", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")

	rr := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	var body APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("API rejection is not JSON: %v", err)
	}
}

func TestCSRF_RejectsCrossSiteFormPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/post/hello/comment", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	rr := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCSRF_CustomFailureHandler(t *testing.T) {
	cfg := DefaultCSRFConfig("", false, 3000)
	cfg.OnFailure = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/create-comment", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusTeapot)
	}
}
