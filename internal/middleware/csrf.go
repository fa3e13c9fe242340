package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig configures cross-origin protection for the comment endpoints.
// The check is based on Fetch metadata and Origin headers, so neither the
// form nor the fetch call carries a token.
type CSRFConfig struct {
	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string

	// OnFailure answers rejected requests. Defaults to a 403 that is JSON on
	// API paths.
	OnFailure http.Handler
}

// DefaultCSRFConfig trusts the public site host, which differs from the
// request host behind a proxy, and in development the local listen address
// under both of its names.
func DefaultCSRFConfig(siteURL string, isDev bool, port int) CSRFConfig {
	var cfg CSRFConfig

	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, u.Host)
	}
	if isDev {
		p := strconv.Itoa(port)
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, "localhost:"+p, "127.0.0.1:"+p)
	}
	return cfg
}

// CSRF rejects cross-origin state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = http.HandlerFunc(rejectCrossOrigin)
	}

	opts := []csrf.Option{csrf.ErrorHandler(onFailure)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	// The gorilla-compatible Protect ignores its key argument.
	return csrf.Protect(nil, opts...)
}

func rejectCrossOrigin(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("cross-origin request rejected",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)

	if isAPIPath(r.URL.Path) {
		WriteAPIError(w, http.StatusForbidden, "Cross-origin request rejected", nil)
		return
	}
	http.Error(w, "Forbidden - cross-origin request rejected", http.StatusForbidden)
}
