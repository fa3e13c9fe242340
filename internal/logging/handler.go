// Package logging builds the server's slog logger. Records carry the chi
// request id when logged with a request context, and warnings and errors are
// counted in Prometheus.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/storyfront/internal/metrics"
)

// Handler is a slog.Handler that wraps another handler, adds the request id
// found in the context and counts records at or above level.
type Handler struct {
	inner slog.Handler
	level slog.Level // Minimum level to count (default: WARN)
}

// NewHandler wraps inner, counting records at WARN and above.
func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner, level: slog.LevelWarn}
}

// NewHandlerWithLevel wraps inner with a custom minimum counted level.
func NewHandlerWithLevel(inner slog.Handler, level slog.Level) *Handler {
	return &Handler{inner: inner, level: level}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id := chimw.GetReqID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("request_id", id))
	}

	if r.Level >= h.level {
		metrics.LogEvents.WithLabelValues(levelLabel(r.Level)).Inc()
	}

	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), level: h.level}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// ParseLevel maps debug, info, warn and error to a slog level. Unknown
// values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing text or json records to w.
func New(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	switch format {
	case "", "text":
		inner = slog.NewTextHandler(w, opts)
	case "json":
		inner = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return slog.New(NewHandler(inner)), nil
}
