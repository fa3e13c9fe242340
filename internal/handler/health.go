// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/olegiv/storyfront/internal/cache"
	"github.com/olegiv/storyfront/internal/version"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PathCounter reports the size of the known post path set.
type PathCounter interface {
	PathCount() int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store     Pinger
	pageCache cache.Cache
	paths     PathCounter
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. pageCache may be nil.
func NewHealthHandler(store Pinger, pageCache cache.Cache, paths PathCounter, info version.Info) *HealthHandler {
	return &HealthHandler{
		store:     store,
		pageCache: pageCache,
		paths:     paths,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Paths     int              `json:"paths"`
	Checks    map[string]Check `json:"checks"`
	PageStore *cache.Stats     `json:"page_store,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. Add ?verbose=1 (or true) for runtime details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"content_store": h.checkStore(r.Context()),
		"page_cache":    h.checkCache(r.Context()),
	}

	overall := "healthy"
	for _, c := range checks {
		if c.Status != "healthy" {
			overall = "degraded"
		}
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Paths:     h.paths.PathCount(),
		Checks:    checks,
	}
	if verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose")); verbose {
		status.System = systemInfo()
		if sr, ok := h.pageCache.(cache.StatsReporter); ok {
			stats := sr.Stats()
			status.PageStore = &stats
		}
	}

	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. The server is ready once the content
// store answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if check := h.checkStore(r.Context()); check.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": check.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkStore(ctx context.Context) Check {
	return timedCheck(ctx, h.store.Ping, "Reachable")
}

// checkCache pings the page cache when its backend supports it.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	if h.pageCache == nil {
		return Check{Status: "healthy", Message: "Disabled"}
	}
	backend := cache.Backend(h.pageCache)
	if p, ok := h.pageCache.(Pinger); ok {
		return timedCheck(ctx, p.Ping, "Connected ("+backend+")")
	}
	return Check{Status: "healthy", Message: "In-process (" + backend + ")"}
}

func timedCheck(ctx context.Context, ping func(context.Context) error, okMessage string) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Message: okMessage,
		Latency: latency.String(),
	}
}

// systemInfo returns system-level metrics.
func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
