// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContentRequests counts content store calls by operation and outcome.
	ContentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_content_requests_total",
		Help: "Total number of content store requests",
	}, []string{"operation", "outcome"})

	// ContentLatency records content store call latency by operation.
	ContentLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storyfront_content_request_duration_seconds",
		Help:    "Content store request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PageStoreLookups counts page store lookups by result (fresh, stale, miss).
	PageStoreLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_page_store_lookups_total",
		Help: "Page store lookups by result",
	}, []string{"result"})

	// Regenerations counts background page regenerations by outcome.
	Regenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_page_regenerations_total",
		Help: "Background page regenerations by outcome",
	}, []string{"outcome"})

	// CommentSubmissions counts comment submissions by final state.
	CommentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_comment_submissions_total",
		Help: "Comment submissions by final state",
	}, []string{"state"})

	// HTTPRequests counts served HTTP requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPLatency records HTTP handler latency by route pattern.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storyfront_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// LogEvents counts log records at or above the warning level.
	LogEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyfront_log_events_total",
		Help: "Warning and error log records by level",
	}, []string{"level"})
)

// TrackContent returns a function that records one content store call.
// Call it with the call's error, typically from a defer.
func TrackContent(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		ContentLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		ContentRequests.WithLabelValues(operation, outcome).Inc()
	}
}
