// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one path refresh.
const refreshTimeout = time.Minute

// PathRefresher re-lists the post paths from the content store.
type PathRefresher interface {
	RefreshPaths(ctx context.Context) ([]string, error)
}

// Scheduler re-lists the post paths on a cron schedule so posts published
// after startup get a page, and removed ones stop resolving.
type Scheduler struct {
	paths  PathRefresher
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(paths PathRefresher, logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger}
	return &Scheduler{
		paths: paths,
		cron: cron.New(
			cron.WithParser(scheduleParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start schedules the path refresh with spec and starts the cron runner.
// An empty spec starts nothing.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.logger.Info("path refresh disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(spec, s.RefreshPaths); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "paths_refresh", spec)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RefreshPaths runs one refresh. Failures keep the previous path set.
func (s *Scheduler) RefreshPaths() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	slugs, err := s.paths.RefreshPaths(ctx)
	if err != nil {
		s.logger.Error("failed to refresh post paths", "error", err)
		return
	}
	s.logger.Info("post paths refreshed", "paths", len(slugs), "duration", time.Since(start))
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
