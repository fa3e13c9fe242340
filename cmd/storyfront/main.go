// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/storyfront/internal/cache"
	"github.com/olegiv/storyfront/internal/config"
	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/handler"
	"github.com/olegiv/storyfront/internal/isr"
	"github.com/olegiv/storyfront/internal/logging"
	"github.com/olegiv/storyfront/internal/render"
	"github.com/olegiv/storyfront/internal/scheduler"
	"github.com/olegiv/storyfront/internal/seo"
	"github.com/olegiv/storyfront/internal/service"
	"github.com/olegiv/storyfront/internal/session"
	"github.com/olegiv/storyfront/internal/version"
	"github.com/olegiv/storyfront/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const siteDescription = "Stories, ideas and comments from our writers."

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "storyfront - server-rendered blog front end\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_PROJECT_ID      Content store project (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_DATASET         Content store dataset (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_API_TOKEN       Token with write access for comments (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_REVALIDATE        Post page revalidation window (default: 10s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_PATHS_REFRESH     Cron schedule for re-listing post paths (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_REDIS_URL         Redis URL for a shared page store (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("storyfront %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger, err := logging.New(os.Stdout, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	slog.SetDefault(logger)
	logger.Info("starting storyfront", "version", versionInfo.String(), "env", cfg.Env)

	client, err := content.NewClient(content.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		Token:      cfg.SanityToken,
		APIVersion: cfg.SanityAPIVersion,
		UseCDN:     cfg.SanityUseCDN,
		BaseURL:    cfg.SanityAPIURL,
		Timeout:    cfg.SanityTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating content client: %w", err)
	}

	pageCache, err := cache.Open(context.Background(), cache.Config{
		RedisURL:      cfg.RedisURL,
		Prefix:        cfg.CachePrefix,
		DefaultTTL:    cfg.PageRetention,
		SweepInterval: time.Minute,
	})
	if err != nil {
		// A shared store is an optimisation; a single instance works without it.
		logger.Warn("page store unavailable, using memory", "url", cfg.RedisURL, "error", err)
		pageCache = cache.NewMemory(cache.MemoryOptions{
			DefaultTTL:    cfg.PageRetention,
			SweepInterval: time.Minute,
		})
	}
	defer func() { _ = pageCache.Close() }()
	logger.Info("page store initialized", "backend", cache.Backend(pageCache))

	pages := isr.New[content.Post](pageCache, isr.Options{
		Revalidate: cfg.Revalidate,
		Retention:  cfg.PageRetention,
		Logger:     logger,
	})
	defer pages.Close()

	posts := service.NewPostService(client, pages, logger, cfg.PrerenderConcurrency)

	buildCtx, cancelBuild := context.WithTimeout(context.Background(), 5*time.Minute)
	report, err := posts.Build(buildCtx)
	cancelBuild()
	if err != nil {
		return fmt.Errorf("pre-rendering posts: %w", err)
	}
	logger.Info("post pages pre-rendered",
		"paths", report.Paths,
		"generated", report.Generated,
		"failed", report.Failed,
		"duration", report.Duration,
	)

	comments := service.NewCommentService(client, posts, logger)

	sessionManager := session.New(cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
		Images:         client.Images(),
		Site: seo.SiteConfig{
			SiteName:        cfg.SiteName,
			SiteURL:         cfg.SiteURL,
			SiteDescription: siteDescription,
		},
		Banner: cfg.BannerMarkdown(),
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	frontendHandler := handler.NewFrontendHandler(posts, renderer, logger)
	commentHandler := handler.NewCommentHandler(comments, frontendHandler, renderer, logger)
	healthHandler := handler.NewHealthHandler(client, pageCache, posts, versionInfo)

	r, err := newRouter(routerDeps{
		Frontend:       frontendHandler,
		Comments:       commentHandler,
		Health:         healthHandler,
		Sessions:       sessionManager,
		IsDev:          cfg.IsDevelopment(),
		SiteURL:        cfg.SiteURL,
		Port:           cfg.ServerPort,
		Revalidate:     cfg.Revalidate,
		RequestTimeout: cfg.RequestTimeout,
		MetricsEnabled: cfg.MetricsEnabled,
		CommentRate:    cfg.CommentRate,
		CommentBurst:   cfg.CommentBurst,
	})
	if err != nil {
		return err
	}

	sched := scheduler.New(posts, logger)
	if err := sched.Start(cfg.PathsRefresh); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
