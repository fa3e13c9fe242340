// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/storyfront/internal/scheduler"
)

// DefaultBanner is shown above the post index when BLOG_BANNER is unset.
const DefaultBanner = "**Medium** is a place to write, read, and connect.\n\n" +
	"It's easy and free to post your thinking on any topic and connect with millions of readers."

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Content store
	SanityProjectID  string        `env:"SANITY_PROJECT_ID,required"`
	SanityDataset    string        `env:"SANITY_DATASET,required"`
	SanityToken      string        `env:"SANITY_API_TOKEN,required"`
	SanityAPIVersion string        `env:"SANITY_API_VERSION" envDefault:"2021-10-21"`
	SanityUseCDN     bool          `env:"SANITY_USE_CDN" envDefault:"false"`
	SanityAPIURL     string        `env:"SANITY_API_URL"` // Optional base URL override
	SanityTimeout    time.Duration `env:"SANITY_TIMEOUT" envDefault:"10s"`

	ServerHost string `env:"BLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOG_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"BLOG_LOG_FORMAT" envDefault:"text"`

	SiteName string `env:"BLOG_SITE_NAME" envDefault:"Medium clone"`
	SiteURL  string `env:"BLOG_SITE_URL"`
	Banner   string `env:"BLOG_BANNER"`

	// Page store
	Revalidate           time.Duration `env:"BLOG_REVALIDATE" envDefault:"10s"`
	PageRetention        time.Duration `env:"BLOG_PAGE_RETENTION" envDefault:"24h"`
	PrerenderConcurrency int           `env:"BLOG_PRERENDER_CONCURRENCY" envDefault:"4"`
	PathsRefresh         string        `env:"BLOG_PATHS_REFRESH"` // Cron spec, empty disables
	RedisURL             string        `env:"BLOG_REDIS_URL"`     // Optional Redis URL for a shared page store
	CachePrefix          string        `env:"BLOG_CACHE_PREFIX" envDefault:"storyfront:"`

	CommentRate    float64       `env:"BLOG_COMMENT_RATE" envDefault:"0.2"`
	CommentBurst   int           `env:"BLOG_COMMENT_BURST" envDefault:"5"`
	RequestTimeout time.Duration `env:"BLOG_REQUEST_TIMEOUT" envDefault:"30s"`
	MetricsEnabled bool          `env:"BLOG_METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// BannerMarkdown returns the configured banner or the built-in one.
func (c Config) BannerMarkdown() string {
	if strings.TrimSpace(c.Banner) == "" {
		return DefaultBanner
	}
	return c.Banner
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Revalidate <= 0 {
		return fmt.Errorf("BLOG_REVALIDATE must be positive, got %s", c.Revalidate)
	}
	if c.PageRetention < c.Revalidate {
		return fmt.Errorf("BLOG_PAGE_RETENTION (%s) must not be shorter than BLOG_REVALIDATE (%s)",
			c.PageRetention, c.Revalidate)
	}
	if c.PrerenderConcurrency < 1 {
		return fmt.Errorf("BLOG_PRERENDER_CONCURRENCY must be at least 1, got %d", c.PrerenderConcurrency)
	}
	if c.CommentRate <= 0 || c.CommentBurst < 1 {
		return fmt.Errorf("BLOG_COMMENT_RATE and BLOG_COMMENT_BURST must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("BLOG_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.PathsRefresh != "" {
		if err := scheduler.ValidateSchedule(c.PathsRefresh); err != nil {
			return fmt.Errorf("BLOG_PATHS_REFRESH: %w", err)
		}
	}
	if c.SanityAPIURL != "" {
		u, err := url.Parse(c.SanityAPIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SANITY_API_URL must be an absolute URL, got %q", c.SanityAPIURL)
		}
	}
	return nil
}
