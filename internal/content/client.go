// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content is a client for the Sanity-compatible content store that
// holds posts, authors and comments.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olegiv/storyfront/internal/metrics"
)

const (
	// DefaultAPIVersion is the date-form API version used when none is configured.
	DefaultAPIVersion = "2021-10-21"

	defaultTimeout = 10 * time.Second

	// maxResponseSize caps how much of a store response is read.
	maxResponseSize = 8 << 20
)

// Config holds the connection settings for the content store.
type Config struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	UseCDN     bool

	// BaseURL replaces the project API host, e.g. for a self-hosted proxy.
	// When set, UseCDN has no effect.
	BaseURL string

	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the content store. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	token      string
	dataset    string
	projectID  string
	queryURL   string
	mutateURL  string
	images     ImageURLBuilder
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("content: project id is required")
	}
	if cfg.Dataset == "" {
		return nil, errors.New("content: dataset is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	version := "v" + strings.TrimPrefix(cfg.APIVersion, "v")

	apiBase := fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	readBase := apiBase
	if cfg.UseCDN {
		readBase = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	if cfg.BaseURL != "" {
		apiBase = strings.TrimRight(cfg.BaseURL, "/")
		readBase = apiBase
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	dataset := url.PathEscape(cfg.Dataset)
	return &Client{
		httpClient: httpClient,
		token:      cfg.Token,
		dataset:    cfg.Dataset,
		projectID:  cfg.ProjectID,
		queryURL:   fmt.Sprintf("%s/%s/data/query/%s", readBase, version, dataset),
		mutateURL:  fmt.Sprintf("%s/%s/data/mutate/%s", apiBase, version, dataset),
		images:     NewImageURLBuilder(cfg.ProjectID, cfg.Dataset),
	}, nil
}

// Images returns the URL builder for this client's project and dataset.
func (c *Client) Images() ImageURLBuilder {
	return c.images
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

type storeError struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

func (e storeError) description() string {
	if e.Error.Description != "" {
		return e.Error.Description
	}
	return e.Message
}

// Query runs a GROQ query and decodes its result into out. Params are sent as
// JSON-encoded $name query parameters. A null result leaves out untouched.
func (c *Client) Query(ctx context.Context, op, query string, params map[string]any, out any) (err error) {
	track := metrics.TrackContent(op)
	defer func() { track(err) }()

	q := url.Values{}
	q.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return &QueryError{Op: op, Err: fmt.Errorf("encoding param %s: %w", name, err)}
		}
		q.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+q.Encode(), nil)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}

	status, body, err := c.do(req)
	if err != nil {
		return &QueryError{Op: op, StatusCode: status, Err: err}
	}
	if status < 200 || status > 299 {
		return &QueryError{Op: op, StatusCode: status, Description: errorDescription(body)}
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &QueryError{Op: op, StatusCode: status, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return &QueryError{Op: op, StatusCode: status, Err: fmt.Errorf("decoding result: %w", err)}
	}
	return nil
}

type mutationResult struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
}

type mutateResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []mutationResult `json:"results"`
}

// mutate posts a batch of mutations and returns the affected document ids.
func (c *Client) mutate(ctx context.Context, op string, mutations []map[string]any) (ids []string, err error) {
	track := metrics.TrackContent(op)
	defer func() { track(err) }()

	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, &WriteError{Op: op, Err: fmt.Errorf("encoding mutations: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.mutateURL+"?returnIds=true&visibility=sync", bytes.NewReader(payload))
	if err != nil {
		return nil, &WriteError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, &WriteError{Op: op, StatusCode: status, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &WriteError{Op: op, StatusCode: status, Description: errorDescription(body)}
	}

	var resp mutateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &WriteError{Op: op, StatusCode: status, Err: fmt.Errorf("decoding response: %w", err)}
	}

	ids = make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func errorDescription(body []byte) string {
	var se storeError
	if err := json.Unmarshal(body, &se); err == nil {
		if d := se.description(); d != "" {
			return d
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
