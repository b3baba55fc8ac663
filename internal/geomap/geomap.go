// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package geomap submits IP lists to the ipinfo.io map tool and returns a
// browser-openable report URL.
//
// This is the only component that sends data off the host, and it only
// runs on an explicit, user-confirmed request; the core pipeline never
// calls it.
package geomap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/ualscope/ualscope/internal/logging"
	"github.com/ualscope/ualscope/internal/metrics"
)

// Mapper produces a shareable map URL for a set of IP addresses.
type Mapper interface {
	MapIPs(ctx context.Context, ips []string) (string, error)
}

const (
	defaultAPIURL  = "https://ipinfo.io/tools/map/cli"
	defaultFormURL = "https://ipinfo.io/tools/map"
)

// Client talks to the ipinfo map endpoints. A circuit breaker guards the
// outbound calls so a degraded upstream fails fast instead of holding
// handler goroutines on timeouts.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	apiURL     string
	formURL    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints overrides the upstream URLs (used in tests).
func WithEndpoints(apiURL, formURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
		c.formURL = formURL
	}
}

// NewClient builds a Client with a 15s timeout and a breaker that opens
// after 3 consecutive failures.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     defaultAPIURL,
		formURL:    defaultFormURL,
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "geomap",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MapIPs submits the newline-separated IP list. The CLI endpoint is tried
// first; when it fails or returns no report URL, the form endpoint takes
// over and the response's final URL is returned.
func (c *Client) MapIPs(ctx context.Context, ips []string) (string, error) {
	if len(ips) == 0 {
		return "", fmt.Errorf("no IP addresses to map")
	}

	reportURL, err := c.breaker.Execute(func() (string, error) {
		return c.submit(ctx, strings.Join(ips, "\n"))
	})
	if err != nil {
		metrics.GeomapRequests.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.GeomapRequests.WithLabelValues("success").Inc()
	return reportURL, nil
}

func (c *Client) submit(ctx context.Context, ipList string) (string, error) {
	reportURL, apiErr := c.submitCLI(ctx, ipList)
	if apiErr == nil && reportURL != "" {
		return reportURL, nil
	}
	if apiErr != nil {
		logging.Warn().Err(apiErr).Msg("Map CLI endpoint failed, falling back to form submission")
	}
	return c.submitForm(ctx, ipList)
}

// submitCLI posts the plain IP list and expects {"reportUrl": "..."}.
func (c *Client) submitCLI(ctx context.Context, ipList string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(ipList))
	if err != nil {
		return "", fmt.Errorf("build map request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("map request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("map request: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		ReportURL string `json:"reportUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode map response: %w", err)
	}
	if result.ReportURL == "" {
		return "", fmt.Errorf("map response carried no report URL")
	}
	return result.ReportURL, nil
}

// submitForm posts the form-encoded fallback and reports the final URL
// after redirects.
func (c *Client) submitForm(ctx context.Context, ipList string) (string, error) {
	form := url.Values{"ips": {ipList}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build form request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("form request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("form request: unexpected status %d", resp.StatusCode)
	}
	return resp.Request.URL.String(), nil
}
