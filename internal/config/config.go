// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package config provides centralized configuration for all UALscope
// components: the HTTP server, CSV ingest limits, analytics output, the
// optional geomap submission, the optional offline GeoIP database, and
// logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	API     APIConfig     `koanf:"api"`
	Ingest  IngestConfig  `koanf:"ingest"`
	Geomap  GeomapConfig  `koanf:"geomap"`
	GeoIP   GeoIPConfig   `koanf:"geoip"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 127.0.0.1 - local-first by design)
//   - HTTP_PORT: Listen port (default: 8380)
//   - HTTP_TIMEOUT: Read/write timeout (default: 60s)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// APIConfig holds pagination and response limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// IngestConfig holds CSV upload limits.
//
// MaxUploadBytes bounds the total multipart body; audit exports for a
// 90-day window routinely run into the hundreds of megabytes, so the
// default is generous.
type IngestConfig struct {
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
	MaxFiles       int   `koanf:"max_files"`
}

// GeomapConfig controls the ipinfo.io map submission. This is the only
// feature that sends data off the host; it is enabled by default but
// only fires on an explicit analyst request.
type GeomapConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIURL  string `koanf:"api_url"`
	FormURL string `koanf:"form_url"`
}

// GeoIPConfig points at an optional local MaxMind database for fully
// offline IP geolocation. Empty path disables the feature.
type GeoIPConfig struct {
	DatabasePath string `koanf:"database_path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be at least 1, got %d", c.Server.RateLimitReqs)
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Ingest.MaxUploadBytes < 1 {
		return fmt.Errorf("ingest.max_upload_bytes must be positive, got %d", c.Ingest.MaxUploadBytes)
	}
	if c.Ingest.MaxFiles < 1 {
		return fmt.Errorf("ingest.max_files must be at least 1, got %d", c.Ingest.MaxFiles)
	}
	if c.Geomap.Enabled {
		if !strings.HasPrefix(c.Geomap.APIURL, "http://") && !strings.HasPrefix(c.Geomap.APIURL, "https://") {
			return fmt.Errorf("geomap.api_url must be an HTTP(S) URL, got %q", c.Geomap.APIURL)
		}
		if !strings.HasPrefix(c.Geomap.FormURL, "http://") && !strings.HasPrefix(c.Geomap.FormURL, "https://") {
			return fmt.Errorf("geomap.form_url must be an HTTP(S) URL, got %q", c.Geomap.FormURL)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace/debug/info/warn/error/fatal, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port address the HTTP server binds to.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
