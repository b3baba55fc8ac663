// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %q, want loopback", cfg.Server.Host)
	}
}

func TestLoadWithKoanfDefaults(t *testing.T) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 8380 {
		t.Errorf("port = %d, want 8380", cfg.Server.Port)
	}
	if cfg.API.MaxPageSize != 1000 {
		t.Errorf("max page size = %d, want 1000", cfg.API.MaxPageSize)
	}
	if !cfg.Geomap.Enabled {
		t.Error("geomap should default to enabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEOIP_DATABASE_PATH", "/data/GeoLite2-City.mmdb")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.GeoIP.DatabasePath != "/data/GeoLite2-City.mmdb" {
		t.Errorf("geoip path = %q", cfg.GeoIP.DatabasePath)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://localhost:3000" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 4242\nlogging:\n  format: console\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("port = %d, want 4242 from file", cfg.Server.Port)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("format = %q, want console from file", cfg.Logging.Format)
	}
	// Unset keys keep defaults.
	if cfg.Server.Timeout != 60*time.Second {
		t.Errorf("timeout = %s, want default 60s", cfg.Server.Timeout)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 4242\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "5151")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 5151 {
		t.Errorf("port = %d, env must override file", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"page size inversion", func(c *Config) { c.API.MaxPageSize = 1 }},
		{"non-http geomap url", func(c *Config) { c.Geomap.APIURL = "ftp://example.com" }},
		{"zero upload limit", func(c *Config) { c.Ingest.MaxUploadBytes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8380}
	if got := s.ListenAddr(); got != "0.0.0.0:8380" {
		t.Errorf("ListenAddr = %q", got)
	}
}

func TestUnmappedEnvVarsIgnored(t *testing.T) {
	if envTransformFunc("PATH") != "" {
		t.Error("PATH must not map to a config key")
	}
	if envTransformFunc("HTTP_PORT") != "server.port" {
		t.Error("HTTP_PORT must map to server.port")
	}
}
