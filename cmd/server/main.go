// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package main is the entry point for the UALscope server.
//
// UALscope is a local-first analysis tool for Microsoft 365 Unified Audit
// Log CSV exports. Analysts upload the CSV files exported from the Purview
// portal; UALscope normalizes the embedded AuditData JSON into a uniform
// record set held entirely in memory, and serves filtering, sign-in
// baselines, mail-read statistics, exports and an investigation timeline
// over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml, env vars)
//  2. Logging: zerolog via the internal wrapper
//  3. GeoIP: optional local MaxMind database for offline IP geolocation
//  4. Geomap: optional ipinfo.io map submission client
//  5. Store and timeline: empty in-memory state
//  6. HTTP server: chi router under a suture supervision tree
//
// There is no database and no persistence: an upload replaces the whole
// record set and a restart starts empty. Nothing leaves the host except
// the explicit POST /api/v1/export/ip-map submission.
//
// # Example Usage
//
// Local analysis session on the default loopback address:
//
//	./ualscope
//	curl -F "files=@AuditLog_2024.csv" http://127.0.0.1:8380/api/v1/logs
//
// With offline geolocation:
//
//	export GEOIP_DATABASE_PATH=/data/GeoLite2-City.mmdb
//	./ualscope
//
// Fully offline (no map submissions possible at all):
//
//	export GEOMAP_ENABLED=false
//	./ualscope
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections and drains in-flight requests within the
// configured shutdown timeout.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ualscope/ualscope/internal/api"
	"github.com/ualscope/ualscope/internal/config"
	"github.com/ualscope/ualscope/internal/geoip"
	"github.com/ualscope/ualscope/internal/geomap"
	"github.com/ualscope/ualscope/internal/logging"
	"github.com/ualscope/ualscope/internal/store"
	"github.com/ualscope/ualscope/internal/supervisor"
	"github.com/ualscope/ualscope/internal/timeline"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.ListenAddr()).
		Bool("geomap_enabled", cfg.Geomap.Enabled).
		Msg("Starting UALscope")

	var resolver *geoip.Resolver
	if cfg.GeoIP.DatabasePath != "" {
		resolver, err = geoip.Open(cfg.GeoIP.DatabasePath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.GeoIP.DatabasePath).Msg("Failed to open GeoIP database")
		}
		defer func() {
			if err := resolver.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing GeoIP database")
			}
		}()
		logging.Info().Str("path", cfg.GeoIP.DatabasePath).Msg("GeoIP database loaded")
	} else {
		logging.Info().Msg("No GeoIP database configured - offline geolocation disabled")
	}

	var mapper geomap.Mapper
	if cfg.Geomap.Enabled {
		mapper = geomap.NewClient(geomap.WithEndpoints(cfg.Geomap.APIURL, cfg.Geomap.FormURL))
	} else {
		logging.Info().Msg("Geolocation map submission disabled - nothing will leave this host")
	}

	st := store.New()
	tl := timeline.New()
	handlers := api.NewHandlers(cfg, st, tl, mapper, resolver)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("UALscope stopped gracefully")
}
