// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the chi router with the full middleware stack and
// every API route.
func NewRouter(h *Handlers) http.Handler {
	mw := &MiddlewareConfig{
		CORSAllowedOrigins: h.cfg.Server.CORSOrigins,
		RateLimitRequests:  h.cfg.Server.RateLimitReqs,
		RateLimitWindow:    h.cfg.Server.RateLimitWindow,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics())
	r.Use(SecurityHeaders())
	r.Use(mw.CORS())
	r.Use(mw.RateLimit())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/logs", func(r chi.Router) {
			r.Post("/", h.UploadLogs)
			r.Delete("/", h.ClearLogs)
			r.Get("/", h.ListLogs)
			r.Get("/facets", h.Facets)
			r.Get("/stats", h.Stats)
			r.Get("/{id}/details", h.EntryDetails)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/auth-baseline", h.AuthBaseline)
			r.Get("/ip-logins", h.IPLogins)
			r.Get("/mail-reads", h.MailReads)
			r.Get("/ip-locations", h.IPLocations)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/ndjson", h.ExportNDJSON)
			r.Get("/ip-logins.csv", h.ExportIPLoginsCSV)
			r.Get("/mail-reads.csv", h.ExportMailReadsCSV)
			r.Get("/ips", h.ExportIPs)
			r.Post("/ip-map", h.ExportIPMap)
		})

		r.Route("/timeline", func(r chi.Router) {
			r.Get("/", h.ListTimeline)
			r.Post("/", h.AddTimelineEvent)
			r.Delete("/{id}", h.DeleteTimelineEvent)
			r.Get("/export", h.ExportTimeline)
			r.Post("/import", h.ImportTimeline)
		})

		r.Post("/report", h.Report)

		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
