// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package metrics defines the Prometheus instrumentation for UALscope.
// All collectors are registered on the default registry via promauto and
// exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestRows counts normalized entries produced across all upload batches.
	IngestRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ualscope_ingest_rows_total",
		Help: "Total CSV rows projected into log entries",
	})

	// IngestPayloadErrors counts rows whose AuditData JSON failed to decode.
	// These rows are kept with an empty payload, not dropped.
	IngestPayloadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ualscope_ingest_payload_errors_total",
		Help: "Rows with malformed AuditData JSON retained with an empty payload",
	})

	// UploadBatches counts upload batches by outcome (accepted, rejected).
	UploadBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ualscope_upload_batches_total",
		Help: "Upload batches by outcome",
	}, []string{"outcome"})

	// FilterDuration observes time spent evaluating the filter engine per query.
	FilterDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ualscope_filter_duration_seconds",
		Help:    "Time spent filtering the in-memory record set",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequests counts API requests by method, route pattern and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ualscope_http_requests_total",
		Help: "HTTP requests by method, route and status class",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ualscope_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// StoreEntries tracks the size of the currently loaded record set.
	StoreEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ualscope_store_entries",
		Help: "Entries currently held in the in-memory store",
	})

	// GeomapRequests counts outbound geolocation map submissions by outcome.
	GeomapRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ualscope_geomap_requests_total",
		Help: "Geolocation map submissions by outcome",
	}, []string{"outcome"})
)
