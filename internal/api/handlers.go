// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package api exposes the analysis pipeline over HTTP: CSV upload, filtered
// entry listing, aggregate analytics, exports, the investigation timeline
// and the report renderer. All JSON endpoints answer in the APIResponse
// envelope; exports answer with their native content type.
package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ualscope/ualscope/internal/analyze"
	"github.com/ualscope/ualscope/internal/config"
	"github.com/ualscope/ualscope/internal/export"
	"github.com/ualscope/ualscope/internal/extract"
	"github.com/ualscope/ualscope/internal/filter"
	"github.com/ualscope/ualscope/internal/geoip"
	"github.com/ualscope/ualscope/internal/geomap"
	"github.com/ualscope/ualscope/internal/ingest"
	"github.com/ualscope/ualscope/internal/logging"
	"github.com/ualscope/ualscope/internal/metrics"
	"github.com/ualscope/ualscope/internal/models"
	"github.com/ualscope/ualscope/internal/store"
	"github.com/ualscope/ualscope/internal/timeline"
)

// Handlers carries the shared state every endpoint reads.
type Handlers struct {
	cfg      *config.Config
	store    *store.Store
	timeline *timeline.Timeline
	mapper   geomap.Mapper   // nil when geomap is disabled
	resolver *geoip.Resolver // nil when no database is configured
}

// NewHandlers wires the endpoint set. mapper and resolver may be nil; the
// corresponding endpoints then report the feature as unavailable.
func NewHandlers(cfg *config.Config, st *store.Store, tl *timeline.Timeline, mapper geomap.Mapper, resolver *geoip.Resolver) *Handlers {
	return &Handlers{
		cfg:      cfg,
		store:    st,
		timeline: tl,
		mapper:   mapper,
		resolver: resolver,
	}
}

// UploadLogs handles POST /api/v1/logs: a multipart batch of CSV exports.
// The parsed batch replaces the whole record set.
func (h *Handlers) UploadLogs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Ingest.MaxUploadBytes)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Request is not a valid multipart upload", err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			`Upload must carry at least one file in the "files" field`, nil)
		return
	}
	if len(fileHeaders) > h.cfg.Ingest.MaxFiles {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Too many files in one batch", nil)
		return
	}

	files := make([]ingest.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"Failed to read uploaded file", err)
			return
		}
		defer f.Close()
		files = append(files, ingest.UploadFile{Name: fh.Filename, Reader: f})
	}

	entries, summary, err := ingest.ProcessBatch(files)
	if err != nil {
		var rejected *ingest.ErrBatchRejected
		if errors.As(err, &rejected) {
			metrics.UploadBatches.WithLabelValues("rejected").Inc()
			respondError(w, http.StatusBadRequest, "BATCH_REJECTED", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "VALIDATION_ERROR",
			"Upload batch failed", err)
		return
	}

	h.store.Replace(entries, summary.Files)
	metrics.UploadBatches.WithLabelValues("accepted").Inc()
	respondSuccess(w, http.StatusCreated, summary)
}

// ClearLogs handles DELETE /api/v1/logs.
func (h *Handlers) ClearLogs(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	logging.Info().Msg("Record set cleared")
	respondSuccess(w, http.StatusOK, map[string]interface{}{"cleared": true})
}

// entriesRequest validates the paging parameters of GET /api/v1/logs.
type entriesRequest struct {
	Limit  int `validate:"min=1"`
	Offset int `validate:"min=0"`
}

// ListLogs handles GET /api/v1/logs with filter criteria and paging.
//
// Query parameters: users, workloads, operations, client_ips (comma
// separated), correlation_id, only_risky, search, limit, offset.
func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	req := entriesRequest{
		Limit:  getIntParam(r, "limit", h.cfg.API.DefaultPageSize),
		Offset: getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.Limit > h.cfg.API.MaxPageSize {
		req.Limit = h.cfg.API.MaxPageSize
	}

	q := r.URL.Query()
	criteria := &filter.Criteria{
		Users:         parseCommaSeparated(q.Get("users")),
		Workloads:     parseCommaSeparated(q.Get("workloads")),
		Operations:    parseCommaSeparated(q.Get("operations")),
		ClientIPs:     parseCommaSeparated(q.Get("client_ips")),
		CorrelationID: q.Get("correlation_id"),
		OnlyRisky:     q.Get("only_risky") == "true",
		Search:        q.Get("search"),
	}

	start := time.Now()
	matched := filter.Apply(h.store.Snapshot(), criteria)

	total := len(matched)
	from := req.Offset
	if from > total {
		from = total
	}
	to := from + req.Limit
	if to > total {
		to = total
	}
	page := matched[from:to]
	if page == nil {
		page = []models.LogEntry{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.EntriesResponse{
			Entries: page,
			Pagination: models.PaginationInfo{
				Limit:      req.Limit,
				Offset:     req.Offset,
				HasMore:    to < total,
				TotalCount: total,
			},
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// EntryDetails handles GET /api/v1/logs/{id}/details: the operation-specific
// drill-down for one entry (inbox rule, certificate/secret diff, role
// assignment, user creation, app install, mailbox access context).
func (h *Handlers) EntryDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := h.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No entry with that id", nil)
		return
	}
	respondSuccess(w, http.StatusOK, extract.EntryDetailsFor(&entry))
}

// Facets handles GET /api/v1/logs/facets.
func (h *Handlers) Facets(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, filter.Facets(h.store.Snapshot()))
}

// Stats handles GET /api/v1/logs/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.store.Stats())
}

// AuthBaseline handles GET /api/v1/analytics/auth-baseline.
func (h *Handlers) AuthBaseline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := analyze.AuthBaseline(h.store.Snapshot())
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// IPLogins handles GET /api/v1/analytics/ip-logins?users=a,b.
func (h *Handlers) IPLogins(w http.ResponseWriter, r *http.Request) {
	users := parseCommaSeparated(r.URL.Query().Get("users"))
	start := time.Now()
	stats := analyze.IPLoginStats(h.store.Snapshot(), users)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// MailReads handles GET /api/v1/analytics/mail-reads.
func (h *Handlers) MailReads(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := analyze.MailReadStats(h.store.Snapshot())
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// IPLocations handles GET /api/v1/analytics/ip-locations: offline
// geolocation of the unique login IPs from the local MaxMind database.
func (h *Handlers) IPLocations(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND",
			"No GeoIP database configured; set GEOIP_DATABASE_PATH to enable offline geolocation", nil)
		return
	}

	users := parseCommaSeparated(r.URL.Query().Get("users"))
	ips := analyze.UniqueLoginIPs(h.store.Snapshot(), users)
	respondSuccess(w, http.StatusOK, h.resolver.Resolve(ips))
}

// ExportNDJSON handles GET /api/v1/export/ndjson. Each line is the raw
// AuditData text verbatim, malformed payloads included.
func (h *Handlers) ExportNDJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-data.ndjson"`)
	writeBody(w, export.NDJSON(h.store.Snapshot()))
}

// ExportIPLoginsCSV handles GET /api/v1/export/ip-logins.csv.
func (h *Handlers) ExportIPLoginsCSV(w http.ResponseWriter, r *http.Request) {
	users := parseCommaSeparated(r.URL.Query().Get("users"))
	stats := analyze.IPLoginStats(h.store.Snapshot(), users)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ip-logins.csv"`)
	writeBody(w, export.IPLoginCSV(stats))
}

// ExportMailReadsCSV handles GET /api/v1/export/mail-reads.csv.
func (h *Handlers) ExportMailReadsCSV(w http.ResponseWriter, r *http.Request) {
	stats := analyze.MailReadStats(h.store.Snapshot())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="mail-reads.csv"`)
	writeBody(w, export.MailReadCSV(stats))
}

// ExportIPs handles GET /api/v1/export/ips: the newline-separated unique
// login IP list, ready to paste into a geolocation tool.
func (h *Handlers) ExportIPs(w http.ResponseWriter, r *http.Request) {
	users := parseCommaSeparated(r.URL.Query().Get("users"))
	ips := analyze.UniqueLoginIPs(h.store.Snapshot(), users)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writeBody(w, export.IPList(ips))
}

// ipMapRequest is the body of POST /api/v1/export/ip-map.
type ipMapRequest struct {
	Users []string `json:"users"`
}

// ExportIPMap handles POST /api/v1/export/ip-map. This is the one endpoint
// that pushes data off the host, and only on this explicit request.
func (h *Handlers) ExportIPMap(w http.ResponseWriter, r *http.Request) {
	if h.mapper == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND",
			"Geolocation map submission is disabled", nil)
		return
	}

	var req ipMapRequest
	if r.ContentLength > 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
	}

	ips := analyze.UniqueLoginIPs(h.store.Snapshot(), req.Users)
	if len(ips) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"No login IP addresses in the loaded record set", nil)
		return
	}

	reportURL, err := h.mapper.MapIPs(r.Context(), ips)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR",
			"Geolocation map service failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"report_url": reportURL,
		"ip_count":   len(ips),
	})
}

// ListTimeline handles GET /api/v1/timeline?order=asc|desc.
func (h *Handlers) ListTimeline(w http.ResponseWriter, r *http.Request) {
	dir := timeline.Ascending
	if r.URL.Query().Get("order") == "desc" {
		dir = timeline.Descending
	}
	respondSuccess(w, http.StatusOK, h.timeline.List(dir))
}

// timelineEventRequest validates a new timeline annotation.
type timelineEventRequest struct {
	EntryID   string   `json:"entry_id"`
	Timestamp string   `json:"timestamp"`
	Title     string   `json:"title" validate:"required,max=500"`
	Notes     string   `json:"notes" validate:"max=20000"`
	Tags      []string `json:"tags" validate:"max=50,dive,max=100"`
}

// AddTimelineEvent handles POST /api/v1/timeline.
func (h *Handlers) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var req timelineEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	event := h.timeline.Add(models.TimelineEvent{
		EntryID:   req.EntryID,
		Timestamp: req.Timestamp,
		Title:     req.Title,
		Notes:     req.Notes,
		Tags:      req.Tags,
	})
	respondSuccess(w, http.StatusCreated, event)
}

// DeleteTimelineEvent handles DELETE /api/v1/timeline/{id}.
func (h *Handlers) DeleteTimelineEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.timeline.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// ExportTimeline handles GET /api/v1/timeline/export.
func (h *Handlers) ExportTimeline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.json"`)
	respondSuccess(w, http.StatusOK, h.timeline.Export())
}

// ImportTimeline handles POST /api/v1/timeline/import: replaces the
// timeline with a previously exported event set.
func (h *Handlers) ImportTimeline(w http.ResponseWriter, r *http.Request) {
	var doc models.TimelineExport
	if !decodeJSONBody(w, r, &doc) {
		return
	}

	count := h.timeline.Import(doc)
	respondSuccess(w, http.StatusOK, map[string]interface{}{"imported": count})
}

// Report handles POST /api/v1/report: renders the self-contained HTML
// investigation report from the posted case data.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	var data export.ReportData
	if !decodeJSONBody(w, r, &data) {
		return
	}
	if apiErr := validateRequest(&data); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderReport(&buf, &data); err != nil {
		respondError(w, http.StatusInternalServerError, "VALIDATION_ERROR",
			"Report rendering failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="report.html"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Error().Err(err).Msg("Failed to write report response")
	}
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready as
// soon as it can serve; an empty store is a valid ready state.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"entries": h.store.Len(),
	})
}

func writeBody(w http.ResponseWriter, body string) {
	if _, err := w.Write([]byte(body)); err != nil {
		logging.Error().Err(err).Msg("Failed to write export response")
	}
}
