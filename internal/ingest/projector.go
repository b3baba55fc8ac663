// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package ingest

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ualscope/ualscope/internal/extract"
	"github.com/ualscope/ualscope/internal/logging"
	"github.com/ualscope/ualscope/internal/metrics"
	"github.com/ualscope/ualscope/internal/models"
)

// rowField returns the first non-empty value among the given header names.
// UAL exports are inconsistent between singular and plural column names
// depending on the export path (portal download vs Search-UnifiedAuditLog).
func rowField(row RawRow, names ...string) string {
	for _, name := range names {
		if v := row[name]; v != "" {
			return v
		}
	}
	return ""
}

// Project builds a normalized LogEntry from a CSV row. The embedded
// AuditData JSON is decoded here; when it is malformed the entry keeps an
// empty payload and the raw text, and the failure is logged and counted
// rather than dropping the row.
func Project(row RawRow, sourceFile string) models.LogEntry {
	raw := rowField(row, "AuditData")

	var payload models.AuditPayload
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			logging.Warn().
				Err(err).
				Str("file", sourceFile).
				Msg("Failed to decode AuditData, keeping row with empty payload")
			metrics.IngestPayloadErrors.Inc()
			payload = models.AuditPayload{}
		}
	}

	entry := models.LogEntry{
		ID:         uuid.NewString(),
		SourceFile: sourceFile,

		CreationDate: rowField(row, "CreationDate", "CreationTime"),
		UserID:       rowField(row, "UserId", "UserIds"),
		UserKey:      rowField(row, "UserKey"),
		Operation:    rowField(row, "Operation", "Operations"),

		FileName:      payload.ObjectID,
		Subject:       payload.Subject,
		MessageID:     payload.BestMessageID(),
		ClientIP:      payload.ClientAddress(),
		CorrelationID: payload.Correlation(),

		UserAgent:    payload.UserAgent,
		AuditDataRaw: raw,
		Payload:      payload,
	}

	// TimeGenerated carries CreationDate verbatim; display formatting and
	// chronological comparison both happen downstream.
	entry.TimeGenerated = entry.CreationDate

	entry.Workload = payload.Workload
	if entry.Workload == "" {
		entry.Workload = rowField(row, "Workload")
	}
	if entry.Workload == "" {
		entry.Workload = models.WorkloadUnknown
	}

	entry.ModifiedProperties = prettyModifiedProperties(payload.ModifiedProperties)

	if models.IsInboxRuleOperation(entry.Operation) {
		entry.RuleDetails = ruleDetails(&payload)
	}

	if payload.UserAgent != "" {
		entry.UserAgentInfo = extract.ParseUserAgent(payload.UserAgent)
	}

	entry.PrecomputeSearch()
	metrics.IngestRows.Inc()
	return entry
}

// ruleDetails picks the extractor variant by which payload field is
// present. ModifiedProperties wins; a present-but-malformed value yields
// no details rather than falling through to Parameters.
func ruleDetails(payload *models.AuditPayload) *models.RuleDetails {
	switch {
	case rawPresent(payload.ModifiedProperties):
		if pairs, ok := payload.ModifiedPropertyPairs(); ok {
			return extract.RuleDetailsFromModifiedProperties(pairs)
		}
	case rawPresent(payload.Parameters):
		if pairs, ok := payload.ParameterPairs(); ok {
			return extract.RuleDetailsFromParameters(pairs)
		}
	}
	return nil
}

func rawPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// prettyModifiedProperties re-indents the ModifiedProperties JSON for
// display, or returns "N/A" when the payload carries none.
func prettyModifiedProperties(raw json.RawMessage) string {
	if !rawPresent(raw) {
		return models.ValueNotAvailable
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
