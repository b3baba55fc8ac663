// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package models

import "time"

// TimelineEvent is an analyst-curated annotation pinned to an audit entry.
// Timestamp carries the annotated entry's TimeGenerated string so events
// sort chronologically alongside the raw log.
type TimelineEvent struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id,omitempty"`
	Timestamp string    `json:"timestamp"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineExport is the JSON document produced by a timeline export and
// accepted back on import. Re-importing an export reproduces the same
// event set; ordering is reapplied by the active sort direction.
type TimelineExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Events     []TimelineEvent `json:"events"`
}
