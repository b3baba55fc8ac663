// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package analyze builds aggregate views over the normalized record set:
// the per-IP/per-user authentication baseline, IP login statistics, and
// MailItemsAccessed read statistics.
//
// All analyzers are pure functions over a snapshot slice; they never
// mutate entries and are safe to run concurrently with each other.
package analyze

import (
	"sort"
	"time"
)

// timestampLayouts are tried in order when parsing a TimeGenerated string.
// UAL exports vary by export path and tenant locale.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a UAL timestamp string, trying each known layout.
// The second return is false when no layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortChronological sorts timestamp strings by their parsed instant.
// Unparseable strings keep the zero-time sentinel and therefore sort
// first; their display text is never altered. The sort is stable so equal
// and unparseable timestamps keep their relative input order.
func SortChronological(timestamps []string) {
	sort.SliceStable(timestamps, func(i, j int) bool {
		ti, _ := ParseTimestamp(timestamps[i])
		tj, _ := ParseTimestamp(timestamps[j])
		return ti.Before(tj)
	})
}

// FormatDisplay renders a timestamp for reports. When the string cannot
// be parsed it is returned unchanged rather than dropped or zeroed.
func FormatDisplay(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006, 03:04:05 PM")
}
