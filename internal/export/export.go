// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package export renders the record set and analyzer output into the
// downloadable formats: NDJSON of the raw payloads, the two analyst CSVs,
// the newline-separated IP list, and the HTML investigation report.
package export

import (
	"strconv"
	"strings"

	"github.com/ualscope/ualscope/internal/models"
)

// NDJSON writes every entry's raw AuditData text, one JSON document per
// line. Payloads are emitted verbatim: entries whose JSON failed to decode
// at ingest still export their original text.
func NDJSON(entries []models.LogEntry) string {
	var b strings.Builder
	for i := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(entries[i].AuditDataRaw)
	}
	return b.String()
}

// IPList renders unique IPs newline-separated, the shape the geolocation
// map service accepts.
func IPList(ips []string) string {
	return strings.Join(ips, "\n")
}

// mailReadCSVHeader matches the original analyst tooling column layout.
const mailReadCSVHeader = "InternetMessageId,Subject,Workload,Read By,Read Timestamps,Client IP,Folder Path,Size (Bytes)"

// MailReadCSV renders mail read statistics. Multi-valued cells join with
// "; "; all text fields are double-quoted.
func MailReadCSV(stats []models.MailReadStat) string {
	rows := make([]string, 0, len(stats)+1)
	rows = append(rows, mailReadCSVHeader)
	for _, s := range stats {
		rows = append(rows, strings.Join([]string{
			quoteCSV(s.InternetMessageID),
			quoteCSV(s.Subject),
			quoteCSV(s.Workload),
			quoteCSV(strings.Join(s.ReadBy, "; ")),
			quoteCSV(strings.Join(s.ReadTimestamps, "; ")),
			quoteCSV(s.ClientIP),
			quoteCSV(s.FolderPath),
			strconv.FormatInt(s.SizeInBytes, 10),
		}, ","))
	}
	return strings.Join(rows, "\n")
}

const ipLoginCSVHeader = "IP Address,Users,First Seen,Last Seen,Operations,Workloads"

// IPLoginCSV renders per-IP login statistics.
func IPLoginCSV(stats []models.IPLoginStat) string {
	rows := make([]string, 0, len(stats)+1)
	rows = append(rows, ipLoginCSVHeader)
	for _, s := range stats {
		rows = append(rows, strings.Join([]string{
			quoteCSV(s.IPAddress),
			quoteCSV(strings.Join(s.Users, "; ")),
			quoteCSV(s.FirstSeen),
			quoteCSV(s.LastSeen),
			quoteCSV(strings.Join(s.Operations, "; ")),
			quoteCSV(strings.Join(s.Workloads, "; ")),
		}, ","))
	}
	return strings.Join(rows, "\n")
}

// quoteCSV wraps a field in double quotes, doubling any internal quotes.
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
