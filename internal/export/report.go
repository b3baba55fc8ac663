// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ualscope/ualscope/internal/analyze"
	"github.com/ualscope/ualscope/internal/models"
)

// ReportSection is one freeform analysis block of the investigation report.
type ReportSection struct {
	Heading string `json:"heading" validate:"required,max=200"`
	Body    string `json:"body" validate:"max=20000"`
}

// ReportData is everything the HTML investigation report renders.
type ReportData struct {
	Title       string                 `json:"title" validate:"required,max=200"`
	CaseID      string                 `json:"case_id" validate:"max=100"`
	Analyst     string                 `json:"analyst" validate:"max=200"`
	GeneratedAt time.Time              `json:"generated_at"`
	Sections    []ReportSection        `json:"sections" validate:"dive"`
	Events      []models.TimelineEvent `json:"events"`
}

// reportTemplate is self-contained: inline styles, no external assets, so
// the report file can be attached to a case as-is.
var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"displayTime": analyze.FormatDisplay,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1e293b; }
h1 { border-bottom: 2px solid #2563eb; padding-bottom: 0.5rem; }
h2 { color: #1d4ed8; margin-top: 2rem; }
.meta { color: #64748b; font-size: 0.9rem; }
.event { border: 1px solid #e2e8f0; border-radius: 0.5rem; padding: 0.75rem 1rem; margin: 0.75rem 0; }
.event .time { color: #64748b; font-size: 0.85rem; }
.tag { display: inline-block; background: #eff6ff; color: #1d4ed8; border-radius: 0.75rem; padding: 0.1rem 0.6rem; font-size: 0.8rem; margin-right: 0.3rem; }
.notes { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">
{{- if .CaseID}}Case {{.CaseID}} &middot; {{end -}}
{{- if .Analyst}}Analyst: {{.Analyst}} &middot; {{end -}}
Generated {{.GeneratedAt.Format "Jan 2, 2006 15:04 MST"}}</p>

{{range .Sections}}
<h2>{{.Heading}}</h2>
<p class="notes">{{.Body}}</p>
{{end}}

{{if .Events}}
<h2>Timeline</h2>
{{range .Events}}
<div class="event">
<div class="time">{{displayTime .Timestamp}}</div>
<strong>{{.Title}}</strong>
{{if .Tags}}<div>{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
{{if .Notes}}<p class="notes">{{.Notes}}</p>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`))

// RenderReport writes the HTML investigation report. All analyst-supplied
// text passes through html/template's contextual escaping.
func RenderReport(w io.Writer, data *ReportData) error {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
