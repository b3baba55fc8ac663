// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package timeline

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/ualscope/ualscope/internal/models"
)

func TestAddAssignsIDAndCreatedAt(t *testing.T) {
	tl := New()
	e := tl.Add(models.TimelineEvent{Title: "initial access", Timestamp: "2024-03-01T10:00:00"})
	if e.ID == "" {
		t.Error("ID must be assigned")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt must be stamped")
	}
}

func TestListSortsChronologically(t *testing.T) {
	tl := New()
	tl.Add(models.TimelineEvent{Title: "later", Timestamp: "2024-03-02T10:00:00"})
	tl.Add(models.TimelineEvent{Title: "earlier", Timestamp: "2024-03-01T10:00:00"})
	tl.Add(models.TimelineEvent{Title: "undated", Timestamp: "garbage"})

	asc := tl.List(Ascending)
	if asc[0].Title != "undated" || asc[1].Title != "earlier" || asc[2].Title != "later" {
		t.Errorf("asc order = %s, %s, %s", asc[0].Title, asc[1].Title, asc[2].Title)
	}

	desc := tl.List(Descending)
	if desc[0].Title != "later" {
		t.Errorf("desc order starts with %s", desc[0].Title)
	}
}

func TestDelete(t *testing.T) {
	tl := New()
	e := tl.Add(models.TimelineEvent{Title: "x", Timestamp: "2024-03-01T10:00:00"})

	if err := tl.Delete(e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tl.Delete(e.ID); err == nil {
		t.Error("expected error deleting a missing event")
	}
	if len(tl.List(Ascending)) != 0 {
		t.Error("timeline should be empty")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	tl := New()
	tl.Add(models.TimelineEvent{Title: "a", Notes: "first", Timestamp: "2024-03-01T10:00:00", Tags: []string{"access"}})
	tl.Add(models.TimelineEvent{Title: "b", Notes: "second", Timestamp: "2024-03-02T10:00:00"})

	export := tl.Export()

	// Through JSON, like the HTTP round-trip.
	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded models.TimelineExport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := New()
	if n := restored.Import(decoded); n != 2 {
		t.Fatalf("Import returned %d", n)
	}

	orig := tl.List(Ascending)
	back := restored.List(Ascending)
	if len(back) != len(orig) {
		t.Fatalf("event count mismatch: %d vs %d", len(back), len(orig))
	}
	for i := range orig {
		if back[i].ID != orig[i].ID || back[i].Notes != orig[i].Notes || back[i].Timestamp != orig[i].Timestamp {
			t.Errorf("event %d changed in round-trip: %+v vs %+v", i, back[i], orig[i])
		}
	}
}
