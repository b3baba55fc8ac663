// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package timeline manages the analyst-curated investigation timeline:
// annotations pinned to audit entries, exportable to JSON and importable
// back without loss.
package timeline

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ualscope/ualscope/internal/analyze"
	"github.com/ualscope/ualscope/internal/models"
)

// Direction selects the chronological sort order of a timeline listing.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Timeline holds the event annotations for the current investigation.
// Like the record store it is in-memory only and process-scoped.
type Timeline struct {
	mu     sync.RWMutex
	events map[string]models.TimelineEvent
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{events: make(map[string]models.TimelineEvent)}
}

// Add stores a new event. A missing id is assigned; CreatedAt is stamped
// when absent so imported events keep their original creation time.
func (t *Timeline) Add(event models.TimelineEvent) models.TimelineEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	t.events[event.ID] = event
	return event
}

// Delete removes an event by id.
func (t *Timeline) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.events[id]; !ok {
		return fmt.Errorf("timeline event %q not found", id)
	}
	delete(t.events, id)
	return nil
}

// List returns the events sorted chronologically by their timestamp
// string. Events whose timestamp does not parse sort as the earliest
// possible instant but keep their display text.
func (t *Timeline) List(dir Direction) []models.TimelineEvent {
	t.mu.RLock()
	events := make([]models.TimelineEvent, 0, len(t.events))
	for _, e := range t.events {
		events = append(events, e)
	}
	t.mu.RUnlock()

	sortEvents(events, dir)
	return events
}

// Export snapshots the full event set for download.
func (t *Timeline) Export() models.TimelineExport {
	return models.TimelineExport{
		ExportedAt: time.Now(),
		Events:     t.List(Ascending),
	}
}

// Import replaces the timeline with a previously exported event set.
// Event ids, timestamps and notes are preserved so an export/import
// round-trip reproduces the identical timeline.
func (t *Timeline) Import(export models.TimelineExport) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = make(map[string]models.TimelineEvent, len(export.Events))
	for _, e := range export.Events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		t.events[e.ID] = e
	}
	return len(t.events)
}

func sortEvents(events []models.TimelineEvent, dir Direction) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, _ := analyze.ParseTimestamp(events[i].Timestamp)
		tj, _ := analyze.ParseTimestamp(events[j].Timestamp)
		if ti.Equal(tj) {
			return events[i].ID < events[j].ID
		}
		if dir == Descending {
			return tj.Before(ti)
		}
		return ti.Before(tj)
	})
}
