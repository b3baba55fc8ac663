// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package store holds the in-memory record set for the process lifetime.
// There is no persistence: an upload batch replaces the entire set, and a
// restart starts empty.
package store

import (
	"sync"
	"time"

	"github.com/ualscope/ualscope/internal/metrics"
	"github.com/ualscope/ualscope/internal/models"
)

// Store is the single in-memory holder of normalized entries.
//
// Writers replace the slice wholesale and never mutate entries in place,
// so a snapshot taken under the read lock stays valid for as long as a
// reader needs it, even across a concurrent upload.
type Store struct {
	mu       sync.RWMutex
	entries  []models.LogEntry
	files    []models.FileSummary
	loadedAt time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Replace swaps in a freshly ingested record set.
func (s *Store) Replace(entries []models.LogEntry, files []models.FileSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.files = files
	s.loadedAt = time.Now()
	metrics.StoreEntries.Set(float64(len(entries)))
}

// Clear drops the record set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.files = nil
	s.loadedAt = time.Time{}
	metrics.StoreEntries.Set(0)
}

// Snapshot returns the current record set. The returned slice must be
// treated as read-only; it is shared with other readers.
func (s *Store) Snapshot() []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (models.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			return s.entries[i], true
		}
	}
	return models.LogEntry{}, false
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats summarizes the loaded record set for the stats endpoint.
func (s *Store) Stats() models.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	risky := 0
	for i := range s.entries {
		if models.IsRiskyOperation(s.entries[i].Operation) {
			risky++
		}
	}

	stats := models.StoreStats{
		TotalEntries: len(s.entries),
		RiskyEntries: risky,
		Files:        s.files,
	}
	if !s.loadedAt.IsZero() {
		stats.LoadedAt = s.loadedAt.Format(time.RFC3339)
	}
	return stats
}
