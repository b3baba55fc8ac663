// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package store

import (
	"sync"
	"testing"

	"github.com/ualscope/ualscope/internal/models"
)

func TestStoreReplaceAndClear(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Fatal("new store must be empty")
	}

	entries := []models.LogEntry{
		{ID: "1", Operation: "New-InboxRule"},
		{ID: "2", Operation: "FileAccessed"},
	}
	files := []models.FileSummary{{Name: "a.csv", Rows: 2}}
	s.Replace(entries, files)

	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}

	stats := s.Stats()
	if stats.TotalEntries != 2 || stats.RiskyEntries != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LoadedAt == "" {
		t.Error("LoadedAt must be set after Replace")
	}
	if len(stats.Files) != 1 || stats.Files[0].Name != "a.csv" {
		t.Errorf("Files = %v", stats.Files)
	}

	s.Clear()
	if s.Len() != 0 || s.Stats().LoadedAt != "" {
		t.Error("Clear must empty the store")
	}
}

func TestGet(t *testing.T) {
	s := New()
	s.Replace([]models.LogEntry{
		{ID: "1", Operation: "UserLoggedIn"},
		{ID: "2", Operation: "Add user."},
	}, nil)

	entry, ok := s.Get("2")
	if !ok || entry.Operation != "Add user." {
		t.Errorf("Get(2) = %+v, %v", entry, ok)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get must report a missing id")
	}
}

func TestSnapshotSurvivesReplace(t *testing.T) {
	s := New()
	s.Replace([]models.LogEntry{{ID: "old"}}, nil)

	snap := s.Snapshot()
	s.Replace([]models.LogEntry{{ID: "new-1"}, {ID: "new-2"}}, nil)

	if len(snap) != 1 || snap[0].ID != "old" {
		t.Errorf("snapshot changed under reader: %+v", snap)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d after replace", s.Len())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Replace([]models.LogEntry{{ID: "x"}}, nil)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.Stats()
		}()
	}
	wg.Wait()
}
