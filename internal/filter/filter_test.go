// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package filter

import (
	"reflect"
	"testing"

	"github.com/ualscope/ualscope/internal/models"
)

func entry(user, workload, op, correlation, subject string) models.LogEntry {
	e := models.LogEntry{
		UserID:        user,
		Workload:      workload,
		Operation:     op,
		CorrelationID: correlation,
		Subject:       subject,
	}
	e.PrecomputeSearch()
	return e
}

func testEntries() []models.LogEntry {
	entries := []models.LogEntry{
		entry("alice@contoso.com", "Exchange", "New-InboxRule", "corr-1", "forward rule"),
		entry("bob@contoso.com", "SharePoint", "FileAccessed", "corr-2", "budget.xlsx"),
		entry("alice@contoso.com", "AzureActiveDirectory", "UserLoggedIn", "corr-1", ""),
	}
	entries[2].ClientIP = "203.0.113.7"
	entries[2].PrecomputeSearch()
	return entries
}

func TestApply(t *testing.T) {
	entries := testEntries()

	t.Run("empty criteria returns everything", func(t *testing.T) {
		got := Apply(entries, &Criteria{})
		if len(got) != 3 {
			t.Errorf("got %d entries, want all 3", len(got))
		}
	})

	t.Run("user set", func(t *testing.T) {
		got := Apply(entries, &Criteria{Users: []string{"bob@contoso.com"}})
		if len(got) != 1 || got[0].Operation != "FileAccessed" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("criteria AND together", func(t *testing.T) {
		got := Apply(entries, &Criteria{
			Users:     []string{"alice@contoso.com"},
			Workloads: []string{"Exchange"},
		})
		if len(got) != 1 || got[0].Operation != "New-InboxRule" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("correlation id equality", func(t *testing.T) {
		got := Apply(entries, &Criteria{CorrelationID: "corr-1"})
		if len(got) != 2 {
			t.Errorf("got %d entries, want 2", len(got))
		}
	})

	t.Run("client IP set", func(t *testing.T) {
		got := Apply(entries, &Criteria{ClientIPs: []string{"203.0.113.7"}})
		if len(got) != 1 || got[0].Operation != "UserLoggedIn" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("risky only", func(t *testing.T) {
		got := Apply(entries, &Criteria{OnlyRisky: true})
		if len(got) != 1 || got[0].Operation != "New-InboxRule" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		got := Apply(entries, &Criteria{Search: "BUDGET"})
		if len(got) != 1 || got[0].Subject != "budget.xlsx" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		got := Apply(entries, &Criteria{Search: "nothing-here"})
		if len(got) != 0 {
			t.Errorf("got %d entries, want 0", len(got))
		}
	})
}

func TestFacets(t *testing.T) {
	f := Facets(testEntries())

	if !reflect.DeepEqual(f.Users, []string{"alice@contoso.com", "bob@contoso.com"}) {
		t.Errorf("Users = %v", f.Users)
	}
	if !reflect.DeepEqual(f.Operations, []string{"FileAccessed", "New-InboxRule", "UserLoggedIn"}) {
		t.Errorf("Operations = %v", f.Operations)
	}
	if len(f.RiskyOps) == 0 {
		t.Error("RiskyOps must list the watch-list")
	}
}
