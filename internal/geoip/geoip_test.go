// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package geoip

import "testing"

func TestOpenMissingDatabase(t *testing.T) {
	if _, err := Open("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Error("expected error for missing database file")
	}
}

func TestLookupUnparseableIP(t *testing.T) {
	// An unparseable IP must not reach the reader at all, so a nil
	// reader is fine here.
	r := &Resolver{}
	loc, err := r.Lookup("not-an-ip")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if loc.Found {
		t.Error("Found must be false for unparseable input")
	}
	if loc.IPAddress != "not-an-ip" {
		t.Errorf("IPAddress = %q", loc.IPAddress)
	}
}

func TestLookupClosedResolver(t *testing.T) {
	r := &Resolver{}
	if _, err := r.Lookup("203.0.113.7"); err == nil {
		t.Error("expected error on closed resolver")
	}
}

func TestResolveSkipsFailures(t *testing.T) {
	r := &Resolver{}
	locs := r.Resolve([]string{"203.0.113.7", "garbage"})
	if len(locs) != 1 {
		t.Fatalf("got %d locations, want 1", len(locs))
	}
	if locs[0].IPAddress != "garbage" {
		t.Errorf("surviving location = %q, want the unparseable one", locs[0].IPAddress)
	}
}

func TestCloseIdempotent(t *testing.T) {
	r := &Resolver{}
	if err := r.Close(); err != nil {
		t.Errorf("Close on empty resolver: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
