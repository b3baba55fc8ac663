// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package filter evaluates analyst queries over the normalized record set.
// All criteria compose with AND; an empty criterion never restricts.
package filter

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ualscope/ualscope/internal/metrics"
	"github.com/ualscope/ualscope/internal/models"
)

// Criteria describes one query over the record set.
//
// The multi-value sets match the entry's user (UserId with UserKey
// fallback), workload and operation; an empty set means no restriction.
// CorrelationID is exact equality. OnlyRisky keeps only watch-listed
// operations. Search is a case-insensitive substring match over the
// precomputed search projection.
type Criteria struct {
	Users         []string `json:"users,omitempty"`
	Workloads     []string `json:"workloads,omitempty"`
	Operations    []string `json:"operations,omitempty"`
	ClientIPs     []string `json:"client_ips,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
	OnlyRisky     bool     `json:"only_risky,omitempty"`
	Search        string   `json:"search,omitempty"`
}

// Empty reports whether the criteria restrict anything at all.
func (c *Criteria) Empty() bool {
	return len(c.Users) == 0 && len(c.Workloads) == 0 && len(c.Operations) == 0 &&
		len(c.ClientIPs) == 0 && c.CorrelationID == "" && !c.OnlyRisky && c.Search == ""
}

type compiled struct {
	users       map[string]struct{}
	workloads   map[string]struct{}
	operations  map[string]struct{}
	clientIPs   map[string]struct{}
	correlation string
	onlyRisky   bool
	search      string
}

func compile(c *Criteria) *compiled {
	return &compiled{
		users:       toSet(c.Users),
		workloads:   toSet(c.Workloads),
		operations:  toSet(c.Operations),
		clientIPs:   toSet(c.ClientIPs),
		correlation: c.CorrelationID,
		onlyRisky:   c.OnlyRisky,
		search:      strings.ToLower(c.Search),
	}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func (q *compiled) matches(e *models.LogEntry) bool {
	if q.users != nil {
		if _, ok := q.users[e.User()]; !ok {
			return false
		}
	}
	if q.workloads != nil {
		if _, ok := q.workloads[e.Workload]; !ok {
			return false
		}
	}
	if q.operations != nil {
		if _, ok := q.operations[e.Operation]; !ok {
			return false
		}
	}
	if q.clientIPs != nil {
		if _, ok := q.clientIPs[e.ClientIP]; !ok {
			return false
		}
	}
	if q.correlation != "" && e.CorrelationID != q.correlation {
		return false
	}
	if q.onlyRisky && !models.IsRiskyOperation(e.Operation) {
		return false
	}
	return e.MatchesSearch(q.search)
}

// Apply returns the entries matching the criteria, preserving input order.
func Apply(entries []models.LogEntry, c *Criteria) []models.LogEntry {
	timer := prometheus.NewTimer(metrics.FilterDuration)
	defer timer.ObserveDuration()

	if c == nil || c.Empty() {
		return entries
	}

	q := compile(c)
	var matched []models.LogEntry
	for i := range entries {
		if q.matches(&entries[i]) {
			matched = append(matched, entries[i])
		}
	}
	return matched
}

// Facets lists the distinct users, workloads and operations present in the
// record set, sorted, for the filter dropdowns. The risky watch-list rides
// along so clients can mark dangerous operations.
func Facets(entries []models.LogEntry) models.Facets {
	users := make(map[string]struct{})
	workloads := make(map[string]struct{})
	operations := make(map[string]struct{})

	for i := range entries {
		e := &entries[i]
		if u := e.User(); u != "" {
			users[u] = struct{}{}
		}
		if e.Workload != "" {
			workloads[e.Workload] = struct{}{}
		}
		if e.Operation != "" {
			operations[e.Operation] = struct{}{}
		}
	}

	return models.Facets{
		Users:      sortedKeys(users),
		Workloads:  sortedKeys(workloads),
		Operations: sortedKeys(operations),
		RiskyOps:   models.RiskyOperations,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
