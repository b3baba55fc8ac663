// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package analyze

import (
	"sort"

	"github.com/ualscope/ualscope/internal/models"
)

type ipAccumulator struct {
	users      map[string]struct{}
	timestamps []string
	operations map[string]struct{}
	workloads  map[string]struct{}
	count      int
}

// IPLoginStats aggregates sign-in activity per source IP. Only login
// operations count; when users is non-empty, entries from other users are
// excluded (matching against UserId with UserKey fallback). Entries with
// no client IP are skipped. Results order by IP address.
func IPLoginStats(entries []models.LogEntry, users []string) []models.IPLoginStat {
	userSet := make(map[string]struct{}, len(users))
	for _, u := range users {
		userSet[u] = struct{}{}
	}

	acc := make(map[string]*ipAccumulator)

	for i := range entries {
		e := &entries[i]
		if !models.IsLoginOperation(e.Operation) {
			continue
		}
		if len(userSet) > 0 {
			user := e.User()
			if user == "" {
				continue
			}
			if _, ok := userSet[user]; !ok {
				continue
			}
		}
		if e.ClientIP == "" {
			continue
		}

		a := acc[e.ClientIP]
		if a == nil {
			a = &ipAccumulator{
				users:      make(map[string]struct{}),
				operations: make(map[string]struct{}),
				workloads:  make(map[string]struct{}),
			}
			acc[e.ClientIP] = a
		}
		a.count++
		if user := e.User(); user != "" {
			a.users[user] = struct{}{}
		}
		if e.TimeGenerated != "" {
			a.timestamps = append(a.timestamps, e.TimeGenerated)
		}
		a.operations[e.Operation] = struct{}{}
		if e.Workload != "" {
			a.workloads[e.Workload] = struct{}{}
		}
	}

	stats := make([]models.IPLoginStat, 0, len(acc))
	for ip, a := range acc {
		SortChronological(a.timestamps)
		stat := models.IPLoginStat{
			IPAddress:  ip,
			Users:      sortedKeys(a.users),
			FirstSeen:  models.ValueNotAvailable,
			LastSeen:   models.ValueNotAvailable,
			Operations: sortedKeys(a.operations),
			Workloads:  sortedKeys(a.workloads),
			Count:      a.count,
		}
		if len(a.timestamps) > 0 {
			stat.FirstSeen = a.timestamps[0]
			stat.LastSeen = a.timestamps[len(a.timestamps)-1]
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].IPAddress < stats[j].IPAddress
	})

	return stats
}

// UniqueLoginIPs lists the distinct client IPs seen on login operations,
// optionally restricted to the given users. This feeds the geolocation
// map export.
func UniqueLoginIPs(entries []models.LogEntry, users []string) []string {
	userSet := make(map[string]struct{}, len(users))
	for _, u := range users {
		userSet[u] = struct{}{}
	}

	ips := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if !models.IsLoginOperation(e.Operation) {
			continue
		}
		if len(userSet) > 0 {
			user := e.User()
			if user == "" {
				continue
			}
			if _, ok := userSet[user]; !ok {
				continue
			}
		}
		if e.ClientIP != "" {
			ips[e.ClientIP] = struct{}{}
		}
	}

	return sortedKeys(ips)
}
