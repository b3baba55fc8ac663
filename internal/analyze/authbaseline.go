// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package analyze

import (
	"sort"

	"github.com/ualscope/ualscope/internal/models"
)

type baselineAccumulator struct {
	ip         string
	user       string
	count      int
	timestamps []string
	operations map[string]struct{}
}

// AuthBaseline groups sign-in activity by (IP, user) pair. Entries that
// are not login operations, or that lack a user or a client IP, are
// excluded. Pairs are returned most-active first; ties order by IP then
// user so output is deterministic.
func AuthBaseline(entries []models.LogEntry) []models.AuthBaselineStat {
	acc := make(map[string]*baselineAccumulator)

	for i := range entries {
		e := &entries[i]
		if !models.IsLoginOperation(e.Operation) {
			continue
		}
		user := e.User()
		if user == "" || e.ClientIP == "" {
			continue
		}

		key := e.ClientIP + "\x00" + user
		a := acc[key]
		if a == nil {
			a = &baselineAccumulator{
				ip:         e.ClientIP,
				user:       user,
				operations: make(map[string]struct{}),
			}
			acc[key] = a
		}
		a.count++
		if e.TimeGenerated != "" {
			a.timestamps = append(a.timestamps, e.TimeGenerated)
		}
		a.operations[e.Operation] = struct{}{}
	}

	stats := make([]models.AuthBaselineStat, 0, len(acc))
	for _, a := range acc {
		SortChronological(a.timestamps)
		stat := models.AuthBaselineStat{
			IPAddress:  a.ip,
			User:       a.user,
			Count:      a.count,
			FirstSeen:  models.ValueNotAvailable,
			LastSeen:   models.ValueNotAvailable,
			Operations: sortedKeys(a.operations),
		}
		if len(a.timestamps) > 0 {
			stat.FirstSeen = a.timestamps[0]
			stat.LastSeen = a.timestamps[len(a.timestamps)-1]
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].IPAddress != stats[j].IPAddress {
			return stats[i].IPAddress < stats[j].IPAddress
		}
		return stats[i].User < stats[j].User
	})

	return stats
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
