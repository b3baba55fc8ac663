// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package analyze

import (
	"regexp"
	"sort"

	"github.com/ualscope/ualscope/internal/models"
)

// reInternetMessageID accepts RFC 5322 style message ids: <token@domain>.
var reInternetMessageID = regexp.MustCompile(`<[^>]+@[^>]+>`)

type mailReadAccumulator struct {
	stat    models.MailReadStat
	readers map[string]struct{}
}

// MailReadStats walks every entry's Folders/FolderItems structure and
// aggregates per InternetMessageId: who read the message, when, and where
// it lived. Only items whose id matches the <local@domain> shape count.
// Subject, client IP, folder path and size come from the first occurrence;
// readers and timestamps accumulate across occurrences. Results order by
// message id.
func MailReadStats(entries []models.LogEntry) []models.MailReadStat {
	acc := make(map[string]*mailReadAccumulator)

	for i := range entries {
		e := &entries[i]
		for fi := range e.Payload.Folders {
			folder := &e.Payload.Folders[fi]
			for _, item := range folder.FolderItems {
				if item.InternetMessageID == "" || !reInternetMessageID.MatchString(item.InternetMessageID) {
					continue
				}

				a := acc[item.InternetMessageID]
				if a == nil {
					a = &mailReadAccumulator{
						stat: models.MailReadStat{
							InternetMessageID: item.InternetMessageID,
							Subject:           orDefault(e.Subject, models.ValueNotAvailable),
							Workload:          orDefault(e.Workload, models.WorkloadUnknown),
							ClientIP:          orDefault(e.ClientIP, models.ValueNotAvailable),
							FolderPath:        orDefault(folder.Path, models.WorkloadUnknown),
							SizeInBytes:       item.SizeInBytes,
						},
						readers: make(map[string]struct{}),
					}
					acc[item.InternetMessageID] = a
				}

				if user := e.User(); user != "" {
					a.readers[user] = struct{}{}
				}
				if e.TimeGenerated != "" {
					a.stat.ReadTimestamps = append(a.stat.ReadTimestamps, e.TimeGenerated)
				}
			}
		}
	}

	stats := make([]models.MailReadStat, 0, len(acc))
	for _, a := range acc {
		a.stat.ReadBy = sortedKeys(a.readers)
		SortChronological(a.stat.ReadTimestamps)
		stats = append(stats, a.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].InternetMessageID < stats[j].InternetMessageID
	})

	return stats
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
