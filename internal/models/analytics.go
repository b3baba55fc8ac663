// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package models

// IPLoginStat aggregates sign-in activity for a single source IP address.
// Timestamps are the raw TimeGenerated strings sorted by parsed instant,
// with unparseable strings first; FirstSeen and LastSeen are the sort
// extremes ("N/A" when no timestamp was recorded).
type IPLoginStat struct {
	IPAddress  string   `json:"ip_address"`
	Users      []string `json:"users"`
	FirstSeen  string   `json:"first_seen"`
	LastSeen   string   `json:"last_seen"`
	Operations []string `json:"operations"`
	Workloads  []string `json:"workloads"`
	Count      int      `json:"count"`
}

// AuthBaselineStat is one (IP, user) sign-in pair with its activity envelope.
// Rows with a missing user or IP are excluded from the baseline entirely.
type AuthBaselineStat struct {
	IPAddress  string   `json:"ip_address"`
	User       string   `json:"user"`
	Count      int      `json:"count"`
	FirstSeen  string   `json:"first_seen"`
	LastSeen   string   `json:"last_seen"`
	Operations []string `json:"operations"`
}

// MailReadStat aggregates MailItemsAccessed activity for one
// InternetMessageId found in the Folders/FolderItems structure.
// Subject, ClientIP, FolderPath and SizeInBytes come from the first
// occurrence; ReadBy and ReadTimestamps accumulate across occurrences.
type MailReadStat struct {
	InternetMessageID string   `json:"internet_message_id"`
	Subject           string   `json:"subject"`
	Workload          string   `json:"workload"`
	ReadBy            []string `json:"read_by"`
	ReadTimestamps    []string `json:"read_timestamps"`
	ClientIP          string   `json:"client_ip"`
	FolderPath        string   `json:"folder_path"`
	SizeInBytes       int64    `json:"size_in_bytes"`
}

// KeyCredential is one parsed KeyDescription entry from an application
// certificates-and-secrets change.
type KeyCredential struct {
	KeyID       string `json:"key_id"`
	KeyType     string `json:"key_type"`
	KeyUsage    string `json:"key_usage"`
	DisplayName string `json:"display_name"`
}

// KeyDiff is the outcome of comparing old and new KeyDescription lists.
// When no KeyDescription property exists NoChanges is true; when both
// lists parse but nothing was added or removed, ReorderedOnly is true.
type KeyDiff struct {
	Added         []KeyCredential `json:"added"`
	Removed       []KeyCredential `json:"removed"`
	NoChanges     bool            `json:"no_changes"`
	ReorderedOnly bool            `json:"reordered_only"`
}

// FileSummary records the per-file outcome of an upload batch.
type FileSummary struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// UploadSummary is the result of one upload batch. Failed files contribute
// zero rows but never abort the batch; only a bad file extension does.
type UploadSummary struct {
	BatchID   string        `json:"batch_id"`
	Files     []FileSummary `json:"files"`
	TotalRows int           `json:"total_rows"`
}

// StoreStats describes the currently loaded record set.
type StoreStats struct {
	TotalEntries int           `json:"total_entries"`
	RiskyEntries int           `json:"risky_entries"`
	Files        []FileSummary `json:"files"`
	LoadedAt     string        `json:"loaded_at,omitempty"`
}

// Facets lists the distinct values offered for the multi-select filters.
type Facets struct {
	Users      []string `json:"users"`
	Workloads  []string `json:"workloads"`
	Operations []string `json:"operations"`
	RiskyOps   []string `json:"risky_operations"`
}
