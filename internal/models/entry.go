// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package models

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// PropertyPair is one element of a ModifiedProperties array.
//
// The Unified Audit Log is not consistent about which value field is
// populated: Exchange inbox-rule events carry Name/Value pairs while
// Azure AD directory events carry Name/NewValue/OldValue. All three are
// kept so extractors can read whichever variant their operation emits.
type PropertyPair struct {
	Name     string `json:"Name"`
	Value    string `json:"Value,omitempty"`
	NewValue string `json:"NewValue,omitempty"`
	OldValue string `json:"OldValue,omitempty"`
}

// NameValue is a generic Name/Value pair (Parameters, OperationProperties).
type NameValue struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// FolderItem is a single message reference inside a MailItemsAccessed folder.
type FolderItem struct {
	InternetMessageID string `json:"InternetMessageId"`
	SizeInBytes       int64  `json:"SizeInBytes"`
}

// Folder groups accessed mail items under a mailbox folder path.
type Folder struct {
	Path        string       `json:"Path"`
	FolderItems []FolderItem `json:"FolderItems"`
}

// AppAccessContext carries app-level access metadata on Exchange events.
type AppAccessContext struct {
	ClientAppID     string `json:"ClientAppId,omitempty"`
	ClientIPAddress string `json:"ClientIPAddress,omitempty"`
}

// AuditPayload is the decoded AuditData JSON embedded in a UAL CSV row.
//
// Only the fields UALscope projects or extracts are typed; everything else
// stays in the raw payload text, which is preserved verbatim on the entry.
// ModifiedProperties and Parameters are kept as raw JSON because their
// element shape varies by workload; use ModifiedPropertyPairs and
// ParameterPairs to decode them on demand.
type AuditPayload struct {
	CreationTime      string `json:"CreationTime,omitempty"`
	Operation         string `json:"Operation,omitempty"`
	UserID            string `json:"UserId,omitempty"`
	ObjectID          string `json:"ObjectId,omitempty"`
	Subject           string `json:"Subject,omitempty"`
	MessageID         string `json:"MessageId,omitempty"`
	InternetMessageID string `json:"InternetMessageId,omitempty"`
	ClientIP          string `json:"ClientIP,omitempty"`
	ClientIPAddress   string `json:"ClientIPAddress,omitempty"`

	// Both spellings occur in the wild; exact tag matches keep them apart.
	CorrelationID    string `json:"CorrelationId,omitempty"`
	CorrelationIDAlt string `json:"CorrelationID,omitempty"`

	Workload         string `json:"Workload,omitempty"`
	UserAgent        string `json:"UserAgent,omitempty"`
	MailboxOwnerUPN  string `json:"MailboxOwnerUPN,omitempty"`
	MailAccessType   string `json:"MailAccessType,omitempty"`
	ClientInfoString string `json:"ClientInfoString,omitempty"`

	AppAccessContext    *AppAccessContext `json:"AppAccessContext,omitempty"`
	OperationProperties []NameValue       `json:"OperationProperties,omitempty"`

	// Teams app installation fields.
	AddOnName                              string   `json:"AddOnName,omitempty"`
	AppDistributionMode                    string   `json:"AppDistributionMode,omitempty"`
	AzureADAppID                           string   `json:"AzureADAppId,omitempty"`
	ResourceSpecificApplicationPermissions []string `json:"ResourceSpecificApplicationPermissions,omitempty"`
	ChatThreadID                           string   `json:"ChatThreadId,omitempty"`
	DeviceID                               string   `json:"DeviceId,omitempty"`

	ModifiedProperties json.RawMessage `json:"ModifiedProperties,omitempty"`
	Parameters         json.RawMessage `json:"Parameters,omitempty"`
	Folders            []Folder        `json:"Folders,omitempty"`
}

// ClientAddress returns ClientIP, falling back to ClientIPAddress.
func (p *AuditPayload) ClientAddress() string {
	if p.ClientIP != "" {
		return p.ClientIP
	}
	return p.ClientIPAddress
}

// Correlation returns CorrelationId, falling back to the CorrelationID spelling.
func (p *AuditPayload) Correlation() string {
	if p.CorrelationID != "" {
		return p.CorrelationID
	}
	return p.CorrelationIDAlt
}

// BestMessageID returns MessageId, falling back to InternetMessageId.
func (p *AuditPayload) BestMessageID() string {
	if p.MessageID != "" {
		return p.MessageID
	}
	return p.InternetMessageID
}

// ModifiedPropertyPairs decodes ModifiedProperties into property pairs.
// Returns false when the field is absent or not an array of pairs.
func (p *AuditPayload) ModifiedPropertyPairs() ([]PropertyPair, bool) {
	return decodePairs(p.ModifiedProperties)
}

// ParameterPairs decodes Parameters into property pairs.
// Returns false when the field is absent or not an array of pairs.
func (p *AuditPayload) ParameterPairs() ([]PropertyPair, bool) {
	return decodePairs(p.Parameters)
}

func decodePairs(raw json.RawMessage) ([]PropertyPair, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	var pairs []PropertyPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, false
	}
	return pairs, true
}

// ValueNotAvailable is displayed when a projected field has no source value.
const ValueNotAvailable = "N/A"

// WorkloadUnknown is the workload shown when neither payload nor row carry one.
const WorkloadUnknown = "Unknown"

// UserAgentInfo is the parsed form of a payload UserAgent string.
type UserAgentInfo struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Device         string `json:"device"`
	IsMobile       bool   `json:"isMobile"`
	Raw            string `json:"raw"`
}

// RuleDetails summarizes an inbox rule creation or update.
type RuleDetails struct {
	Name                string   `json:"Name"`
	Actions             []string `json:"Actions"`
	Conditions          []string `json:"Conditions"`
	Enabled             bool     `json:"Enabled"`
	Priority            string   `json:"Priority"`
	StopProcessingRules bool     `json:"StopProcessingRules"`
}

// LogEntry is one normalized audit record: the CSV row joined with the
// fields projected out of its decoded AuditData payload.
//
// Projected fields follow fixed fallback chains (ClientIP before
// ClientIPAddress, MessageId before InternetMessageId, payload Workload
// before row Workload before "Unknown"). TimeGenerated carries the row's
// CreationDate verbatim; display formatting happens at render time.
type LogEntry struct {
	ID         string `json:"Id"`
	SourceFile string `json:"SourceFile,omitempty"`

	CreationDate string `json:"CreationDate"`
	UserID       string `json:"UserId,omitempty"`
	UserKey      string `json:"UserKey,omitempty"`
	Operation    string `json:"Operation"`
	Workload     string `json:"Workload"`

	FileName           string `json:"FileName"`
	Subject            string `json:"Subject"`
	MessageID          string `json:"MessageId"`
	TimeGenerated      string `json:"TimeGenerated"`
	ClientIP           string `json:"ClientIP"`
	CorrelationID      string `json:"CorrelationId"`
	ModifiedProperties string `json:"ModifiedProperties"`

	UserAgent     string         `json:"UserAgent,omitempty"`
	UserAgentInfo *UserAgentInfo `json:"UserAgentInfo,omitempty"`
	RuleDetails   *RuleDetails   `json:"RuleDetails,omitempty"`

	// AuditDataRaw is the untouched AuditData cell, preserved for NDJSON export.
	AuditDataRaw string `json:"AuditDataRaw"`

	// Payload is the decoded AuditData; zero value when the JSON was malformed.
	Payload AuditPayload `json:"-"`

	searchText string
}

// User returns UserId, falling back to UserKey.
func (e *LogEntry) User() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.UserKey
}

// PrecomputeSearch builds the lowercase search projection once, at ingest
// time, so substring search never lowercases per query.
func (e *LogEntry) PrecomputeSearch() {
	e.searchText = strings.ToLower(strings.Join([]string{
		e.User(),
		e.Operation,
		e.Workload,
		e.Subject,
		e.MessageID,
		e.CorrelationID,
		e.ClientIP,
		e.FileName,
		e.UserAgent,
	}, "\x00"))
}

// MatchesSearch reports whether the already-lowercased term occurs in any
// searchable field. An empty term matches everything.
func (e *LogEntry) MatchesSearch(lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(e.searchText, lowerTerm)
}
