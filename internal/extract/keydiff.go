// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package extract

import (
	"regexp"

	"github.com/goccy/go-json"

	"github.com/ualscope/ualscope/internal/models"
)

// reKeyCredential matches one serialized KeyDescription entry, e.g.
// "[KeyIdentifier=abc,KeyType=AsymmetricX509Cert,KeyUsage=Verify,DisplayName=CN=cert]".
var reKeyCredential = regexp.MustCompile(`KeyIdentifier=([^,]+),KeyType=([^,]+),KeyUsage=([^,]+),DisplayName=([^\]]+)`)

// KeyDiff compares the old and new KeyDescription lists of an application
// certificates-and-secrets change and reports which credentials were added
// or removed, keyed by KeyIdentifier.
//
// When no KeyDescription property is present the diff reports NoChanges.
// When both sides parse but the identifier sets are equal the change was
// only a reordering, which is flagged rather than shown as a diff.
func KeyDiff(props []models.PropertyPair) *models.KeyDiff {
	var keyProp *models.PropertyPair
	for i := range props {
		if props[i].Name == "KeyDescription" {
			keyProp = &props[i]
			break
		}
	}
	if keyProp == nil {
		return &models.KeyDiff{NoChanges: true}
	}

	oldKeys := parseKeyList(keyProp.OldValue)
	newKeys := parseKeyList(keyProp.NewValue)

	diff := &models.KeyDiff{
		Added:   []models.KeyCredential{},
		Removed: []models.KeyCredential{},
	}

	oldIDs := make(map[string]struct{}, len(oldKeys))
	for _, k := range oldKeys {
		oldIDs[k.KeyID] = struct{}{}
	}
	newIDs := make(map[string]struct{}, len(newKeys))
	for _, k := range newKeys {
		newIDs[k.KeyID] = struct{}{}
	}

	for _, k := range newKeys {
		if _, ok := oldIDs[k.KeyID]; !ok {
			diff.Added = append(diff.Added, k)
		}
	}
	for _, k := range oldKeys {
		if _, ok := newIDs[k.KeyID]; !ok {
			diff.Removed = append(diff.Removed, k)
		}
	}

	if len(diff.Added) == 0 && len(diff.Removed) == 0 {
		diff.ReorderedOnly = true
	}

	return diff
}

// parseKeyList decodes a KeyDescription value: a JSON array of strings,
// each holding one bracketed credential description. Entries that fail the
// credential pattern are dropped silently; an undecodable value yields an
// empty list.
func parseKeyList(value string) []models.KeyCredential {
	var items []string
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil
	}

	var keys []models.KeyCredential
	for _, item := range items {
		m := reKeyCredential.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		keys = append(keys, models.KeyCredential{
			KeyID:       m[1],
			KeyType:     m[2],
			KeyUsage:    m[3],
			DisplayName: m[4],
		})
	}
	return keys
}
