// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package extract

import (
	"strings"

	"github.com/ualscope/ualscope/internal/models"
)

// RuleDetailsFromModifiedProperties summarizes an inbox rule change from a
// ModifiedProperties array (UpdateInboxRule events).
//
// Note the deliberate asymmetries against the Parameters variant below:
// this variant appends forward/delete actions without checking the value,
// does not strip brackets from addresses, and has no CopyToFolder or
// ForwardAsAttachmentTo handling. The two UAL shapes carry differently
// formatted values, so the variants must not be unified.
func RuleDetailsFromModifiedProperties(props []models.PropertyPair) *models.RuleDetails {
	details := newRuleDetails()

	for _, prop := range props {
		switch {
		case prop.Name == "Name" && prop.Value != "":
			details.Name = prop.Value
		case prop.Name == "ForwardTo" || prop.Name == "RedirectTo":
			details.Actions = append(details.Actions, "Forward to: "+prop.Value)
		case prop.Name == "DeleteMessage":
			details.Actions = append(details.Actions, "Delete message")
		case prop.Name == "MoveToFolder":
			details.Actions = append(details.Actions, "Move to folder: "+prop.Value)
		case prop.Name == "From":
			details.Conditions = append(details.Conditions, "From: "+prop.Value)
		case prop.Name == "SubjectContainsWords":
			details.Conditions = append(details.Conditions, "Subject contains: "+prop.Value)
		case prop.Name == "BodyContainsWords":
			details.Conditions = append(details.Conditions, "Body contains: "+prop.Value)
		case prop.Name == "Enabled":
			details.Enabled = prop.Value == "True"
		case prop.Name == "Priority":
			details.Priority = prop.Value
		case prop.Name == "StopProcessingRules":
			details.StopProcessingRules = prop.Value == "True"
		}
	}

	return details
}

// RuleDetailsFromParameters summarizes an inbox rule from a Parameters
// array (New-InboxRule cmdlet audit events). Parameter values wrap
// addresses in square brackets, which are stripped for display, and most
// branches only fire on a non-empty value.
func RuleDetailsFromParameters(params []models.PropertyPair) *models.RuleDetails {
	details := newRuleDetails()

	for _, param := range params {
		switch {
		case param.Name == "Name" && param.Value != "":
			details.Name = param.Value
		case param.Name == "ForwardTo" || param.Name == "ForwardAsAttachmentTo" ||
			(param.Name == "RedirectTo" && param.Value != ""):
			details.Actions = append(details.Actions, "Forward to: "+stripBrackets(param.Value))
		case param.Name == "DeleteMessage" && param.Value == "True":
			details.Actions = append(details.Actions, "Delete message")
		case param.Name == "MoveToFolder" && param.Value != "":
			details.Actions = append(details.Actions, "Move to folder: "+param.Value)
		case param.Name == "CopyToFolder" && param.Value != "":
			details.Actions = append(details.Actions, "Copy to folder: "+param.Value)
		case param.Name == "From" && param.Value != "":
			details.Conditions = append(details.Conditions, "From: "+stripBrackets(param.Value))
		case param.Name == "SubjectContainsWords" && param.Value != "":
			details.Conditions = append(details.Conditions, "Subject contains: "+param.Value)
		case param.Name == "BodyContainsWords" && param.Value != "":
			details.Conditions = append(details.Conditions, "Body contains: "+param.Value)
		case param.Name == "Enabled" && param.Value != "":
			details.Enabled = param.Value == "True"
		case param.Name == "Priority" && param.Value != "":
			details.Priority = param.Value
		case param.Name == "StopProcessingRules" && param.Value != "":
			details.StopProcessingRules = param.Value == "True"
		}
	}

	return details
}

func newRuleDetails() *models.RuleDetails {
	return &models.RuleDetails{
		Actions:    []string{},
		Conditions: []string{},
		Enabled:    true,
	}
}

func stripBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	return strings.ReplaceAll(s, "]", "")
}
