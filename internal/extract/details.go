// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package extract

import (
	"github.com/ualscope/ualscope/internal/models"
)

// EntryDetails is the operation-specific drill-down for one entry, served
// by the per-entry details endpoint. Fields are set independently: an inbox
// rule change is also an email operation and carries both views.
type EntryDetails struct {
	RuleDetails    *models.RuleDetails `json:"rule_details,omitempty"`
	KeyDiff        *models.KeyDiff     `json:"key_diff,omitempty"`
	RoleAssignment *RoleAssignment     `json:"role_assignment,omitempty"`
	UserCreation   *UserCreation       `json:"user_creation,omitempty"`
	AppInstall     *AppInstall         `json:"app_install,omitempty"`
	MailAccess     *MailAccess         `json:"mail_access,omitempty"`
}

// RoleAssignment describes an "Add member to role." event.
type RoleAssignment struct {
	DisplayName   string `json:"display_name,omitempty"`
	ObjectID      string `json:"object_id,omitempty"`
	TemplateID    string `json:"template_id,omitempty"`
	WellKnownName string `json:"well_known_name,omitempty"`
	TargetUser    string `json:"target_user,omitempty"`
}

// UserCreation describes an "Add user." event.
type UserCreation struct {
	UserPrincipalName string `json:"user_principal_name,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	AccountEnabled    bool   `json:"account_enabled"`
	UserType          string `json:"user_type,omitempty"`
	Department        string `json:"department,omitempty"`
	JobTitle          string `json:"job_title,omitempty"`
	Office            string `json:"office,omitempty"`
	UsageLocation     string `json:"usage_location,omitempty"`
}

// AppInstall describes a Teams app installation event.
type AppInstall struct {
	AppName          string   `json:"app_name,omitempty"`
	DistributionMode string   `json:"distribution_mode,omitempty"`
	AzureADAppID     string   `json:"azure_ad_app_id,omitempty"`
	Permissions      []string `json:"permissions,omitempty"`
	ChatThreadID     string   `json:"chat_thread_id,omitempty"`
	DeviceID         string   `json:"device_id,omitempty"`
}

// MailAccess describes the mailbox-access context of an email operation.
type MailAccess struct {
	MailboxOwnerUPN  string `json:"mailbox_owner_upn,omitempty"`
	ClientInfoString string `json:"client_info_string,omitempty"`
	MailAccessType   string `json:"mail_access_type,omitempty"`
	Subject          string `json:"subject,omitempty"`
}

func findNewValue(props []models.PropertyPair, name string) string {
	for _, p := range props {
		if p.Name == name {
			return p.NewValue
		}
	}
	return ""
}

// RoleAssignmentDetails picks the role fields out of an "Add member to role."
// ModifiedProperties array. The target user is the entry's projected
// FileName (ObjectId), supplied by the caller.
func RoleAssignmentDetails(props []models.PropertyPair, targetUser string) *RoleAssignment {
	return &RoleAssignment{
		DisplayName:   findNewValue(props, "Role.DisplayName"),
		ObjectID:      findNewValue(props, "Role.ObjectID"),
		TemplateID:    findNewValue(props, "Role.TemplateId"),
		WellKnownName: findNewValue(props, "Role.WellKnownObjectName"),
		TargetUser:    targetUser,
	}
}

// UserCreationDetails picks the account fields out of an "Add user."
// ModifiedProperties array.
func UserCreationDetails(props []models.PropertyPair) *UserCreation {
	return &UserCreation{
		UserPrincipalName: findNewValue(props, "UserPrincipalName"),
		DisplayName:       findNewValue(props, "DisplayName"),
		AccountEnabled:    findNewValue(props, "AccountEnabled") == "True",
		UserType:          findNewValue(props, "UserType"),
		Department:        findNewValue(props, "Department"),
		JobTitle:          findNewValue(props, "JobTitle"),
		Office:            findNewValue(props, "Office"),
		UsageLocation:     findNewValue(props, "UsageLocation"),
	}
}

// AppInstallDetails reads the Teams app installation fields from a payload.
func AppInstallDetails(p *models.AuditPayload) *AppInstall {
	return &AppInstall{
		AppName:          p.AddOnName,
		DistributionMode: p.AppDistributionMode,
		AzureADAppID:     p.AzureADAppID,
		Permissions:      p.ResourceSpecificApplicationPermissions,
		ChatThreadID:     p.ChatThreadID,
		DeviceID:         p.DeviceID,
	}
}

// MailAccessDetails reads the mailbox-access context from a payload.
// The email subject is only surfaced for Send operations.
func MailAccessDetails(p *models.AuditPayload, operation string) *MailAccess {
	access := &MailAccess{
		MailboxOwnerUPN:  p.MailboxOwnerUPN,
		ClientInfoString: p.ClientInfoString,
	}
	for _, prop := range p.OperationProperties {
		if prop.Name == "MailAccessType" {
			access.MailAccessType = prop.Value
			break
		}
	}
	if operation == "Send" {
		access.Subject = p.Subject
	}
	return access
}

// EntryDetailsFor dispatches on the entry's operation and assembles every
// detail view that applies. Directory operations need a decodable
// ModifiedProperties array; without one their view is omitted.
func EntryDetailsFor(e *models.LogEntry) *EntryDetails {
	details := &EntryDetails{RuleDetails: e.RuleDetails}
	payload := &e.Payload

	switch e.Operation {
	case "Add member to role.":
		if pairs, ok := payload.ModifiedPropertyPairs(); ok {
			details.RoleAssignment = RoleAssignmentDetails(pairs, e.FileName)
		}
	case "Add user.":
		if pairs, ok := payload.ModifiedPropertyPairs(); ok {
			details.UserCreation = UserCreationDetails(pairs)
		}
	case "AppInstalled":
		details.AppInstall = AppInstallDetails(payload)
	case models.OperationCertSecretsChange:
		if pairs, ok := payload.ModifiedPropertyPairs(); ok {
			details.KeyDiff = KeyDiff(pairs)
		}
	}

	if models.IsEmailOperation(e.Operation) {
		details.MailAccess = MailAccessDetails(payload, e.Operation)
	}

	return details
}
