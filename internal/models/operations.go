// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package models

// OperationCertSecretsChange is the application certificates-and-secrets
// change operation, verbatim from the Unified Audit Log including the
// en-dash and the trailing space.
const OperationCertSecretsChange = "Update application – Certificates and secrets management "

// RiskyOperations are operations an analyst should review first: inbox rule
// manipulation, mailbox permission and configuration changes, and Azure AD
// application/credential changes commonly seen in BEC investigations.
// The strings match the Unified Audit Log verbatim.
var RiskyOperations = []string{
	"UpdateInboxRule",
	"New-InboxRule",
	"Add-MailboxPermission",
	"Set-Mailbox",
	"Set-MailboxAutoReplyConfiguration",
	"Add member to role.",
	"Add user.",
	"Add delegated permission grant.",
	"Set-AdminAuditLogConfig",
	OperationCertSecretsChange,
	"Consent to application.",
	"Add service principal.",
	"Update application.",
	"Add application.",
	"Add application permission.",
	"Update PasswordProfile.",
	"Change user password.",
	"Add owner to application.",
}

// EmailOperations are operations that touch mailbox content or configuration;
// they get the mail access detail treatment.
var EmailOperations = []string{
	"MailItemsAccessed",
	"Send",
	"UpdateInboxRule",
	"New-InboxRule",
	"Set-Mailbox",
	"Set-MailboxAutoReplyConfiguration",
	"Add-MailboxPermission",
	"Remove-MailboxPermission",
	"Update-MailboxPermission",
	"Move-Mailbox",
	"New-Mailbox",
	"Remove-Mailbox",
	"Set-MailboxRegionalConfiguration",
	"Set-MailboxCalendarConfiguration",
	"Set-MailboxMessageConfiguration",
}

// LoginOperations are the sign-in operations used by the IP-centric analyzers.
var LoginOperations = []string{
	"UserLoggedIn",
	"SignIn",
	"UserLoginFailed",
	"UserLoginSuccess",
}

var (
	riskySet = toSet(RiskyOperations)
	emailSet = toSet(EmailOperations)
	loginSet = toSet(LoginOperations)
)

func toSet(ops []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

// IsRiskyOperation reports whether op is on the risky watch-list.
func IsRiskyOperation(op string) bool {
	_, ok := riskySet[op]
	return ok
}

// IsEmailOperation reports whether op touches mailbox content or configuration.
func IsEmailOperation(op string) bool {
	_, ok := emailSet[op]
	return ok
}

// IsLoginOperation reports whether op is a sign-in operation.
func IsLoginOperation(op string) bool {
	_, ok := loginSet[op]
	return ok
}

// IsInboxRuleOperation reports whether op creates or updates an inbox rule.
func IsInboxRuleOperation(op string) bool {
	return op == "UpdateInboxRule" || op == "New-InboxRule"
}
