// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package models defines the shared data model for UALscope.
//
// Domain types (LogEntry, AuditPayload, RuleDetails) keep the PascalCase
// JSON field names of the Unified Audit Log export so that API consumers
// see the same field names Microsoft emits. API envelope and analytics
// types use snake_case like the rest of the HTTP surface.
package models
