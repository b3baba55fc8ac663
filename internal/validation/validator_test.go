// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package validation

import (
	"strings"
	"testing"
)

type testRequest struct {
	Name   string `validate:"required,max=10"`
	Limit  int    `validate:"min=1,max=1000"`
	Sort   string `validate:"omitempty,oneof=asc desc"`
	Offset int    `validate:"min=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := testRequest{Name: "mailbox", Limit: 50}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	req := testRequest{Name: "mailbox", Limit: 5000}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(verr.Errors()))
	}

	fe := verr.Errors()[0]
	if fe.Field() != "Limit" || fe.Tag() != "max" || fe.Param() != "1000" {
		t.Errorf("unexpected error detail: field=%s tag=%s param=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	if fe.Error() != "Limit must be at most 1000" {
		t.Errorf("message = %q", fe.Error())
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("details field = %v", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := testRequest{Limit: 0, Sort: "sideways"}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details fields has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field entries, want 3", len(fields))
	}
	if !strings.Contains(apiErr.Message, "Name is required") {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "Sort must be one of: asc desc") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestStringMinMaxMessages(t *testing.T) {
	req := testRequest{Name: "far-too-long-name", Limit: 1}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if got := verr.Errors()[0].Error(); got != "Name must be at most 10 characters" {
		t.Errorf("message = %q", got)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator must return the same instance")
	}
}
