// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"testing"
)

func TestReferenceNotFoundError_ListsAvailable(t *testing.T) {
	err := &ReferenceNotFoundError{Kind: "mode", Value: "Cach", Available: []string{"Cash", "UPI"}}

	msg := err.Error()
	if !strings.Contains(msg, `"Cach"`) {
		t.Errorf("message %q should quote the value", msg)
	}
	if !strings.Contains(msg, "Cash, UPI") {
		t.Errorf("message %q should list available options", msg)
	}

	empty := &ReferenceNotFoundError{Kind: "group", Value: "X"}
	if !strings.Contains(empty.Error(), "none") {
		t.Errorf("message %q should say none are available", empty.Error())
	}
}

func TestActivityLogFailure_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &ActivityLogFailure{ActionType: ActionAdminCreated, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ActivityLogFailure should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), ActionAdminCreated) {
		t.Errorf("message %q should name the action", err.Error())
	}
}

func TestDuplicateError(t *testing.T) {
	tests := []struct {
		err  *DuplicateError
		want string
	}{
		{&DuplicateError{Entity: "group", Value: "Group A"}, `group "Group A" already exists`},
		{&DuplicateError{Entity: "visitor password"}, "visitor password already exists"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q; want %q", got, tt.want)
		}
	}
}

func TestValidationError(t *testing.T) {
	if got := Validation("amount", "must be positive").Error(); got != "amount must be positive" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ValidationError{Reason: "batch is empty"}).Error(); got != "batch is empty" {
		t.Errorf("Error() = %q", got)
	}
}

func TestReferenceKind(t *testing.T) {
	for _, k := range ReferenceKinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if ReferenceKind("colours").Valid() {
		t.Error("unknown kind should be invalid")
	}
	if ReferenceExpenseMode.Label() != "mode" {
		t.Errorf("Label() = %q", ReferenceExpenseMode.Label())
	}
}
