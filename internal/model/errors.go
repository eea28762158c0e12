// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages.
var (
	// ErrNotFound is returned by the store when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned on a password mismatch at any access tier.
	ErrInvalidCredentials = errors.New("incorrect password")

	// ErrCodeGenerationExhausted aborts festival and admin creation when no unique
	// code could be found within the attempt budget.
	ErrCodeGenerationExhausted = errors.New("could not generate a unique code, try a different name")

	// ErrForbidden is returned when the session lacks the capability for an operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed or out-of-policy input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// ReferenceNotFoundError reports an unknown group, category, mode or admin id.
// Available lists the currently valid options.
type ReferenceNotFoundError struct {
	Kind      string
	Value     string
	Available []string
}

func (e *ReferenceNotFoundError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("unknown %s %q (available: %s)", e.Kind, e.Value, available)
}

// DuplicateError reports a unique-constraint violation.
type DuplicateError struct {
	Entity string
	Value  string
}

func (e *DuplicateError) Error() string {
	if e.Value == "" {
		return e.Entity + " already exists"
	}
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Value)
}

// ActivityLogFailure wraps an error from the activity log recorder. It is only
// ever logged, never returned to callers of mutating operations.
type ActivityLogFailure struct {
	ActionType string
	Err        error
}

func (e *ActivityLogFailure) Error() string {
	return fmt.Sprintf("logging activity %q: %v", e.ActionType, e.Err)
}

func (e *ActivityLogFailure) Unwrap() error {
	return e.Err
}

// Validation is a shorthand for building a *ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
