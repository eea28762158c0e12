// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestNullInt64FromPtr(t *testing.T) {
	tests := []struct {
		name     string
		input    *int64
		expected sql.NullInt64
	}{
		{"nil pointer", nil, sql.NullInt64{}},
		{"positive value", ptr(int64(42)), sql.NullInt64{Int64: 42, Valid: true}},
		{"zero value", ptr(int64(0)), sql.NullInt64{Int64: 0, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NullInt64FromPtr(tt.input); got != tt.expected {
				t.Errorf("NullInt64FromPtr() = %v, want %v", got, tt.expected)
			}
			back := Int64Ptr(NullInt64FromPtr(tt.input))
			if (back == nil) != (tt.input == nil) || (back != nil && *back != *tt.input) {
				t.Errorf("Int64Ptr() did not round trip %v", tt.input)
			}
		})
	}
}

func TestNullStringFromPtr(t *testing.T) {
	if got := NullStringFromPtr(nil); got.Valid {
		t.Errorf("NullStringFromPtr(nil) = %v, want NULL", got)
	}
	if got := NullStringFromPtr(ptr("")); !got.Valid || got.String != "" {
		t.Errorf("NullStringFromPtr(\"\") = %v, want valid empty string", got)
	}
	if got := StringPtr(sql.NullString{String: "Asha", Valid: true}); got == nil || *got != "Asha" {
		t.Errorf("StringPtr() = %v, want Asha", got)
	}
	if got := StringPtr(sql.NullString{}); got != nil {
		t.Errorf("StringPtr(NULL) = %v, want nil", *got)
	}
}
