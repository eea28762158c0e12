// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util converts between optional Go values and nullable SQL columns.
package util

import "database/sql"

// NullInt64FromPtr converts an optional id into sql.NullInt64. A nil pointer
// is stored as NULL; zero is a real value.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr != nil {
		return sql.NullInt64{Int64: *ptr, Valid: true}
	}
	return sql.NullInt64{}
}

// Int64Ptr is the inverse of NullInt64FromPtr.
func Int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// NullStringFromPtr converts an optional string into sql.NullString. An empty
// string behind a non-nil pointer is stored as is.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr != nil {
		return sql.NullString{String: *ptr, Valid: true}
	}
	return sql.NullString{}
}

// StringPtr is the inverse of NullStringFromPtr.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
