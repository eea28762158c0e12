// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ReferenceKind identifies a per-festival reference table.
type ReferenceKind string

// Reference tables.
const (
	ReferenceGroup          ReferenceKind = "groups"
	ReferenceCategory       ReferenceKind = "categories"
	ReferenceCollectionMode ReferenceKind = "collection-modes"
	ReferenceExpenseMode    ReferenceKind = "expense-modes"
)

// ReferenceKinds lists every reference table.
var ReferenceKinds = []ReferenceKind{
	ReferenceGroup,
	ReferenceCategory,
	ReferenceCollectionMode,
	ReferenceExpenseMode,
}

// Valid reports whether k names a known reference table.
func (k ReferenceKind) Valid() bool {
	switch k {
	case ReferenceGroup, ReferenceCategory, ReferenceCollectionMode, ReferenceExpenseMode:
		return true
	}
	return false
}

// Label returns the singular name used in messages.
func (k ReferenceKind) Label() string {
	switch k {
	case ReferenceGroup:
		return "group"
	case ReferenceCategory:
		return "category"
	case ReferenceCollectionMode, ReferenceExpenseMode:
		return "mode"
	}
	return string(k)
}

// Reference is one allowed value of a reference table.
type Reference struct {
	ID         int64         `json:"id"`
	FestivalID int64         `json:"festival_id"`
	Kind       ReferenceKind `json:"kind"`
	Name       string        `json:"name"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ReferenceNames extracts the names of refs in order.
func ReferenceNames(refs []Reference) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}
