// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Admin activity action types.
const (
	ActionFestivalCreated      = "festival_created"
	ActionFestivalCodeChanged  = "festival_code_changed"
	ActionFestivalDatesUpdated = "festival_dates_updated"
	ActionVisitorGateUpdated   = "visitor_gate_updated"
	ActionCodeAliasInvalidated = "code_alias_invalidated"
	ActionAdminCreated         = "admin_created"
	ActionAdminDeleted         = "admin_deleted"
	ActionAdminPasswordChanged = "admin_password_changed"
	ActionAdminToggled         = "admin_toggled"
	ActionUserPasswordCreated  = "user_password_created"
	ActionUserPasswordToggled  = "user_password_toggled"
	ActionUserPasswordDeleted  = "user_password_deleted"
	ActionReferenceCreated     = "reference_created"
	ActionReferenceDeleted     = "reference_deleted"
	ActionCollectionCreated    = "collection_created"
	ActionExpenseCreated       = "expense_created"
	ActionCollectionsImported  = "collections_imported"
	ActionExpensesImported     = "expenses_imported"
	ActionCollectionDeleted    = "collection_deleted"
	ActionExpenseDeleted       = "expense_deleted"
	ActionLogin                = "login"
)

// ActivityLog is one append-only audit entry. A nil AdminID marks an action
// taken by the super admin.
type ActivityLog struct {
	ID            int64          `json:"id"`
	FestivalID    int64          `json:"festival_id"`
	AdminID       *int64         `json:"admin_id"`
	ActionType    string         `json:"action_type"`
	ActionDetails map[string]any `json:"action_details,omitempty"`
	TargetType    string         `json:"target_type,omitempty"`
	TargetID      string         `json:"target_id,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// AccessLog records one successful tier unlock. VisitorName stays empty when the
// festival does not track visitors.
type AccessLog struct {
	ID          int64     `json:"id"`
	FestivalID  int64     `json:"festival_id"`
	SessionRole string    `json:"session_role"`
	VisitorName *string   `json:"visitor_name"`
	AdminID     *int64    `json:"admin_id"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	DeviceType  string    `json:"device_type"`
	CountryCode string    `json:"country_code,omitempty"`
	AccessedAt  time.Time `json:"accessed_at"`
}
