// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Levels of an operational event.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Categories group events by the subsystem that raised them.
const (
	EventCategoryAuth     = "auth"     // unlocks, denials, lockouts
	EventCategoryFestival = "festival" // activity log failures
	EventCategoryImport   = "import"
	EventCategoryConfig   = "config"
	EventCategorySystem   = "system" // startup, retention
	EventCategoryCache    = "cache"
)

// Event is one row of the operational event log. It is not tied to a
// festival; festival_id, when relevant, is carried in Metadata.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON object
	CreatedAt time.Time `json:"created_at"`
}
