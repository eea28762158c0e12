// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// DefaultMaxUserPasswords is the visitor password quota given to new admins.
const DefaultMaxUserPasswords = 10

// Admin manages transactions and visitor passwords for one festival.
type Admin struct {
	ID                int64     `json:"id"`
	FestivalID        int64     `json:"festival_id"`
	AdminCode         string    `json:"admin_code"`
	AdminName         string    `json:"admin_name"`
	AdminPasswordHash string    `json:"-"`
	MaxUserPasswords  int       `json:"max_user_passwords"`
	IsActive          bool      `json:"is_active"`
	CreatedBy         *int64    `json:"created_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserPassword is a visitor password issued by an admin.
type UserPassword struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	FestivalID int64     `json:"festival_id"`
	Password   string    `json:"-"` // argon2id hash
	Digest     string    `json:"-"` // keyed digest, unique per festival
	Label      string    `json:"label"`
	IsActive   bool      `json:"is_active"`
	UsageCount int64     `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}
