// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Collection is money received by a festival.
type Collection struct {
	ID               int64     `json:"id"`
	FestivalID       int64     `json:"festival_id"`
	Name             string    `json:"name"`
	Amount           float64   `json:"amount"`
	GroupName        string    `json:"group_name"`
	Mode             string    `json:"mode"`
	Note             string    `json:"note,omitempty"`
	Date             time.Time `json:"-"`
	TimeHour         int       `json:"time_hour"`
	TimeMinute       int       `json:"time_minute"`
	CreatedByAdminID *int64    `json:"created_by_admin_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Expense is money spent by a festival.
type Expense struct {
	ID               int64     `json:"id"`
	FestivalID       int64     `json:"festival_id"`
	Item             string    `json:"item"`
	Pieces           int64     `json:"pieces"`
	PricePerPiece    float64   `json:"price_per_piece"`
	TotalAmount      float64   `json:"total_amount"`
	Category         string    `json:"category"`
	Mode             string    `json:"mode"`
	Note             string    `json:"note,omitempty"`
	Date             time.Time `json:"-"`
	TimeHour         int       `json:"time_hour"`
	TimeMinute       int       `json:"time_minute"`
	CreatedByAdminID *int64    `json:"created_by_admin_id"`
	CreatedAt        time.Time `json:"created_at"`
}
