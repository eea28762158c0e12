// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session holds the authenticated identity for each festival a client
// has unlocked. Sessions are keyed by festival code and never shared across codes.
package session

import (
	"context"
	"strings"
	"time"
)

// Role is the access tier a session was unlocked for.
type Role string

// Roles.
const (
	RoleVisitor    Role = "visitor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Session is one client's identity within a single festival.
type Session struct {
	Role        Role      `json:"role"`
	AdminID     *int64    `json:"admin_id,omitempty"`
	VisitorName string    `json:"visitor_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Visitor returns a visitor session.
func Visitor(name string) Session {
	return Session{Role: RoleVisitor, VisitorName: name, CreatedAt: time.Now().UTC()}
}

// Admin returns a session bound to the admin with the given id.
func Admin(adminID int64) Session {
	id := adminID
	return Session{Role: RoleAdmin, AdminID: &id, CreatedAt: time.Now().UTC()}
}

// SuperAdmin returns a super admin session.
func SuperAdmin() Session {
	return Session{Role: RoleSuperAdmin, CreatedAt: time.Now().UTC()}
}

// IsAdmin reports whether the session belongs to a regular admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin && s.AdminID != nil
}

// IsSuperAdmin reports whether the session belongs to the super admin.
func (s Session) IsSuperAdmin() bool {
	return s.Role == RoleSuperAdmin
}

// ActorID is the admin id recorded against actions taken in this session.
// It is nil for the super admin and for visitors.
func (s Session) ActorID() *int64 {
	if s.IsAdmin() {
		id := *s.AdminID
		return &id
	}
	return nil
}

// Store keeps sessions per festival code.
type Store interface {
	// Get returns the session for code, if any.
	Get(ctx context.Context, code string) (Session, bool)
	// Set replaces the session for code.
	Set(ctx context.Context, code string, s Session) error
	// Clear removes the session for code only.
	Clear(ctx context.Context, code string) error
}

// normalizeCode makes lookups independent of the case a code was typed in.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
