// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access decides which password unlocks which tier of a festival and
// what each unlocked session may do.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/festivo-go/internal/auth"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

// MaxVisitorNameLength caps the visitor name recorded in access logs.
const MaxVisitorNameLength = 100

// Tier is a level of access within one festival.
type Tier string

// Tiers.
const (
	TierVisitor    Tier = "visitor"
	TierAdmin      Tier = "admin"
	TierSuperAdmin Tier = "super_admin"
)

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierVisitor, TierAdmin, TierSuperAdmin:
		return t, nil
	}
	return "", model.Validation("tier", "must be one of visitor, admin, super_admin")
}

// Role is the session role a tier unlocks.
func (t Tier) Role() session.Role {
	switch t {
	case TierAdmin:
		return session.RoleAdmin
	case TierSuperAdmin:
		return session.RoleSuperAdmin
	default:
		return session.RoleVisitor
	}
}

// Secret names the stored password a challenge is checked against.
type Secret string

// Secrets.
const (
	SecretNone               Secret = ""
	SecretUserPassword       Secret = "user_password"
	SecretAdminPassword      Secret = "admin_password"
	SecretSuperAdminPassword Secret = "super_admin_password"
)

// Challenge describes what a client must present to unlock a tier.
type Challenge struct {
	Tier             Tier   `json:"tier"`
	RequiresPassword bool   `json:"requires_password"`
	Secret           Secret `json:"-"`
	TrackVisitors    bool   `json:"track_visitors"`
}

// Credentials are presented to Unlock.
type Credentials struct {
	Tier        Tier
	Password    string
	VisitorName string
}

// Directory is the storage the engine verifies admin and visitor passwords against.
type Directory interface {
	ListActiveAdmins(ctx context.Context, festivalID int64) ([]model.Admin, error)
	GetUserPasswordByDigest(ctx context.Context, festivalID int64, digest string) (model.UserPassword, error)
	IncrementUserPasswordUsage(ctx context.Context, festivalID, id int64) error
}

// Engine verifies credentials for each tier.
type Engine struct {
	dir       Directory
	digestKey []byte
}

// NewEngine creates an engine. digestKey must match the key used when visitor
// passwords were stored.
func NewEngine(dir Directory, digestKey []byte) *Engine {
	return &Engine{dir: dir, digestKey: digestKey}
}

// Challenge reports the challenge for tier on f.
func (e *Engine) Challenge(f *model.Festival, tier Tier) Challenge {
	switch tier {
	case TierAdmin:
		return Challenge{Tier: tier, RequiresPassword: true, Secret: SecretAdminPassword}
	case TierSuperAdmin:
		return Challenge{Tier: tier, RequiresPassword: true, Secret: SecretSuperAdminPassword}
	default:
		if !f.RequiresPassword {
			return Challenge{Tier: TierVisitor}
		}
		return Challenge{Tier: TierVisitor, RequiresPassword: true, Secret: SecretUserPassword, TrackVisitors: true}
	}
}

// Challenges returns the challenge of every tier in ascending order.
func (e *Engine) Challenges(f *model.Festival) []Challenge {
	return []Challenge{
		e.Challenge(f, TierVisitor),
		e.Challenge(f, TierAdmin),
		e.Challenge(f, TierSuperAdmin),
	}
}

// Unlock verifies creds against f and returns the session to store under the
// festival code. Any mismatch yields model.ErrInvalidCredentials without
// saying which check failed.
func (e *Engine) Unlock(ctx context.Context, f *model.Festival, creds Credentials) (session.Session, error) {
	switch creds.Tier {
	case TierVisitor:
		return e.unlockVisitor(ctx, f, creds)
	case TierAdmin:
		return e.unlockAdmin(ctx, f, creds.Password)
	case TierSuperAdmin:
		ok, err := auth.VerifySecret(creds.Password, f.SuperAdminPassword)
		if err != nil {
			return session.Session{}, fmt.Errorf("verifying super admin password: %w", err)
		}
		if !ok {
			return session.Session{}, model.ErrInvalidCredentials
		}
		return session.SuperAdmin(), nil
	}
	return session.Session{}, model.Validation("tier", "must be one of visitor, admin, super_admin")
}

func (e *Engine) unlockVisitor(ctx context.Context, f *model.Festival, creds Credentials) (session.Session, error) {
	name := strings.TrimSpace(creds.VisitorName)
	if !f.RequiresPassword {
		return session.Visitor(truncateName(name)), nil
	}

	if name == "" {
		return session.Session{}, model.Validation("visitor_name", "is required")
	}
	if utf8.RuneCountInString(name) > MaxVisitorNameLength {
		return session.Session{}, model.Validation("visitor_name", fmt.Sprintf("must be at most %d characters", MaxVisitorNameLength))
	}
	if creds.Password == "" {
		return session.Session{}, model.ErrInvalidCredentials
	}

	if f.UserPassword != "" {
		ok, err := auth.VerifySecret(creds.Password, f.UserPassword)
		if err != nil {
			return session.Session{}, fmt.Errorf("verifying festival visitor password: %w", err)
		}
		if ok {
			return session.Visitor(name), nil
		}
	}

	p, err := e.dir.GetUserPasswordByDigest(ctx, f.ID, auth.Digest(e.digestKey, creds.Password))
	if errors.Is(err, model.ErrNotFound) {
		return session.Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("looking up visitor password: %w", err)
	}
	if !p.IsActive {
		return session.Session{}, model.ErrInvalidCredentials
	}
	ok, err := auth.VerifySecret(creds.Password, p.Password)
	if err != nil {
		return session.Session{}, fmt.Errorf("verifying visitor password: %w", err)
	}
	if !ok {
		return session.Session{}, model.ErrInvalidCredentials
	}
	if err := e.dir.IncrementUserPasswordUsage(ctx, f.ID, p.ID); err != nil {
		return session.Session{}, fmt.Errorf("counting visitor password usage: %w", err)
	}
	return session.Visitor(name), nil
}

func (e *Engine) unlockAdmin(ctx context.Context, f *model.Festival, password string) (session.Session, error) {
	if password == "" {
		return session.Session{}, model.ErrInvalidCredentials
	}
	admins, err := e.dir.ListActiveAdmins(ctx, f.ID)
	if err != nil {
		return session.Session{}, fmt.Errorf("listing admins: %w", err)
	}
	for _, a := range admins {
		ok, err := auth.VerifySecret(password, a.AdminPasswordHash)
		if err != nil {
			return session.Session{}, fmt.Errorf("verifying admin password: %w", err)
		}
		if ok {
			return session.Admin(a.ID), nil
		}
	}
	return session.Session{}, model.ErrInvalidCredentials
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxVisitorNameLength {
		return name
	}
	return string([]rune(name)[:MaxVisitorNameLength])
}

// Capability is an operation class gated by session role.
type Capability int

// Capabilities.
const (
	// CapView reads festival data.
	CapView Capability = iota
	// CapManage mutates transactions, references and visitor passwords.
	CapManage
	// CapSuperAdmin manages admins, codes, dates and the visitor gate.
	CapSuperAdmin
)

func (c Capability) String() string {
	switch c {
	case CapView:
		return "view"
	case CapManage:
		return "manage"
	case CapSuperAdmin:
		return "super_admin"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// Allows reports whether sess may exercise c on f. A nil sess means the
// client has not unlocked f.
func Allows(f *model.Festival, sess *session.Session, c Capability) bool {
	switch c {
	case CapView:
		return sess != nil || !f.RequiresPassword
	case CapManage:
		return sess != nil && (sess.IsAdmin() || sess.IsSuperAdmin())
	case CapSuperAdmin:
		return sess != nil && sess.IsSuperAdmin()
	}
	return false
}

// Unlocked reports whether sess is exactly the given tier. An admin session
// does not count as super admin, nor the reverse.
func Unlocked(sess *session.Session, tier Tier) bool {
	return sess != nil && sess.Role == tier.Role()
}
