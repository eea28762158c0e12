// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// DefaultLifetime keeps sessions until logout for all practical purposes.
const DefaultLifetime = 365 * 24 * time.Hour

const keyPrefix = "festival:"

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool, lifetime time.Duration) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "festivo_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-festivo_session"
	}

	return sm
}

// ManagerStore is a Store kept inside the client's scs session cookie. Each
// festival code gets its own key, so one browser can hold independent sessions
// for several festivals. The request context must have passed through
// SessionManager.LoadAndSave.
type ManagerStore struct {
	sm *scs.SessionManager
}

// NewManagerStore wraps sm.
func NewManagerStore(sm *scs.SessionManager) *ManagerStore {
	return &ManagerStore{sm: sm}
}

func (m *ManagerStore) key(code string) string {
	return keyPrefix + normalizeCode(code)
}

// Get implements Store.
func (m *ManagerStore) Get(ctx context.Context, code string) (Session, bool) {
	raw := m.sm.GetBytes(ctx, m.key(code))
	if len(raw) == 0 {
		return Session{}, false
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("discarding unreadable session", "code", normalizeCode(code), "error", err)
		m.sm.Remove(ctx, m.key(code))
		return Session{}, false
	}
	return s, true
}

// Set implements Store. The session token is renewed on every login to prevent
// fixation.
func (m *ManagerStore) Set(ctx context.Context, code string, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	m.sm.Put(ctx, m.key(code), raw)
	return nil
}

// Clear implements Store.
func (m *ManagerStore) Clear(ctx context.Context, code string) error {
	m.sm.Remove(ctx, m.key(code))
	return nil
}

var _ Store = (*ManagerStore)(nil)
