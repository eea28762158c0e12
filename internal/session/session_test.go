// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Create sessions table required by sqlite3store
	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), true, 0)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name != "festivo_session" {
		t.Errorf("Cookie.Name = %q", sm.Cookie.Name)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), false, 0)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-festivo_session" {
		t.Errorf("expected __Host- cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(setupTestDB(t), true, 0)

	if sm.Lifetime != DefaultLifetime {
		t.Errorf("Lifetime = %v, want %v", sm.Lifetime, DefaultLifetime)
	}
	if sm.IdleTimeout != 0 {
		t.Errorf("IdleTimeout = %v, want none", sm.IdleTimeout)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}

	custom := New(setupTestDB(t), true, 2*time.Hour)
	if custom.Lifetime != 2*time.Hour {
		t.Errorf("Lifetime = %v, want 2h", custom.Lifetime)
	}
}

func TestSessionConstructors(t *testing.T) {
	v := Visitor("Asha")
	assert.Equal(t, RoleVisitor, v.Role)
	assert.Equal(t, "Asha", v.VisitorName)
	assert.Nil(t, v.ActorID())
	assert.False(t, v.IsAdmin())

	a := Admin(7)
	assert.True(t, a.IsAdmin())
	assert.False(t, a.IsSuperAdmin())
	require.NotNil(t, a.ActorID())
	assert.Equal(t, int64(7), *a.ActorID())

	s := SuperAdmin()
	assert.True(t, s.IsSuperAdmin())
	assert.False(t, s.IsAdmin())
	assert.Nil(t, s.ActorID())
}

// storeContract exercises the behaviour every Store must provide.
func storeContract(t *testing.T, ctx context.Context, store Store) {
	t.Helper()

	_, ok := store.Get(ctx, "ABCDEFGH")
	assert.False(t, ok, "empty store should have no session")

	require.NoError(t, store.Set(ctx, "ABCDEFGH", Visitor("Asha")))
	require.NoError(t, store.Set(ctx, "ZZZZZZZZ", Admin(3)))

	got, ok := store.Get(ctx, "abcdefgh")
	require.True(t, ok, "lookup should ignore case")
	assert.Equal(t, RoleVisitor, got.Role)
	assert.Equal(t, "Asha", got.VisitorName)

	other, ok := store.Get(ctx, "ZZZZZZZZ")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, other.Role)
	require.NotNil(t, other.AdminID)
	assert.Equal(t, int64(3), *other.AdminID)

	require.NoError(t, store.Clear(ctx, "ABCDEFGH"))
	_, ok = store.Get(ctx, "ABCDEFGH")
	assert.False(t, ok, "cleared session should be gone")

	_, ok = store.Get(ctx, "ZZZZZZZZ")
	assert.True(t, ok, "clearing one festival must not affect another")

	require.NoError(t, store.Set(ctx, "ZZZZZZZZ", SuperAdmin()))
	replaced, ok := store.Get(ctx, "ZZZZZZZZ")
	require.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, replaced.Role)
	assert.Nil(t, replaced.AdminID)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, context.Background(), NewMemoryStore())
}

func TestManagerStore(t *testing.T) {
	sm := New(setupTestDB(t), true, 0)
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	storeContract(t, ctx, NewManagerStore(sm))
}

func TestManagerStore_DiscardsCorruptSession(t *testing.T) {
	sm := New(setupTestDB(t), true, 0)
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	sm.Put(ctx, keyPrefix+"ABCDEFGH", []byte("not json"))
	store := NewManagerStore(sm)

	_, ok := store.Get(ctx, "ABCDEFGH")
	assert.False(t, ok)
	assert.False(t, sm.Exists(ctx, keyPrefix+"ABCDEFGH"), "corrupt entry should be removed")
}
