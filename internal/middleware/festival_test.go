// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

// aliasResolver resolves current codes and aliases from a fixed table.
type aliasResolver map[string]model.Festival

func (a aliasResolver) Resolve(_ context.Context, code string) (model.Festival, error) {
	f, ok := a[strings.ToUpper(code)]
	if !ok {
		return model.Festival{}, model.ErrNotFound
	}
	return f, nil
}

// adminTable holds the admins of festival 1 by id.
type adminTable map[int64]model.Admin

func (a adminTable) Get(_ context.Context, f *model.Festival, id int64) (model.Admin, error) {
	admin, ok := a[id]
	if !ok || admin.FestivalID != f.ID {
		return model.Admin{}, model.ErrNotFound
	}
	return admin, nil
}

var testAdmins = adminTable{
	7: {ID: 7, FestivalID: 1, IsActive: true},
	8: {ID: 8, FestivalID: 1, IsActive: false},
}

func festivalRouter(t *testing.T, sessions session.Store, c access.Capability) http.Handler {
	t.Helper()
	gated := model.Festival{ID: 1, Code: "NEWCODE1", RequiresPassword: true}
	open := model.Festival{ID: 2, Code: "OPENFEST"}
	resolver := aliasResolver{
		"NEWCODE1": gated,
		"OLDCODE1": gated,
		"OPENFEST": open,
	}

	r := chi.NewRouter()
	r.Route("/f/{code}", func(r chi.Router) {
		r.Use(LoadFestival(resolver, testAdmins, sessions))
		r.With(Require(c, nil)).Get("/", func(w http.ResponseWriter, r *http.Request) {
			f := GetFestival(r)
			_, _ = w.Write([]byte(f.Code + ":" + string(Actor(r).Role)))
		})
	})
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestLoadFestivalNotFound(t *testing.T) {
	h := festivalRouter(t, session.NewMemoryStore(), access.CapView)

	rr := get(h, "/f/NOPE1234/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"not_found"`)
}

func TestRequireView(t *testing.T) {
	sessions := session.NewMemoryStore()
	h := festivalRouter(t, sessions, access.CapView)

	// Open festivals are readable without unlocking.
	rr := get(h, "/f/openfest/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OPENFEST:", rr.Body.String())

	rr = get(h, "/f/NEWCODE1/")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	require.NoError(t, sessions.Set(context.Background(), "NEWCODE1", session.Visitor("Asha")))
	rr = get(h, "/f/NEWCODE1/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "NEWCODE1:visitor", rr.Body.String())
}

func TestRequireManage(t *testing.T) {
	sessions := session.NewMemoryStore()
	h := festivalRouter(t, sessions, access.CapManage)
	ctx := context.Background()

	require.NoError(t, sessions.Set(ctx, "NEWCODE1", session.Visitor("Asha")))
	assert.Equal(t, http.StatusForbidden, get(h, "/f/NEWCODE1/").Code)

	require.NoError(t, sessions.Set(ctx, "NEWCODE1", session.Admin(7)))
	assert.Equal(t, http.StatusOK, get(h, "/f/NEWCODE1/").Code)

	require.NoError(t, sessions.Set(ctx, "NEWCODE1", session.SuperAdmin()))
	assert.Equal(t, http.StatusOK, get(h, "/f/NEWCODE1/").Code)
}

func TestLoadFestivalDropsRemovedAdmin(t *testing.T) {
	sessions := session.NewMemoryStore()
	h := festivalRouter(t, sessions, access.CapManage)
	ctx := context.Background()

	tests := []struct {
		name    string
		adminID int64
	}{
		{"deleted admin", 99},
		{"deactivated admin", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, sessions.Set(ctx, "NEWCODE1", session.Admin(tt.adminID)))
			assert.Equal(t, http.StatusUnauthorized, get(h, "/f/NEWCODE1/").Code)

			_, ok := sessions.Get(ctx, "NEWCODE1")
			assert.False(t, ok, "stale session is cleared")
		})
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	sessions := session.NewMemoryStore()
	h := festivalRouter(t, sessions, access.CapSuperAdmin)

	require.NoError(t, sessions.Set(context.Background(), "NEWCODE1", session.Admin(7)))
	rr := get(h, "/f/NEWCODE1/")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "super_admin")
}

func TestSessionsFollowCurrentCode(t *testing.T) {
	sessions := session.NewMemoryStore()
	h := festivalRouter(t, sessions, access.CapView)
	ctx := context.Background()

	// A session held under the old code does not unlock the renamed festival.
	require.NoError(t, sessions.Set(ctx, "OLDCODE1", session.SuperAdmin()))
	assert.Equal(t, http.StatusUnauthorized, get(h, "/f/OLDCODE1/").Code)

	// The alias resolves to the festival and uses the current code's session.
	require.NoError(t, sessions.Set(ctx, "NEWCODE1", session.Visitor("Asha")))
	rr := get(h, "/f/OLDCODE1/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "NEWCODE1:visitor", rr.Body.String())

	// Sessions never leak across festivals.
	assert.Equal(t, http.StatusOK, get(h, "/f/OPENFEST/").Code)
	assert.Equal(t, "OPENFEST:", get(h, "/f/OPENFEST/").Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	assert.Equal(t, "192.168.1.1", ClientIP(req))

	req.RemoteAddr = "10.0.0.1"
	assert.Equal(t, "10.0.0.1", ClientIP(req))
}
