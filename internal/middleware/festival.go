// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for festival resolution,
// capability checks and request hardening.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
	"github.com/olegiv/festivo-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for the resolved tenant.
const (
	ContextKeyFestival ContextKey = "festival"
	ContextKeySession  ContextKey = "session"
)

// URLParamCode is the route parameter carrying the festival code.
const URLParamCode = "code"

// FestivalResolver finds a festival by its current code or a live alias.
type FestivalResolver interface {
	Resolve(ctx context.Context, code string) (model.Festival, error)
}

// AdminLookup finds an admin of a festival.
type AdminLookup interface {
	Get(ctx context.Context, f *model.Festival, id int64) (model.Admin, error)
}

// LoadFestival resolves the {code} route parameter and stores the festival and
// the client's session for it in the request context. Sessions are looked up
// under the festival's current code, so a client arriving through an alias
// keeps the session it holds for the current code and nothing else. An admin
// session whose admin was deleted or deactivated is cleared.
func LoadFestival(festivals FestivalResolver, admins AdminLookup, sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := chi.URLParam(r, URLParamCode)

			f, err := festivals.Resolve(r.Context(), code)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					WriteAPIError(w, http.StatusNotFound, "not_found", "Festival not found", nil)
					return
				}
				slog.Error("failed to resolve festival", "code", code, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load festival", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyFestival, &f)
			if sess, ok := sessions.Get(ctx, f.Code); ok {
				live, err := adminStillActive(ctx, admins, &f, sess)
				if err != nil {
					slog.Error("failed to check session admin", "festival_id", f.ID, "error", err)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load session", nil)
					return
				}
				if live {
					ctx = context.WithValue(ctx, ContextKeySession, &sess)
				} else {
					slog.Info("dropping session of removed admin", "festival_id", f.ID, "admin_id", *sess.AdminID)
					if err := sessions.Clear(ctx, f.Code); err != nil {
						slog.Warn("failed to clear stale admin session", "festival_id", f.ID, "error", err)
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminStillActive reports whether sess may keep acting. Only admin sessions
// depend on a row that can disappear after unlock.
func adminStillActive(ctx context.Context, admins AdminLookup, f *model.Festival, sess session.Session) (bool, error) {
	if !sess.IsAdmin() || admins == nil {
		return true, nil
	}
	a, err := admins.Get(ctx, f, *sess.AdminID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.IsActive, nil
}

// GetFestival retrieves the resolved festival from the request context.
// Returns nil outside LoadFestival.
func GetFestival(r *http.Request) *model.Festival {
	f, ok := r.Context().Value(ContextKeyFestival).(*model.Festival)
	if !ok {
		return nil
	}
	return f
}

// GetSession retrieves the client's session for the resolved festival.
// Returns nil when the client has not unlocked it.
func GetSession(r *http.Request) *session.Session {
	s, ok := r.Context().Value(ContextKeySession).(*session.Session)
	if !ok {
		return nil
	}
	return s
}

// Actor returns the session acting on the request, or the zero session.
func Actor(r *http.Request) session.Session {
	if s := GetSession(r); s != nil {
		return *s
	}
	return session.Session{}
}

// Require creates middleware that rejects requests whose session lacks c.
// Clients that have not unlocked the festival get 401; unlocked sessions of a
// lower tier get 403. Denials are written to the event log when events is set.
func Require(c access.Capability, events *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f := GetFestival(r)
			if f == nil {
				WriteAPIError(w, http.StatusNotFound, "not_found", "Festival not found", nil)
				return
			}

			sess := GetSession(r)
			if access.Allows(f, sess, c) {
				next.ServeHTTP(w, r)
				return
			}

			if sess == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Unlock this festival first", nil)
				return
			}

			slog.Warn("access denied",
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"festival_id", f.ID,
				"session_role", sess.Role,
				"required", c.String(),
			)
			if events != nil {
				_ = events.Warn(r.Context(), model.EventCategoryAuth, "Access denied: insufficient tier", map[string]any{
					"method":       r.Method,
					"path":         r.URL.Path,
					"festival_id":  f.ID,
					"session_role": string(sess.Role),
					"required":     c.String(),
				})
			}
			WriteAPIError(w, http.StatusForbidden, "forbidden", "This action needs "+c.String()+" access", nil)
		})
	}
}
