// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
	"github.com/olegiv/festivo-go/internal/session"
)

type createdFestivalView struct {
	Festival        festivalView        `json:"festival"`
	DefaultAdmin    model.Admin         `json:"default_admin"`
	VisitorPassword *model.UserPassword `json:"visitor_password,omitempty"`
}

// CreateFestival handles POST /api/festivals.
func (h *Handler) CreateFestival(w http.ResponseWriter, r *http.Request) {
	var in service.CreateFestivalInput
	if !decodeJSON(w, r, &in) {
		return
	}

	created, err := h.svc.Festivals.Create(r.Context(), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	WriteCreated(w, createdFestivalView{
		Festival:        h.festivalView(&created.Festival),
		DefaultAdmin:    created.DefaultAdmin,
		VisitorPassword: created.VisitorPassword,
	})
}

// ShowFestival handles GET /api/festivals/{code}. It is public: clients need
// the challenges before they can unlock anything.
func (h *Handler) ShowFestival(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.festivalView(middleware.GetFestival(r)), nil)
}

type loginRequest struct {
	Tier        string `json:"tier"`
	Password    string `json:"password"`
	VisitorName string `json:"visitor_name"`
}

type sessionView struct {
	Code     string           `json:"code"`
	Unlocked bool             `json:"unlocked"`
	Session  *session.Session `json:"session"`
}

// Login handles POST /api/festivals/{code}/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tier, err := access.ParseTier(req.Tier)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	ip := middleware.ClientIP(r)
	key := middleware.LoginKey(f.ID, tier, ip)
	if locked, remaining := h.login.IsLocked(key); locked {
		w.Header().Set("Retry-After", middleware.RetryAfter(remaining))
		WriteError(w, http.StatusTooManyRequests, "locked", "Too many failed attempts. Please try again later.", nil)
		return
	}

	sess, err := h.svc.Access.Unlock(r.Context(), f, access.Credentials{
		Tier:        tier,
		Password:    req.Password,
		VisitorName: req.VisitorName,
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			h.login.RecordFailedAttempt(key)
			_ = h.svc.Events.Warn(r.Context(), model.EventCategoryAuth, "Unlock rejected", map[string]any{
				"festival_id": f.ID,
				"tier":        string(tier),
				"ip":          ip,
			})
		}
		WriteServiceError(w, r, err)
		return
	}
	h.login.RecordSuccessfulLogin(key)

	if err := h.sessions.Set(r.Context(), f.Code, sess); err != nil {
		h.logger.Error("failed to store session", "festival_id", f.ID, "error", err)
		WriteInternalError(w, "Failed to store session")
		return
	}
	// Access logging failures are logged by the service and never block a login.
	_ = h.svc.AccessLogs.Record(r.Context(), f, sess, r.UserAgent(), ip)

	WriteSuccess(w, sessionView{Code: f.Code, Unlocked: true, Session: &sess}, nil)
}

// Logout handles POST /api/festivals/{code}/logout. Only the session for
// this festival is cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)
	if err := h.sessions.Clear(r.Context(), f.Code); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// Session handles GET /api/festivals/{code}/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)
	sess := middleware.GetSession(r)
	WriteSuccess(w, sessionView{Code: f.Code, Unlocked: sess != nil, Session: sess}, nil)
}
