// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
)

// ChangeCode handles PUT /code. The caller's session moves to the new code so
// that the super admin stays unlocked; every other session was stored under
// the old code and is dropped with it.
func (h *Handler) ChangeCode(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	oldCode := f.Code
	updated, err := h.svc.Festivals.ChangeCode(r.Context(), f, req.Code)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	if updated.Code != oldCode {
		actor := middleware.Actor(r)
		if err := h.sessions.Clear(r.Context(), oldCode); err != nil {
			h.logger.Warn("failed to clear old-code session", "festival_id", f.ID, "error", err)
		}
		if err := h.sessions.Set(r.Context(), updated.Code, actor); err != nil {
			h.logger.Warn("failed to move session to new code", "festival_id", f.ID, "error", err)
		}
	}
	WriteSuccess(w, h.festivalView(&updated), nil)
}

// ListAliases handles GET /aliases.
func (h *Handler) ListAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.svc.Festivals.Aliases(r.Context(), middleware.GetFestival(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if aliases == nil {
		aliases = []string{}
	}
	WriteSuccess(w, aliases, nil)
}

// InvalidateAlias handles DELETE /aliases/{alias}.
func (h *Handler) InvalidateAlias(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	if err := h.svc.Festivals.InvalidateAlias(r.Context(), middleware.GetFestival(r), alias); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// UpdateDates handles PUT /dates.
func (h *Handler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	var in service.DatesInput
	if !decodeJSON(w, r, &in) {
		return
	}

	updated, err := h.svc.Festivals.UpdateDates(r.Context(), middleware.GetFestival(r), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.festivalView(&updated), nil)
}

// SetVisitorGate handles PUT /visitor-gate.
func (h *Handler) SetVisitorGate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequiresPassword *bool  `json:"requires_password"`
		UserPassword     string `json:"user_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RequiresPassword == nil {
		WriteServiceError(w, r, model.Validation("requires_password", "is required"))
		return
	}

	updated, err := h.svc.Festivals.SetVisitorGate(r.Context(), middleware.GetFestival(r), *req.RequiresPassword, req.UserPassword)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.festivalView(&updated), nil)
}

// ListActivity handles GET /activity.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	page, err := h.svc.Activity.List(r.Context(), middleware.GetFestival(r), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page.Entries, &Meta{Total: page.Total, Limit: page.Limit, Offset: page.Offset})
}

// ListAccessLogs handles GET /access-logs.
func (h *Handler) ListAccessLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	logs, err := h.svc.AccessLogs.List(r.Context(), middleware.GetFestival(r), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if logs == nil {
		logs = []model.AccessLog{}
	}
	WriteSuccess(w, logs, nil)
}
