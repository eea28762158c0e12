// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
)

// ListUserPasswords handles GET /user-passwords. Admins see their own
// passwords; the super admin sees every password of the festival.
func (h *Handler) ListUserPasswords(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.UserPasswords.List(r.Context(), middleware.GetFestival(r), middleware.Actor(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.UserPassword{}
	}
	WriteSuccess(w, list, nil)
}

// CreateUserPassword handles POST /user-passwords.
func (h *Handler) CreateUserPassword(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserPasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.svc.UserPasswords.Create(r.Context(), middleware.GetFestival(r), middleware.Actor(r), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, p)
}

// UpdateUserPassword handles PATCH /user-passwords/{id}. Only the active flag
// can change; passwords are replaced by deleting and re-creating them.
func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user password")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		WriteServiceError(w, r, model.Validation("is_active", "is required"))
		return
	}

	p, err := h.svc.UserPasswords.SetActive(r.Context(), middleware.GetFestival(r), middleware.Actor(r), id, *req.IsActive)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, p, nil)
}

// DeleteUserPassword handles DELETE /user-passwords/{id}.
func (h *Handler) DeleteUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user password")
	if !ok {
		return
	}
	if err := h.svc.UserPasswords.Delete(r.Context(), middleware.GetFestival(r), middleware.Actor(r), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}
