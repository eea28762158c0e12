// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
)

// ListAdmins handles GET /admins.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.Admins.List(r.Context(), middleware.GetFestival(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	WriteSuccess(w, admins, nil)
}

// CreateAdmin handles POST /admins.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAdminInput
	if !decodeJSON(w, r, &in) {
		return
	}

	a, err := h.svc.Admins.Create(r.Context(), middleware.GetFestival(r), middleware.Actor(r), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, a)
}

// DeleteAdmin handles DELETE /admins/{id}.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "admin")
	if !ok {
		return
	}
	if err := h.svc.Admins.Delete(r.Context(), middleware.GetFestival(r), middleware.Actor(r), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// UpdateAdmin handles PATCH /admins/{id}.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "admin")
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

	a, err := h.svc.Admins.SetActive(r.Context(), middleware.GetFestival(r), middleware.Actor(r), id, *req.IsActive)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, a, nil)
}

// ChangeAdminPassword handles PUT /admins/{id}/password. The super admin may
// change any admin's password and an admin may change their own.
func (h *Handler) ChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "admin")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Admins.ChangePassword(r.Context(), middleware.GetFestival(r), middleware.Actor(r), id, req.Password); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}
