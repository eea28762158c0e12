// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
)

func referenceKind(r *http.Request) model.ReferenceKind {
	return model.ReferenceKind(chi.URLParam(r, "kind"))
}

// ListReferences handles GET /references/{kind}.
func (h *Handler) ListReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := h.svc.References.List(r.Context(), middleware.GetFestival(r), referenceKind(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if refs == nil {
		refs = []model.Reference{}
	}
	WriteSuccess(w, refs, nil)
}

// CreateReference handles POST /references/{kind}.
func (h *Handler) CreateReference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ref, err := h.svc.References.Add(r.Context(), middleware.GetFestival(r), middleware.Actor(r), referenceKind(r), req.Name)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, ref)
}

// DeleteReference handles DELETE /references/{kind}/{id}.
func (h *Handler) DeleteReference(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "reference")
	if !ok {
		return
	}
	if err := h.svc.References.Remove(r.Context(), middleware.GetFestival(r), middleware.Actor(r), referenceKind(r), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}
