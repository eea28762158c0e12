// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// Transactions serves one transaction kind under a festival.
type Transactions struct {
	h    *Handler
	kind transfer.Kind
}

// Transactions returns the handlers for kind.
func (h *Handler) Transactions(kind transfer.Kind) *Transactions {
	return &Transactions{h: h, kind: kind}
}

// List handles GET /collections and GET /expenses.
func (t *Transactions) List(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)
	filter, err := dateFilter(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	svc := t.h.svc.Transactions
	if t.kind == transfer.KindExpense {
		exps, err := svc.ListExpenses(r.Context(), f, filter)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteSuccess(w, expenseViews(exps), nil)
		return
	}

	cols, err := svc.ListCollections(r.Context(), f, filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, collectionViews(cols), nil)
}

// Create handles POST /collections and POST /expenses with a single row object.
func (t *Transactions) Create(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r, MaxBodyBytes)
	if !ok {
		return
	}

	res, err := t.h.svc.Transactions.Create(r.Context(), middleware.GetFestival(r), middleware.Actor(r), t.kind, raw)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, newImportView(res))
}

// Import handles POST /collections/import and POST /expenses/import. The body
// is a JSON array, or CSV when ?format=csv or Content-Type is text/csv. The
// batch is stored entirely or not at all.
func (t *Transactions) Import(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r, MaxImportBytes)
	if !ok {
		return
	}

	format := transfer.FormatJSON
	if isCSV(r) {
		format = transfer.FormatCSV
	}

	res, err := t.h.svc.Transactions.Import(r.Context(), middleware.GetFestival(r), middleware.Actor(r), t.kind, format, raw)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, newImportView(res))
}

// Export handles GET /collections/export and GET /expenses/export.
func (t *Transactions) Export(w http.ResponseWriter, r *http.Request) {
	f := middleware.GetFestival(r)

	format, err := transfer.ParseFormat(strings.ToLower(r.URL.Query().Get("format")))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	filter, err := dateFilter(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	// Buffer so that a failure can still be reported as a JSON error.
	var buf bytes.Buffer
	if err := t.h.svc.Transactions.Export(r.Context(), f, t.kind, format, filter, &buf); err != nil {
		WriteServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s-%ss.%s", strings.ToLower(f.Code), t.kind, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Delete handles DELETE /collections/{id} and DELETE /expenses/{id}.
func (t *Transactions) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, string(t.kind))
	if !ok {
		return
	}

	f, actor := middleware.GetFestival(r), middleware.Actor(r)
	var err error
	if t.kind == transfer.KindExpense {
		err = t.h.svc.Transactions.DeleteExpense(r.Context(), f, actor, id)
	} else {
		err = t.h.svc.Transactions.DeleteCollection(r.Context(), f, actor, id)
	}
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// dateFilter reads the optional from and to query parameters.
func dateFilter(r *http.Request) (store.DateFilter, error) {
	var filter store.DateFilter
	q := r.URL.Query()

	parse := func(name string) (*time.Time, error) {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			return nil, nil
		}
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, model.Validation(name, "must be a date in YYYY-MM-DD format")
		}
		return &d, nil
	}

	var err error
	if filter.From, err = parse("from"); err != nil {
		return filter, err
	}
	if filter.To, err = parse("to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, model.Validation("to", "must be on or after from")
	}
	return filter, nil
}
