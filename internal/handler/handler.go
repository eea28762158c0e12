// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"time"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/service"
	"github.com/olegiv/festivo-go/internal/session"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	svc      *service.Services
	sessions session.Store
	login    *middleware.LoginProtection
	logger   *slog.Logger
}

// New creates the API handler. A nil login disables unlock throttling.
func New(svc *service.Services, sessions session.Store, login *middleware.LoginProtection, logger *slog.Logger) *Handler {
	if login == nil {
		login = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, sessions: sessions, login: login, logger: logger}
}

// festivalView is the public shape of a festival.
type festivalView struct {
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	Organiser        string             `json:"organiser,omitempty"`
	RequiresPassword bool               `json:"requires_password"`
	CEStartDate      string             `json:"ce_start_date"`
	CEEndDate        string             `json:"ce_end_date"`
	EventStartDate   *string            `json:"event_start_date"`
	EventEndDate     *string            `json:"event_end_date"`
	Challenges       []access.Challenge `json:"challenges"`
	CreatedAt        time.Time          `json:"created_at"`
}

func (h *Handler) festivalView(f *model.Festival) festivalView {
	return festivalView{
		Code:             f.Code,
		Name:             f.Name,
		Organiser:        f.Organiser,
		RequiresPassword: f.RequiresPassword,
		CEStartDate:      model.FormatDate(f.CEStartDate),
		CEEndDate:        model.FormatDate(f.CEEndDate),
		EventStartDate:   optionalDate(f.EventStartDate),
		EventEndDate:     optionalDate(f.EventEndDate),
		Challenges:       h.svc.Access.Challenges(f),
		CreatedAt:        f.CreatedAt,
	}
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := model.FormatDate(*t)
	return &s
}

type collectionView struct {
	ID int64 `json:"id"`
	transfer.CollectionRow
	CreatedAt time.Time `json:"created_at"`
}

type expenseView struct {
	ID int64 `json:"id"`
	transfer.ExpenseRow
	CreatedAt time.Time `json:"created_at"`
}

func collectionViews(cols []model.Collection) []collectionView {
	out := make([]collectionView, 0, len(cols))
	for _, c := range cols {
		out = append(out, collectionView{ID: c.ID, CollectionRow: transfer.CollectionRowFrom(c), CreatedAt: c.CreatedAt})
	}
	return out
}

func expenseViews(exps []model.Expense) []expenseView {
	out := make([]expenseView, 0, len(exps))
	for _, e := range exps {
		out = append(out, expenseView{ID: e.ID, ExpenseRow: transfer.ExpenseRowFrom(e), CreatedAt: e.CreatedAt})
	}
	return out
}

type importView struct {
	BatchID     string           `json:"batch_id"`
	Kind        transfer.Kind    `json:"kind"`
	Count       int              `json:"count"`
	Collections []collectionView `json:"collections,omitempty"`
	Expenses    []expenseView    `json:"expenses,omitempty"`
}

func newImportView(res service.ImportResult) importView {
	v := importView{BatchID: res.BatchID, Kind: res.Kind, Count: res.Count}
	if len(res.Collections) > 0 {
		v.Collections = collectionViews(res.Collections)
	}
	if len(res.Expenses) > 0 {
		v.Expenses = expenseViews(res.Expenses)
	}
	return v
}
