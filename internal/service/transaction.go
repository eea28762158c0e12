// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// TransactionService records, imports and exports collections and expenses.
type TransactionService struct {
	deps
	validator *transfer.Validator
}

// ImportResult summarises a committed batch.
type ImportResult struct {
	BatchID     string             `json:"batch_id"`
	Kind        transfer.Kind      `json:"kind"`
	Count       int                `json:"count"`
	Collections []model.Collection `json:"collections,omitempty"`
	Expenses    []model.Expense    `json:"expenses,omitempty"`
}

// validationContext loads the reference tables and admins a batch of kind is
// checked against.
func (s *TransactionService) validationContext(ctx context.Context, f *model.Festival, kind transfer.Kind, actor session.Session) (transfer.ValidationContext, error) {
	groupKind, modeKind := model.ReferenceGroup, model.ReferenceCollectionMode
	if kind == transfer.KindExpense {
		groupKind, modeKind = model.ReferenceCategory, model.ReferenceExpenseMode
	}

	groups, err := s.store.ListReferences(ctx, groupKind, f.ID)
	if err != nil {
		return transfer.ValidationContext{}, fmt.Errorf("loading %s: %w", groupKind, err)
	}
	modes, err := s.store.ListReferences(ctx, modeKind, f.ID)
	if err != nil {
		return transfer.ValidationContext{}, fmt.Errorf("loading %s: %w", modeKind, err)
	}
	admins, err := s.store.ListActiveAdmins(ctx, f.ID)
	if err != nil {
		return transfer.ValidationContext{}, fmt.Errorf("loading admins: %w", err)
	}
	ids := make([]int64, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}

	return transfer.ValidationContext{
		Window:   f.Window(),
		Groups:   model.ReferenceNames(groups),
		Modes:    model.ReferenceNames(modes),
		AdminIDs: ids,
		Actor:    actor,
	}, nil
}

// Import validates raw as a batch of kind and inserts every row in one
// transaction. Nothing is written unless every row is valid.
func (s *TransactionService) Import(ctx context.Context, f *model.Festival, actor session.Session, kind transfer.Kind, format transfer.Format, raw []byte) (ImportResult, error) {
	vc, err := s.validationContext(ctx, f, kind, actor)
	if err != nil {
		return ImportResult{}, err
	}

	var batch *transfer.Batch
	if format == transfer.FormatCSV {
		batch, err = s.validator.ValidateCSV(bytes.NewReader(raw), kind, vc)
	} else {
		batch, err = s.validator.ValidateBatch(raw, kind, vc)
	}
	if err != nil {
		return ImportResult{}, err
	}

	action := model.ActionCollectionsImported
	if kind == transfer.KindExpense {
		action = model.ActionExpensesImported
	}
	return s.insert(ctx, f, actor, batch, action, string(format))
}

// Create validates and inserts a single row given as a JSON object.
func (s *TransactionService) Create(ctx context.Context, f *model.Festival, actor session.Session, kind transfer.Kind, raw []byte) (ImportResult, error) {
	vc, err := s.validationContext(ctx, f, kind, actor)
	if err != nil {
		return ImportResult{}, err
	}

	wrapped := make([]byte, 0, len(raw)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, bytes.TrimSpace(raw)...)
	wrapped = append(wrapped, ']')
	batch, err := s.validator.ValidateBatch(wrapped, kind, vc)
	if err != nil {
		return ImportResult{}, unwrapSingleRow(err)
	}

	action := model.ActionCollectionCreated
	if kind == transfer.KindExpense {
		action = model.ActionExpenseCreated
	}
	return s.insert(ctx, f, actor, batch, action, "form")
}

// unwrapSingleRow drops the row number from errors about a lone row.
func unwrapSingleRow(err error) error {
	var re *transfer.RowError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func (s *TransactionService) insert(ctx context.Context, f *model.Festival, actor session.Session, batch *transfer.Batch, action, source string) (ImportResult, error) {
	now := s.timestamp()
	batchID := uuid.NewString()

	return activity.Do(ctx, s.emitter, func() (ImportResult, activity.Entry, error) {
		res := ImportResult{BatchID: batchID, Kind: batch.Kind, Count: batch.Len()}
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			for _, c := range batch.Collections {
				c.FestivalID = f.ID
				c.CreatedAt = now
				created, err := q.CreateCollection(ctx, c)
				if err != nil {
					return err
				}
				res.Collections = append(res.Collections, created)
			}
			for _, e := range batch.Expenses {
				e.FestivalID = f.ID
				e.CreatedAt = now
				created, err := q.CreateExpense(ctx, e)
				if err != nil {
					return err
				}
				res.Expenses = append(res.Expenses, created)
			}
			return nil
		})
		if err != nil {
			return ImportResult{}, activity.Entry{}, fmt.Errorf("inserting %s batch: %w", batch.Kind, err)
		}

		s.logger.Info("transactions recorded", "category", model.EventCategoryImport,
			"festival_id", f.ID, "kind", batch.Kind, "count", res.Count, "batch_id", batchID)
		entry := activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: action,
			Details:    map[string]any{"batch_id": batchID, "count": res.Count, "source": source},
			TargetType: string(batch.Kind),
		}
		if res.Count == 1 {
			if len(res.Collections) == 1 {
				entry.TargetID = idString(res.Collections[0].ID)
			} else {
				entry.TargetID = idString(res.Expenses[0].ID)
			}
		}
		return res, entry, nil
	})
}

// ListCollections returns the collections of f within filter.
func (s *TransactionService) ListCollections(ctx context.Context, f *model.Festival, filter store.DateFilter) ([]model.Collection, error) {
	return s.store.ListCollections(ctx, f.ID, filter)
}

// ListExpenses returns the expenses of f within filter.
func (s *TransactionService) ListExpenses(ctx context.Context, f *model.Festival, filter store.DateFilter) ([]model.Expense, error) {
	return s.store.ListExpenses(ctx, f.ID, filter)
}

// canDelete reports whether actor may delete a row created by createdBy.
// Admins may only delete their own rows.
func canDelete(actor session.Session, createdBy *int64) bool {
	if actor.IsSuperAdmin() {
		return true
	}
	return actor.IsAdmin() && createdBy != nil && *createdBy == *actor.AdminID
}

// DeleteCollection removes one collection.
func (s *TransactionService) DeleteCollection(ctx context.Context, f *model.Festival, actor session.Session, id int64) error {
	c, err := s.store.GetCollection(ctx, f.ID, id)
	if err != nil {
		return err
	}
	if !canDelete(actor, c.CreatedByAdminID) {
		return model.ErrForbidden
	}
	_, err = activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.DeleteCollection(ctx, f.ID, id); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionCollectionDeleted,
			Details:    map[string]any{"name": c.Name, "amount": c.Amount, "date": model.FormatDate(c.Date)},
			TargetType: string(transfer.KindCollection),
			TargetID:   idString(id),
		}, nil
	})
	return err
}

// DeleteExpense removes one expense.
func (s *TransactionService) DeleteExpense(ctx context.Context, f *model.Festival, actor session.Session, id int64) error {
	e, err := s.store.GetExpense(ctx, f.ID, id)
	if err != nil {
		return err
	}
	if !canDelete(actor, e.CreatedByAdminID) {
		return model.ErrForbidden
	}
	_, err = activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.DeleteExpense(ctx, f.ID, id); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionExpenseDeleted,
			Details:    map[string]any{"item": e.Item, "total_amount": e.TotalAmount, "date": model.FormatDate(e.Date)},
			TargetType: string(transfer.KindExpense),
			TargetID:   idString(id),
		}, nil
	})
	return err
}

// Export writes the transactions of kind in format to w, in a shape Import
// accepts back.
func (s *TransactionService) Export(ctx context.Context, f *model.Festival, kind transfer.Kind, format transfer.Format, filter store.DateFilter, w io.Writer) error {
	exp := transfer.NewExporter(format)
	switch kind {
	case transfer.KindCollection:
		cols, err := s.store.ListCollections(ctx, f.ID, filter)
		if err != nil {
			return err
		}
		return exp.WriteCollections(w, cols)
	case transfer.KindExpense:
		exps, err := s.store.ListExpenses(ctx, f.ID, filter)
		if err != nil {
			return err
		}
		return exp.WriteExpenses(w, exps)
	}
	return model.Validation("kind", "must be collection or expense")
}
