// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/util"
)

// DateFilter optionally narrows a listing to an inclusive date range.
type DateFilter struct {
	From *time.Time
	To   *time.Time
}

func (f DateFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.From != nil {
		clause += ` AND date >= ?`
		args = append(args, model.FormatDate(*f.From))
	}
	if f.To != nil {
		clause += ` AND date <= ?`
		args = append(args, model.FormatDate(*f.To))
	}
	return clause, args
}

const collectionColumns = `id, festival_id, name, amount, group_name, mode, note, date,
	time_hour, time_minute, created_by_admin_id, created_at`

func scanCollection(row scanner) (model.Collection, error) {
	var c model.Collection
	var date string
	var createdBy sql.NullInt64
	err := row.Scan(&c.ID, &c.FestivalID, &c.Name, &c.Amount, &c.GroupName, &c.Mode, &c.Note, &date,
		&c.TimeHour, &c.TimeMinute, &createdBy, &c.CreatedAt)
	if err != nil {
		return c, notFound(err)
	}
	c.CreatedByAdminID = util.Int64Ptr(createdBy)
	c.Date, err = scanDate(date)
	return c, err
}

// CreateCollection inserts one collection.
func (q *Queries) CreateCollection(ctx context.Context, c model.Collection) (model.Collection, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO collections (
		festival_id, name, amount, group_name, mode, note, date, time_hour, time_minute, created_by_admin_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FestivalID, c.Name, c.Amount, c.GroupName, c.Mode, c.Note, model.FormatDate(c.Date),
		c.TimeHour, c.TimeMinute, util.NullInt64FromPtr(c.CreatedByAdminID), c.CreatedAt)
	if err != nil {
		return c, err
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return c, err
	}
	return c, nil
}

// GetCollection returns one collection scoped to its festival.
func (q *Queries) GetCollection(ctx context.Context, festivalID, id int64) (model.Collection, error) {
	return scanCollection(q.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE festival_id = ? AND id = ?`, festivalID, id))
}

// ListCollections returns collections ordered by date and time.
func (q *Queries) ListCollections(ctx context.Context, festivalID int64, filter DateFilter) ([]model.Collection, error) {
	clause, args := filter.where()
	rows, err := q.db.QueryContext(ctx, `SELECT `+collectionColumns+` FROM collections
		WHERE festival_id = ?`+clause+` ORDER BY date, time_hour, time_minute, id`,
		append([]any{festivalID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// DeleteCollection removes one collection.
func (q *Queries) DeleteCollection(ctx context.Context, festivalID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM collections WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}

const expenseColumns = `id, festival_id, item, pieces, price_per_piece, total_amount, category, mode, note, date,
	time_hour, time_minute, created_by_admin_id, created_at`

func scanExpense(row scanner) (model.Expense, error) {
	var e model.Expense
	var date string
	var createdBy sql.NullInt64
	err := row.Scan(&e.ID, &e.FestivalID, &e.Item, &e.Pieces, &e.PricePerPiece, &e.TotalAmount, &e.Category,
		&e.Mode, &e.Note, &date, &e.TimeHour, &e.TimeMinute, &createdBy, &e.CreatedAt)
	if err != nil {
		return e, notFound(err)
	}
	e.CreatedByAdminID = util.Int64Ptr(createdBy)
	e.Date, err = scanDate(date)
	return e, err
}

// CreateExpense inserts one expense.
func (q *Queries) CreateExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO expenses (
		festival_id, item, pieces, price_per_piece, total_amount, category, mode, note, date,
		time_hour, time_minute, created_by_admin_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FestivalID, e.Item, e.Pieces, e.PricePerPiece, e.TotalAmount, e.Category, e.Mode, e.Note,
		model.FormatDate(e.Date), e.TimeHour, e.TimeMinute, util.NullInt64FromPtr(e.CreatedByAdminID), e.CreatedAt)
	if err != nil {
		return e, err
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return e, err
	}
	return e, nil
}

// GetExpense returns one expense scoped to its festival.
func (q *Queries) GetExpense(ctx context.Context, festivalID, id int64) (model.Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE festival_id = ? AND id = ?`, festivalID, id))
}

// ListExpenses returns expenses ordered by date and time.
func (q *Queries) ListExpenses(ctx context.Context, festivalID int64, filter DateFilter) ([]model.Expense, error) {
	clause, args := filter.where()
	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses
		WHERE festival_id = ?`+clause+` ORDER BY date, time_hour, time_minute, id`,
		append([]any{festivalID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// DeleteExpense removes one expense.
func (q *Queries) DeleteExpense(ctx context.Context, festivalID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}
