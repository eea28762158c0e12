// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

const festivalColumns = `id, code, name, organiser, requires_password, user_password, super_admin_password,
	ce_start_date, ce_end_date, event_start_date, event_end_date, created_at, updated_at`

func scanFestival(row scanner) (model.Festival, error) {
	var f model.Festival
	var ceStart, ceEnd string
	var eventStart, eventEnd sql.NullString
	err := row.Scan(
		&f.ID, &f.Code, &f.Name, &f.Organiser, &f.RequiresPassword, &f.UserPassword, &f.SuperAdminPassword,
		&ceStart, &ceEnd, &eventStart, &eventEnd, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return f, notFound(err)
	}
	if f.CEStartDate, err = scanDate(ceStart); err != nil {
		return f, err
	}
	if f.CEEndDate, err = scanDate(ceEnd); err != nil {
		return f, err
	}
	if f.EventStartDate, err = scanNullDate(eventStart); err != nil {
		return f, err
	}
	if f.EventEndDate, err = scanNullDate(eventEnd); err != nil {
		return f, err
	}
	return f, nil
}

// CreateFestivalParams holds the values for a new festival row.
type CreateFestivalParams struct {
	Code               string
	Name               string
	Organiser          string
	RequiresPassword   bool
	UserPassword       string
	SuperAdminPassword string
	Dates              model.FestivalDates
	CreatedAt          time.Time
}

// CreateFestival inserts a festival.
func (q *Queries) CreateFestival(ctx context.Context, arg CreateFestivalParams) (model.Festival, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO festivals (
		code, name, organiser, requires_password, user_password, super_admin_password,
		ce_start_date, ce_end_date, event_start_date, event_end_date, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Code, arg.Name, arg.Organiser, arg.RequiresPassword, arg.UserPassword, arg.SuperAdminPassword,
		model.FormatDate(arg.Dates.CEStart), model.FormatDate(arg.Dates.CEEnd),
		nullDate(arg.Dates.EventStart), nullDate(arg.Dates.EventEnd),
		arg.CreatedAt, arg.CreatedAt,
	)
	if err != nil {
		return model.Festival{}, duplicate(err, "festival code", arg.Code)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Festival{}, err
	}
	return q.GetFestivalByID(ctx, id)
}

// GetFestivalByID returns a festival by id.
func (q *Queries) GetFestivalByID(ctx context.Context, id int64) (model.Festival, error) {
	return scanFestival(q.db.QueryRowContext(ctx, `SELECT `+festivalColumns+` FROM festivals WHERE id = ?`, id))
}

// GetFestivalByCode returns a festival by its current code.
func (q *Queries) GetFestivalByCode(ctx context.Context, code string) (model.Festival, error) {
	return scanFestival(q.db.QueryRowContext(ctx, `SELECT `+festivalColumns+` FROM festivals WHERE code = ?`, code))
}

// FestivalCodeTaken reports whether code is a current festival code or a live alias.
func (q *Queries) FestivalCodeTaken(ctx context.Context, code string) (bool, error) {
	var taken bool
	err := q.db.QueryRowContext(ctx, `SELECT
		EXISTS (SELECT 1 FROM festivals WHERE code = ?)
		OR EXISTS (SELECT 1 FROM festival_code_aliases WHERE code = ?)`, code, code).Scan(&taken)
	return taken, err
}

// UpdateFestivalCode replaces the current code.
func (q *Queries) UpdateFestivalCode(ctx context.Context, id int64, code string, now time.Time) error {
	res, err := q.db.ExecContext(ctx, `UPDATE festivals SET code = ?, updated_at = ? WHERE id = ?`, code, now, id)
	if err := requireAffected(res, err); err != nil {
		return duplicate(err, "festival code", code)
	}
	return nil
}

// UpdateFestivalDates replaces both date windows.
func (q *Queries) UpdateFestivalDates(ctx context.Context, id int64, dates model.FestivalDates, now time.Time) error {
	res, err := q.db.ExecContext(ctx, `UPDATE festivals
		SET ce_start_date = ?, ce_end_date = ?, event_start_date = ?, event_end_date = ?, updated_at = ?
		WHERE id = ?`,
		model.FormatDate(dates.CEStart), model.FormatDate(dates.CEEnd),
		nullDate(dates.EventStart), nullDate(dates.EventEnd), now, id,
	)
	return requireAffected(res, err)
}

// UpdateVisitorGate sets requires_password and the festival-level visitor password hash.
func (q *Queries) UpdateVisitorGate(ctx context.Context, id int64, requiresPassword bool, userPassword string, now time.Time) error {
	res, err := q.db.ExecContext(ctx, `UPDATE festivals
		SET requires_password = ?, user_password = ?, updated_at = ?
		WHERE id = ?`, requiresPassword, userPassword, now, id)
	return requireAffected(res, err)
}

// CreateFestivalAlias keeps an old code resolving to festivalID.
func (q *Queries) CreateFestivalAlias(ctx context.Context, code string, festivalID int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO festival_code_aliases (code, festival_id, created_at) VALUES (?, ?, ?)`,
		code, festivalID, now)
	return duplicate(err, "festival code alias", code)
}

// GetFestivalIDByAlias returns the festival an alias points to.
func (q *Queries) GetFestivalIDByAlias(ctx context.Context, code string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT festival_id FROM festival_code_aliases WHERE code = ?`, code).Scan(&id)
	return id, notFound(err)
}

// ListFestivalAliases returns the live aliases of a festival, oldest first.
func (q *Queries) ListFestivalAliases(ctx context.Context, festivalID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT code FROM festival_code_aliases
		WHERE festival_id = ? ORDER BY created_at, code`, festivalID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// DeleteFestivalAlias removes an alias owned by festivalID.
func (q *Queries) DeleteFestivalAlias(ctx context.Context, festivalID int64, code string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM festival_code_aliases WHERE festival_id = ? AND code = ?`, festivalID, code)
	return requireAffected(res, err)
}

// TransactionDateRange returns the earliest and latest collection or expense date
// of a festival. Both are nil when it has no transactions.
func (q *Queries) TransactionDateRange(ctx context.Context, festivalID int64) (first, last *time.Time, err error) {
	var minDate, maxDate sql.NullString
	err = q.db.QueryRowContext(ctx, `SELECT MIN(date), MAX(date) FROM (
		SELECT date FROM collections WHERE festival_id = ?
		UNION ALL
		SELECT date FROM expenses WHERE festival_id = ?
	)`, festivalID, festivalID).Scan(&minDate, &maxDate)
	if err != nil {
		return nil, nil, err
	}
	if first, err = scanNullDate(minDate); err != nil {
		return nil, nil, err
	}
	if last, err = scanNullDate(maxDate); err != nil {
		return nil, nil, err
	}
	return first, last, nil
}
