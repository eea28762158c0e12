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

const adminColumns = `id, festival_id, admin_code, admin_name, admin_password_hash,
	max_user_passwords, is_active, created_by, created_at`

func scanAdmin(row scanner) (model.Admin, error) {
	var a model.Admin
	var createdBy sql.NullInt64
	err := row.Scan(&a.ID, &a.FestivalID, &a.AdminCode, &a.AdminName, &a.AdminPasswordHash,
		&a.MaxUserPasswords, &a.IsActive, &createdBy, &a.CreatedAt)
	if err != nil {
		return a, notFound(err)
	}
	a.CreatedBy = util.Int64Ptr(createdBy)
	return a, nil
}

func scanAdmins(rows *sql.Rows, err error) ([]model.Admin, error) {
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var admins []model.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// CreateAdminParams holds the values for a new admin row.
type CreateAdminParams struct {
	FestivalID        int64
	AdminCode         string
	AdminName         string
	AdminPasswordHash string
	MaxUserPasswords  int
	CreatedBy         *int64
	CreatedAt         time.Time
}

// CreateAdmin inserts an active admin.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (model.Admin, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO admins (
		festival_id, admin_code, admin_name, admin_password_hash, max_user_passwords, is_active, created_by, created_at
	) VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		arg.FestivalID, arg.AdminCode, arg.AdminName, arg.AdminPasswordHash, arg.MaxUserPasswords,
		util.NullInt64FromPtr(arg.CreatedBy), arg.CreatedAt,
	)
	if err != nil {
		return model.Admin{}, duplicate(err, "admin code", arg.AdminCode)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Admin{}, err
	}
	return q.GetAdmin(ctx, arg.FestivalID, id)
}

// GetAdmin returns an admin scoped to its festival.
func (q *Queries) GetAdmin(ctx context.Context, festivalID, id int64) (model.Admin, error) {
	return scanAdmin(q.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE festival_id = ? AND id = ?`, festivalID, id))
}

// GetDefaultAdmin returns the oldest admin that no other admin created.
func (q *Queries) GetDefaultAdmin(ctx context.Context, festivalID int64) (model.Admin, error) {
	return scanAdmin(q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins
		WHERE festival_id = ? AND created_by IS NULL
		ORDER BY created_at, id LIMIT 1`, festivalID))
}

// ListAdmins returns all admins of a festival, oldest first.
func (q *Queries) ListAdmins(ctx context.Context, festivalID int64) ([]model.Admin, error) {
	return scanAdmins(q.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins
		WHERE festival_id = ? ORDER BY created_at, id`, festivalID))
}

// ListActiveAdmins returns the active admins of a festival, oldest first.
func (q *Queries) ListActiveAdmins(ctx context.Context, festivalID int64) ([]model.Admin, error) {
	return scanAdmins(q.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins
		WHERE festival_id = ? AND is_active = 1 ORDER BY created_at, id`, festivalID))
}

// ListAdminIDs returns the ids of all admins of a festival.
func (q *Queries) ListAdminIDs(ctx context.Context, festivalID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM admins WHERE festival_id = ? ORDER BY id`, festivalID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdminCodeExists reports whether code is used by any admin of any festival.
func (q *Queries) AdminCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE admin_code = ?)`, code).Scan(&exists)
	return exists, err
}

// AdminCodeExistsInFestival reports whether code is used inside one festival.
func (q *Queries) AdminCodeExistsInFestival(ctx context.Context, festivalID int64, code string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM admins WHERE festival_id = ? AND admin_code = ?
	)`, festivalID, code).Scan(&exists)
	return exists, err
}

// SetAdminActive enables or disables admin unlock for one admin.
func (q *Queries) SetAdminActive(ctx context.Context, festivalID, id int64, active bool) error {
	res, err := q.db.ExecContext(ctx, `UPDATE admins SET is_active = ?
		WHERE festival_id = ? AND id = ?`, active, festivalID, id)
	return requireAffected(res, err)
}

// UpdateAdminPassword replaces the password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, festivalID, id int64, hash string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE admins SET admin_password_hash = ?
		WHERE festival_id = ? AND id = ?`, hash, festivalID, id)
	return requireAffected(res, err)
}

// DeleteAdmin removes an admin with its visitor passwords. Transactions it
// created stay and lose their attribution.
func (q *Queries) DeleteAdmin(ctx context.Context, festivalID, id int64) error {
	stmts := []string{
		`DELETE FROM user_passwords WHERE festival_id = ? AND admin_id = ?`,
		`UPDATE collections SET created_by_admin_id = NULL WHERE festival_id = ? AND created_by_admin_id = ?`,
		`UPDATE expenses SET created_by_admin_id = NULL WHERE festival_id = ? AND created_by_admin_id = ?`,
		`UPDATE admins SET created_by = NULL WHERE festival_id = ? AND created_by = ?`,
	}
	for _, stmt := range stmts {
		if _, err := q.db.ExecContext(ctx, stmt, festivalID, id); err != nil {
			return err
		}
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM admins WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}
