// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

const userPasswordColumns = `id, admin_id, festival_id, password, password_digest, label,
	is_active, usage_count, created_at`

func scanUserPassword(row scanner) (model.UserPassword, error) {
	var p model.UserPassword
	err := row.Scan(&p.ID, &p.AdminID, &p.FestivalID, &p.Password, &p.Digest, &p.Label,
		&p.IsActive, &p.UsageCount, &p.CreatedAt)
	return p, notFound(err)
}

// CreateUserPasswordParams holds the values for a new visitor password.
type CreateUserPasswordParams struct {
	AdminID    int64
	FestivalID int64
	Password   string
	Digest     string
	Label      string
	CreatedAt  time.Time
}

// CreateUserPassword inserts an active visitor password.
func (q *Queries) CreateUserPassword(ctx context.Context, arg CreateUserPasswordParams) (model.UserPassword, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO user_passwords (
		admin_id, festival_id, password, password_digest, label, is_active, usage_count, created_at
	) VALUES (?, ?, ?, ?, ?, 1, 0, ?)`,
		arg.AdminID, arg.FestivalID, arg.Password, arg.Digest, arg.Label, arg.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) && containsColumn(err, "label") {
			return model.UserPassword{}, &model.DuplicateError{Entity: "password label", Value: arg.Label}
		}
		return model.UserPassword{}, duplicate(err, "visitor password", "")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.UserPassword{}, err
	}
	return q.GetUserPassword(ctx, arg.FestivalID, id)
}

// GetUserPassword returns a visitor password scoped to its festival.
func (q *Queries) GetUserPassword(ctx context.Context, festivalID, id int64) (model.UserPassword, error) {
	return scanUserPassword(q.db.QueryRowContext(ctx,
		`SELECT `+userPasswordColumns+` FROM user_passwords WHERE festival_id = ? AND id = ?`, festivalID, id))
}

// GetUserPasswordByDigest finds a visitor password by its keyed digest.
func (q *Queries) GetUserPasswordByDigest(ctx context.Context, festivalID int64, digest string) (model.UserPassword, error) {
	return scanUserPassword(q.db.QueryRowContext(ctx,
		`SELECT `+userPasswordColumns+` FROM user_passwords WHERE festival_id = ? AND password_digest = ?`,
		festivalID, digest))
}

// ListUserPasswords returns the visitor passwords of one admin, oldest first.
func (q *Queries) ListUserPasswords(ctx context.Context, festivalID, adminID int64) ([]model.UserPassword, error) {
	return q.listUserPasswords(ctx, `SELECT `+userPasswordColumns+` FROM user_passwords
		WHERE festival_id = ? AND admin_id = ? ORDER BY created_at, id`, festivalID, adminID)
}

// ListFestivalUserPasswords returns every visitor password of a festival.
func (q *Queries) ListFestivalUserPasswords(ctx context.Context, festivalID int64) ([]model.UserPassword, error) {
	return q.listUserPasswords(ctx, `SELECT `+userPasswordColumns+` FROM user_passwords
		WHERE festival_id = ? ORDER BY admin_id, created_at, id`, festivalID)
}

func (q *Queries) listUserPasswords(ctx context.Context, query string, args ...any) ([]model.UserPassword, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []model.UserPassword
	for rows.Next() {
		p, err := scanUserPassword(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountUserPasswords returns how many visitor passwords an admin owns.
func (q *Queries) CountUserPasswords(ctx context.Context, festivalID, adminID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_passwords
		WHERE festival_id = ? AND admin_id = ?`, festivalID, adminID).Scan(&n)
	return n, err
}

// SetUserPasswordActive toggles a visitor password.
func (q *Queries) SetUserPasswordActive(ctx context.Context, festivalID, id int64, active bool) error {
	res, err := q.db.ExecContext(ctx, `UPDATE user_passwords SET is_active = ?
		WHERE festival_id = ? AND id = ?`, active, festivalID, id)
	return requireAffected(res, err)
}

// IncrementUserPasswordUsage counts one successful visitor unlock.
func (q *Queries) IncrementUserPasswordUsage(ctx context.Context, festivalID, id int64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE user_passwords SET usage_count = usage_count + 1
		WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}

// DeleteUserPassword removes a visitor password.
func (q *Queries) DeleteUserPassword(ctx context.Context, festivalID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM user_passwords WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}

// containsColumn reports whether a constraint error names column.
func containsColumn(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "."+column)
}
