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

// CreateAccessLog records a successful unlock.
func (q *Queries) CreateAccessLog(ctx context.Context, entry model.AccessLog) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO access_logs (
		festival_id, session_role, visitor_name, admin_id, browser, os, device_type, country_code, accessed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.FestivalID, entry.SessionRole, util.NullStringFromPtr(entry.VisitorName),
		util.NullInt64FromPtr(entry.AdminID), entry.Browser, entry.OS, entry.DeviceType,
		entry.CountryCode, entry.AccessedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAccessLogs returns a page of access logs, newest first.
func (q *Queries) ListAccessLogs(ctx context.Context, festivalID int64, limit, offset int) ([]model.AccessLog, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, festival_id, session_role, visitor_name, admin_id,
		browser, os, device_type, country_code, accessed_at
		FROM access_logs WHERE festival_id = ?
		ORDER BY accessed_at DESC, id DESC LIMIT ? OFFSET ?`, festivalID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []model.AccessLog
	for rows.Next() {
		var entry model.AccessLog
		var visitor sql.NullString
		var adminID sql.NullInt64
		if err := rows.Scan(&entry.ID, &entry.FestivalID, &entry.SessionRole, &visitor, &adminID,
			&entry.Browser, &entry.OS, &entry.DeviceType, &entry.CountryCode, &entry.AccessedAt); err != nil {
			return nil, err
		}
		entry.VisitorName = util.StringPtr(visitor)
		entry.AdminID = util.Int64Ptr(adminID)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// DeleteAccessLogsBefore removes access logs of every festival recorded before cutoff.
func (q *Queries) DeleteAccessLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM access_logs WHERE accessed_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
