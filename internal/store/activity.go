// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/util"
)

// CreateActivityLog appends one admin activity entry.
func (q *Queries) CreateActivityLog(ctx context.Context, entry model.ActivityLog) (int64, error) {
	details := "{}"
	if len(entry.ActionDetails) > 0 {
		b, err := json.Marshal(entry.ActionDetails)
		if err != nil {
			return 0, fmt.Errorf("encoding action details: %w", err)
		}
		details = string(b)
	}

	res, err := q.db.ExecContext(ctx, `INSERT INTO admin_activity_log (
		festival_id, admin_id, action_type, action_details, target_type, target_id, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.FestivalID, util.NullInt64FromPtr(entry.AdminID), entry.ActionType, details,
		entry.TargetType, entry.TargetID, entry.Timestamp)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LogAdminActivity records one entry in its own transaction.
func (s *Store) LogAdminActivity(ctx context.Context, entry model.ActivityLog) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		_, err := q.CreateActivityLog(ctx, entry)
		return err
	})
}

// ListActivityLogs returns a page of a festival's activity log, newest first.
func (q *Queries) ListActivityLogs(ctx context.Context, festivalID int64, limit, offset int) ([]model.ActivityLog, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, festival_id, admin_id, action_type, action_details,
		target_type, target_id, timestamp
		FROM admin_activity_log WHERE festival_id = ?
		ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`, festivalID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []model.ActivityLog
	for rows.Next() {
		var entry model.ActivityLog
		var adminID sql.NullInt64
		var details string
		if err := rows.Scan(&entry.ID, &entry.FestivalID, &adminID, &entry.ActionType, &details,
			&entry.TargetType, &entry.TargetID, &entry.Timestamp); err != nil {
			return nil, err
		}
		entry.AdminID = util.Int64Ptr(adminID)
		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &entry.ActionDetails); err != nil {
				return nil, fmt.Errorf("decoding action details of entry %d: %w", entry.ID, err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// CountActivityLogs returns the number of activity entries of a festival.
func (q *Queries) CountActivityLogs(ctx context.Context, festivalID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_activity_log WHERE festival_id = ?`, festivalID).Scan(&n)
	return n, err
}
