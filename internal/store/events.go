// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

// CreateEventParams holds the values for a system event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends a system event.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx, `INSERT INTO system_events (level, category, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)`, arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListEventsByLevel returns the newest events of one level.
func (q *Queries) ListEventsByLevel(ctx context.Context, level string, limit int) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, level, category, message, metadata, created_at
		FROM system_events WHERE level = ? ORDER BY created_at DESC, id DESC LIMIT ?`, level, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes system events created before cutoff.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM system_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
