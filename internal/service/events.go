// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
)

// EventService records operational events such as rejected unlocks and
// retention runs. Festival changes go to the activity log instead.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService returns an EventService backed by db.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db), now: time.Now}
}

// Record stores one event. fields become the JSON metadata column; values
// that cannot be encoded leave it as an empty object.
func (s *EventService) Record(ctx context.Context, level, category, message string, fields map[string]any) error {
	meta := "{}"
	if len(fields) > 0 {
		if b, err := json.Marshal(fields); err == nil {
			meta = string(b)
		}
	}

	if _, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Metadata:  meta,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		// Info, not Warn: the event log handler mirrors warnings back into this table.
		slog.Info("event not recorded", "category", category, "error", err)
		return err
	}
	return nil
}

// Info records an info event.
func (s *EventService) Info(ctx context.Context, category, message string, fields map[string]any) error {
	return s.Record(ctx, model.EventLevelInfo, category, message, fields)
}

// Warn records a warning event.
func (s *EventService) Warn(ctx context.Context, category, message string, fields map[string]any) error {
	return s.Record(ctx, model.EventLevelWarning, category, message, fields)
}

// Recent returns the newest events of level, newest first.
func (s *EventService) Recent(ctx context.Context, level string, limit int) ([]model.Event, error) {
	limit, _ = pageBounds(limit, 0)
	return s.queries.ListEventsByLevel(ctx, level, limit)
}
