// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package activity records the admin activity log after successful mutations.
// Recording never fails the operation that triggered it.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

// Entry is one activity to record.
type Entry struct {
	FestivalID int64
	AdminID    *int64
	ActionType string
	Details    map[string]any
	TargetType string
	TargetID   string
}

// Recorder persists activity entries.
type Recorder interface {
	LogAdminActivity(ctx context.Context, entry model.ActivityLog) error
}

// Emitter sends entries to a Recorder and swallows its failures.
type Emitter struct {
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewEmitter creates an Emitter. A nil logger falls back to slog.Default.
func NewEmitter(recorder Recorder, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{recorder: recorder, logger: logger, now: time.Now}
}

// Emit records entry. A failure is logged as a *model.ActivityLogFailure and
// dropped. Cancellation of ctx does not abort the write.
func (e *Emitter) Emit(ctx context.Context, entry Entry) {
	if e == nil || e.recorder == nil {
		return
	}

	err := e.recorder.LogAdminActivity(context.WithoutCancel(ctx), model.ActivityLog{
		FestivalID:    entry.FestivalID,
		AdminID:       entry.AdminID,
		ActionType:    entry.ActionType,
		ActionDetails: entry.Details,
		TargetType:    entry.TargetType,
		TargetID:      entry.TargetID,
		Timestamp:     e.now().UTC(),
	})
	if err != nil {
		failure := &model.ActivityLogFailure{ActionType: entry.ActionType, Err: err}
		e.logger.Warn("activity log write failed",
			"category", model.EventCategoryFestival,
			"festival_id", entry.FestivalID,
			"action_type", entry.ActionType,
			"error", failure)
	}
}

// Do runs fn and emits the entry it returns once fn has succeeded. The
// entry is built by fn so it can describe what was actually committed.
func Do[T any](ctx context.Context, em *Emitter, fn func() (T, Entry, error)) (T, error) {
	v, entry, err := fn()
	if err != nil {
		return v, err
	}
	em.Emit(ctx, entry)
	return v, nil
}
