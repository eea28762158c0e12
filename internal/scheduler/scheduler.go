// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping on a cron schedule.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
)

// DefaultSchedule runs retention once a day at 03:00 server time.
const DefaultSchedule = "0 3 * * *"

// RetentionConfig controls how long operational records are kept. A zero
// duration keeps records forever.
type RetentionConfig struct {
	Schedule        string
	EventRetention  time.Duration
	AccessRetention time.Duration
}

// Scheduler prunes old system events and access logs.
type Scheduler struct {
	queries *store.Queries
	cfg     RetentionConfig
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
}

// ValidateSchedule reports whether expr is a standard five-field cron
// expression or a descriptor such as @daily.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// New creates a new scheduler instance.
func New(queries *store.Queries, cfg RetentionConfig, logger *slog.Logger) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		queries: queries,
		cfg:     cfg,
		cron:    cron.New(),
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled reports whether any retention window is configured.
func (s *Scheduler) Enabled() bool {
	return s.cfg.EventRetention > 0 || s.cfg.AccessRetention > 0
}

// Start registers the retention job and starts the cron loop. It does nothing
// when no retention window is configured.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunRetention(context.Background()); err != nil {
			s.logger.Error("retention run failed", "category", model.EventCategorySystem, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.cfg.Schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RetentionResult counts the rows removed by one run.
type RetentionResult struct {
	Events     int64 `json:"events"`
	AccessLogs int64 `json:"access_logs"`
}

// RunRetention deletes records older than their retention window and
// records a system event when anything was removed.
func (s *Scheduler) RunRetention(ctx context.Context) (RetentionResult, error) {
	now := s.now().UTC()
	var res RetentionResult
	var err error

	if s.cfg.EventRetention > 0 {
		if res.Events, err = s.queries.DeleteEventsBefore(ctx, now.Add(-s.cfg.EventRetention)); err != nil {
			return res, fmt.Errorf("pruning system events: %w", err)
		}
	}
	if s.cfg.AccessRetention > 0 {
		if res.AccessLogs, err = s.queries.DeleteAccessLogsBefore(ctx, now.Add(-s.cfg.AccessRetention)); err != nil {
			return res, fmt.Errorf("pruning access logs: %w", err)
		}
	}

	if res.Events == 0 && res.AccessLogs == 0 {
		return res, nil
	}

	s.logger.Info("retention pruned records", "events", res.Events, "access_logs", res.AccessLogs)
	metadata, _ := json.Marshal(res)
	if _, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategorySystem,
		Message:   "Retention removed old records",
		Metadata:  string(metadata),
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("failed to log retention event", "error", err)
	}
	return res, nil
}
