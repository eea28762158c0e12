// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/testutil"
)

func TestValidateSchedule(t *testing.T) {
	for _, expr := range []string{DefaultSchedule, "@daily", "*/15 * * * *"} {
		assert.NoError(t, ValidateSchedule(expr), expr)
	}
	for _, expr := range []string{"", "every day", "* * *", "61 * * * *"} {
		assert.Error(t, ValidateSchedule(expr), expr)
	}
}

func TestStartDisabled(t *testing.T) {
	s := New(nil, RetentionConfig{}, testutil.TestLoggerSilent())
	assert.False(t, s.Enabled())
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(nil, RetentionConfig{Schedule: "nope", EventRetention: time.Hour}, testutil.TestLoggerSilent())
	assert.Error(t, s.Start())
}

func TestRunRetention(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{now.AddDate(0, 0, -40), now.AddDate(0, 0, -31), now.AddDate(0, 0, -2)} {
		_, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level: model.EventLevelWarning, Category: model.EventCategoryAuth, Message: "Unlock rejected", CreatedAt: at,
		})
		require.NoError(t, err)
	}

	s := New(q, RetentionConfig{EventRetention: 30 * 24 * time.Hour, AccessRetention: time.Hour}, testutil.TestLoggerSilent())
	s.now = func() time.Time { return now }

	res, err := s.RunRetention(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Events)
	assert.Zero(t, res.AccessLogs)

	remaining, err := q.ListEventsByLevel(ctx, model.EventLevelWarning, 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	infos, err := q.ListEventsByLevel(ctx, model.EventLevelInfo, 10)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, model.EventCategorySystem, infos[0].Category)

	// A second run has nothing to remove and logs nothing.
	res, err = s.RunRetention(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Events)
	infos, err = q.ListEventsByLevel(ctx, model.EventLevelInfo, 10)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}
