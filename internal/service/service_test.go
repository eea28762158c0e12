// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/cache"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/testutil"
)

const (
	testAdminPassword      = "admin-pass"
	testSuperAdminPassword = "super-pass"
)

type fixture struct {
	db    *sql.DB
	store *store.Store
	svc   *Services
	codes *cache.FestivalCodes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.TestDB(t)
	st := store.NewStore(db)
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute, MaxSize: 100})
	t.Cleanup(func() { _ = mem.Close() })
	codes := cache.NewFestivalCodes(mem, time.Minute)

	svc := New(Options{
		Store:     st,
		Codes:     codes,
		DigestKey: []byte("test-digest-key"),
		Logger:    testutil.TestLoggerSilent(),
		Now:       func() time.Time { return time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{db: db, store: st, svc: svc, codes: codes}
}

func baseFestivalInput() CreateFestivalInput {
	return CreateFestivalInput{
		Name:               "Durga Puja 2025",
		Organiser:          "Park Circus Committee",
		AdminName:          "Ravi Kumar",
		AdminPassword:      testAdminPassword,
		SuperAdminPassword: testSuperAdminPassword,
		CEStartDate:        "2025-10-01",
		CEEndDate:          "2025-10-10",
	}
}

// createFestival creates a festival from the base input adjusted by mutate.
func (fx *fixture) createFestival(t *testing.T, mutate func(*CreateFestivalInput)) CreatedFestival {
	t.Helper()
	in := baseFestivalInput()
	if mutate != nil {
		mutate(&in)
	}
	out, err := fx.svc.Festivals.Create(context.Background(), in)
	require.NoError(t, err)
	return out
}

func (fx *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, fx.db.QueryRow(query, args...).Scan(&n))
	return n
}

func (fx *fixture) activityTypes(t *testing.T, f *model.Festival) []string {
	t.Helper()
	page, err := fx.svc.Activity.List(context.Background(), f, 100, 0)
	require.NoError(t, err)
	types := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		types = append(types, e.ActionType)
	}
	return types
}

func (fx *fixture) addReferences(t *testing.T, f *model.Festival, kind model.ReferenceKind, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := fx.store.CreateReference(context.Background(), kind, f.ID, name, time.Now())
		require.NoError(t, err)
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, DefaultPageSize, 0},
		{10, 5, 10, 5},
		{MaxPageSize + 1, -3, MaxPageSize, 0},
	}
	for _, tt := range tests {
		limit, offset := pageBounds(tt.limit, tt.offset)
		require.Equal(t, tt.wantLimit, limit)
		require.Equal(t, tt.wantOffset, offset)
	}
}

func TestRequiredText(t *testing.T) {
	got, err := requiredText("name", "  Group A ", 10)
	require.NoError(t, err)
	require.Equal(t, "Group A", got)

	_, err = requiredText("name", "   ", 10)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "name", ve.Field)

	_, err = requiredText("name", "abcdefghijk", 10)
	require.ErrorAs(t, err, &ve)
}
