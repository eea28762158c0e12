// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package codegen

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/model"
)

// takenFor returns an ExistsFunc reporting the first n candidates as taken and
// recording every candidate it sees.
func takenFor(n int, seen *[]string) ExistsFunc {
	return func(_ context.Context, candidate string) (bool, error) {
		*seen = append(*seen, candidate)
		return len(*seen) <= n, nil
	}
}

func TestResolveAdminCode_FreeSeed(t *testing.T) {
	var seen []string
	code, err := seededGenerator(2).ResolveAdminCode(context.Background(), "ABC123", takenFor(0, &seen))

	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)
	assert.Len(t, seen, 1)
}

func TestResolveAdminCode_Convergence(t *testing.T) {
	for _, n := range []int{1, 5, 29, 30, 31, 49} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			var seen []string
			code, err := seededGenerator(3).ResolveAdminCode(context.Background(), "RAVIKU", takenFor(n, &seen))

			require.NoError(t, err)
			assert.Len(t, seen, n+1, "should succeed on attempt N+1")
			assert.Equal(t, seen[n], code)
			assert.Regexp(t, adminCodePattern, code)
		})
	}
}

func TestResolveAdminCode_MutationPhases(t *testing.T) {
	now := time.UnixMilli(1759300000000)
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	stamp = stamp[len(stamp)-3:]

	var seen []string
	g := NewWithSource(New().rand, func() time.Time { return now })
	_, err := g.ResolveAdminCode(context.Background(), "RAVIKU", takenFor(MaxAttempts, &seen))
	require.ErrorIs(t, err, model.ErrCodeGenerationExhausted)
	require.Len(t, seen, MaxAttempts)

	assert.Equal(t, "RAVIKU", seen[0])
	for i := 1; i <= RandomSuffixAttempts; i++ {
		assert.True(t, strings.HasPrefix(seen[i], "RAV"), "attempt %d (%s) should keep seed prefix", i, seen[i])
		assert.Regexp(t, adminCodePattern, seen[i])
	}
	for i := RandomSuffixAttempts + 1; i < MaxAttempts; i++ {
		assert.True(t, strings.HasPrefix(seen[i], stamp), "attempt %d (%s) should use timestamp prefix %s", i, seen[i], stamp)
		assert.Regexp(t, adminCodePattern, seen[i])
	}
}

func TestResolveAdminCode_ExhaustsAfterExactlyFiftyChecks(t *testing.T) {
	var calls atomic.Int32
	always := func(context.Context, string) (bool, error) {
		calls.Add(1)
		return true, nil
	}

	_, err := New().ResolveAdminCode(context.Background(), "ABCDEF", always)

	assert.ErrorIs(t, err, model.ErrCodeGenerationExhausted)
	assert.Equal(t, int32(MaxAttempts), calls.Load())
}

func TestResolveAdminCode_InvalidFormatEscalates(t *testing.T) {
	var calls int
	free := func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	}

	_, err := New().ResolveAdminCode(context.Background(), "ab-1", free)

	assert.ErrorIs(t, err, ErrInvalidCodeFormat)
	assert.Equal(t, 1, calls, "format violations must not be retried")
}

func TestResolveAdminCode_ExistsError(t *testing.T) {
	boom := errors.New("database is locked")
	var calls int
	failing := func(context.Context, string) (bool, error) {
		calls++
		return false, boom
	}

	_, err := New().ResolveAdminCode(context.Background(), "ABCDEF", failing)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestResolveAdminCode_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ResolveAdminCode(ctx, "ABCDEF", func(context.Context, string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveFestivalCode(t *testing.T) {
	var seen []string
	code, err := seededGenerator(4).NewFestivalCode(context.Background(), takenFor(3, &seen))

	require.NoError(t, err)
	assert.Len(t, seen, 4)
	assert.Regexp(t, festivalPattern, code)
	for _, c := range seen {
		assert.Regexp(t, festivalPattern, c)
	}
}

func TestNewAdminCode(t *testing.T) {
	var seen []string
	code, err := seededGenerator(5).NewAdminCode(context.Background(), "Priya Sharma", takenFor(0, &seen))

	require.NoError(t, err)
	assert.Equal(t, "PRIYAS", code)
}

func TestExistsInAny(t *testing.T) {
	global := map[string]bool{"AAAAAA": true}
	perFestival := map[string]bool{"BBBBBB": true}

	lookup := func(m map[string]bool) ExistsFunc {
		return func(_ context.Context, c string) (bool, error) { return m[c], nil }
	}
	exists := ExistsInAny(lookup(global), lookup(perFestival))

	tests := []struct {
		candidate string
		want      bool
	}{
		{"AAAAAA", true},
		{"BBBBBB", true},
		{"CCCCCC", false},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, err := exists(context.Background(), tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExistsInAny_AwaitsAllPredicates(t *testing.T) {
	var slowDone atomic.Bool
	slow := func(context.Context, string) (bool, error) {
		time.Sleep(20 * time.Millisecond)
		slowDone.Store(true)
		return false, nil
	}
	fast := func(context.Context, string) (bool, error) { return false, nil }

	taken, err := ExistsInAny(fast, slow)(context.Background(), "ABCDEF")

	require.NoError(t, err)
	assert.False(t, taken)
	assert.True(t, slowDone.Load(), "both predicates must complete before deciding")
}

func TestExistsInAny_PropagatesError(t *testing.T) {
	boom := errors.New("query failed")
	free := func(context.Context, string) (bool, error) { return false, nil }
	failing := func(context.Context, string) (bool, error) { return false, boom }

	_, err := ExistsInAny(free, failing)(context.Background(), "ABCDEF")
	assert.ErrorIs(t, err, boom)
}
