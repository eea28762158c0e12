// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package codegen

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/festivo-go/internal/model"
)

// Resolver attempt budget. Attempts below RandomSuffixAttempts keep the seed
// prefix; the remainder switch to a timestamp-derived prefix.
const (
	MaxAttempts          = 50
	RandomSuffixAttempts = 30
	seedPrefixLength     = 3
)

// ErrInvalidCodeFormat means a candidate that no predicate reported as taken
// failed its format check. It is an internal invariant failure and never retried.
var ErrInvalidCodeFormat = errors.New("generated code has invalid format")

var (
	adminCodePattern    = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	festivalCodePattern = regexp.MustCompile(`^[A-Z]{8}$`)
)

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// ExistsInAny combines predicates: a candidate is taken when any predicate reports
// it, so it is free only when every predicate reports absence. Predicates run
// concurrently and all results are awaited before deciding.
func ExistsInAny(preds ...ExistsFunc) ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		found := make([]bool, len(preds))
		g, gctx := errgroup.WithContext(ctx)
		for i, pred := range preds {
			g.Go(func() error {
				taken, err := pred(gctx, candidate)
				found[i] = taken
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return false, err
		}
		return slices.Contains(found, true), nil
	}
}

// mutator produces the next candidate after attempt failed checks.
type mutator func(g *Generator, attempt int, seed string) (string, error)

// ResolveAdminCode returns seed or a mutation of it that exists reports as free.
func (g *Generator) ResolveAdminCode(ctx context.Context, seed string, exists ExistsFunc) (string, error) {
	return g.resolve(ctx, seed, exists, adminCodePattern, mutateAdminCode)
}

// ResolveFestivalCode returns seed or a fresh festival code that exists reports as free.
func (g *Generator) ResolveFestivalCode(ctx context.Context, seed string, exists ExistsFunc) (string, error) {
	return g.resolve(ctx, seed, exists, festivalCodePattern, func(g *Generator, _ int, _ string) (string, error) {
		return g.FestivalCode()
	})
}

// NewAdminCode derives a seed from displayName and resolves it.
func (g *Generator) NewAdminCode(ctx context.Context, displayName string, exists ExistsFunc) (string, error) {
	seed, err := g.AdminCodeSeed(displayName)
	if err != nil {
		return "", err
	}
	return g.ResolveAdminCode(ctx, seed, exists)
}

// NewFestivalCode generates and resolves a festival code.
func (g *Generator) NewFestivalCode(ctx context.Context, exists ExistsFunc) (string, error) {
	seed, err := g.FestivalCode()
	if err != nil {
		return "", err
	}
	return g.ResolveFestivalCode(ctx, seed, exists)
}

// resolve checks at most MaxAttempts candidates, one at a time.
func (g *Generator) resolve(ctx context.Context, seed string, exists ExistsFunc, pattern *regexp.Regexp, mutate mutator) (string, error) {
	candidate := seed
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking code %q: %w", candidate, err)
		}
		if !taken {
			if !pattern.MatchString(candidate) {
				return "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, candidate)
			}
			return candidate, nil
		}

		if attempt == MaxAttempts-1 {
			break
		}
		if candidate, err = mutate(g, attempt, seed); err != nil {
			return "", err
		}
	}
	return "", model.ErrCodeGenerationExhausted
}

// mutateAdminCode keeps the seed's first three characters for the early attempts,
// then switches to a base-36 timestamp fragment.
func mutateAdminCode(g *Generator, attempt int, seed string) (string, error) {
	if attempt < RandomSuffixAttempts {
		prefix := seed
		if len(prefix) > seedPrefixLength {
			prefix = prefix[:seedPrefixLength]
		}
		suffix, err := g.randomString(alphanumeric, AdminCodeLength-len(prefix))
		if err != nil {
			return "", err
		}
		return prefix + suffix, nil
	}

	stamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	if len(stamp) > seedPrefixLength {
		stamp = stamp[len(stamp)-seedPrefixLength:]
	}
	suffix, err := g.randomString(alphanumeric, seedPrefixLength)
	if err != nil {
		return "", err
	}
	candidate := stamp + suffix
	if len(candidate) > AdminCodeLength {
		candidate = candidate[:AdminCodeLength]
	}
	return candidate, nil
}
