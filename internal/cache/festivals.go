// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"time"
)

// FestivalCodes maps festival codes and live aliases to festival ids.
type FestivalCodes struct {
	ids *TypedCache[int64]
}

// NewFestivalCodes creates the lookup on top of c.
func NewFestivalCodes(c Cache, ttl time.Duration) *FestivalCodes {
	return &FestivalCodes{ids: NewTypedCache[int64](c, "festival_code:", ttl)}
}

// Lookup returns the cached festival id for code.
func (f *FestivalCodes) Lookup(ctx context.Context, code string) (int64, bool) {
	return f.ids.Get(ctx, normalize(code))
}

// Remember caches id for code.
func (f *FestivalCodes) Remember(ctx context.Context, code string, id int64) error {
	return f.ids.Set(ctx, normalize(code), id)
}

// Forget drops cached codes, e.g. after a code change or alias invalidation.
func (f *FestivalCodes) Forget(ctx context.Context, codes ...string) error {
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = normalize(code)
	}
	return f.ids.Delete(ctx, keys...)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
