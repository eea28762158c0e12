// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/festivo-go/internal/model"
)

// ActivityService reads the admin activity log.
type ActivityService struct {
	deps
}

// ActivityPage is one page of the activity log.
type ActivityPage struct {
	Entries []model.ActivityLog `json:"entries"`
	Total   int64               `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// List returns a page of the activity log of f, newest first.
func (s *ActivityService) List(ctx context.Context, f *model.Festival, limit, offset int) (ActivityPage, error) {
	limit, offset = pageBounds(limit, offset)
	entries, err := s.store.ListActivityLogs(ctx, f.ID, limit, offset)
	if err != nil {
		return ActivityPage{}, err
	}
	total, err := s.store.CountActivityLogs(ctx, f.ID)
	if err != nil {
		return ActivityPage{}, err
	}
	if entries == nil {
		entries = []model.ActivityLog{}
	}
	return ActivityPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
