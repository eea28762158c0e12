// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

// ReferenceService manages groups, categories and payment modes.
type ReferenceService struct {
	deps
}

func checkKind(kind model.ReferenceKind) error {
	if !kind.Valid() {
		return model.ErrNotFound
	}
	return nil
}

// Add inserts name into the kind table of f. A name differing only in case
// from an existing one is a *model.DuplicateError.
func (s *ReferenceService) Add(ctx context.Context, f *model.Festival, actor session.Session, kind model.ReferenceKind, name string) (model.Reference, error) {
	if err := checkKind(kind); err != nil {
		return model.Reference{}, err
	}
	name, err := requiredText("name", name, MaxReferenceLength)
	if err != nil {
		return model.Reference{}, err
	}

	return activity.Do(ctx, s.emitter, func() (model.Reference, activity.Entry, error) {
		ref, err := s.store.CreateReference(ctx, kind, f.ID, name, s.timestamp())
		if err != nil {
			return model.Reference{}, activity.Entry{}, err
		}
		return ref, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionReferenceCreated,
			Details:    map[string]any{"kind": string(kind), "name": ref.Name},
			TargetType: kind.Label(),
			TargetID:   idString(ref.ID),
		}, nil
	})
}

// Remove deletes one value. Transactions already recorded keep their text.
func (s *ReferenceService) Remove(ctx context.Context, f *model.Festival, actor session.Session, kind model.ReferenceKind, id int64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	ref, err := s.store.GetReference(ctx, kind, f.ID, id)
	if err != nil {
		return err
	}

	_, err = activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.DeleteReference(ctx, kind, f.ID, id); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionReferenceDeleted,
			Details:    map[string]any{"kind": string(kind), "name": ref.Name},
			TargetType: kind.Label(),
			TargetID:   idString(id),
		}, nil
	})
	return err
}

// List returns the values of one table in insertion order.
func (s *ReferenceService) List(ctx context.Context, f *model.Festival, kind model.ReferenceKind) ([]model.Reference, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.store.ListReferences(ctx, kind, f.ID)
}
