// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/auth"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
	"github.com/olegiv/festivo-go/internal/store"
)

// UserPasswordService manages the visitor passwords admins hand out.
type UserPasswordService struct {
	deps
}

// CreateUserPasswordInput is the visitor password form. AdminID selects the
// owner when the super admin creates a password; admins always own theirs.
type CreateUserPasswordInput struct {
	AdminID  *int64 `json:"admin_id"`
	Label    string `json:"label"`
	Password string `json:"password"`
}

// owner resolves which admin a visitor password operation acts for.
func (s *UserPasswordService) owner(ctx context.Context, q *store.Queries, f *model.Festival, actor session.Session, requested *int64) (model.Admin, error) {
	switch {
	case actor.IsAdmin():
		if requested != nil && *requested != *actor.AdminID {
			return model.Admin{}, model.ErrForbidden
		}
		return q.GetAdmin(ctx, f.ID, *actor.AdminID)
	case actor.IsSuperAdmin():
		if requested == nil {
			return q.GetDefaultAdmin(ctx, f.ID)
		}
		return q.GetAdmin(ctx, f.ID, *requested)
	}
	return model.Admin{}, model.ErrForbidden
}

// Create issues a visitor password. The owner's quota is enforced and the
// password must not already be in use anywhere in the festival.
func (s *UserPasswordService) Create(ctx context.Context, f *model.Festival, actor session.Session, in CreateUserPasswordInput) (model.UserPassword, error) {
	label, err := requiredText("label", in.Label, MaxLabelLength)
	if err != nil {
		return model.UserPassword{}, err
	}
	hash, err := hashSecret("password", in.Password)
	if err != nil {
		return model.UserPassword{}, err
	}
	digest := auth.Digest(s.digestKey, in.Password)

	return activity.Do(ctx, s.emitter, func() (model.UserPassword, activity.Entry, error) {
		var p model.UserPassword
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			admin, err := s.owner(ctx, q, f, actor, in.AdminID)
			if err != nil {
				return err
			}
			n, err := q.CountUserPasswords(ctx, f.ID, admin.ID)
			if err != nil {
				return err
			}
			if n >= admin.MaxUserPasswords {
				return model.Validation("password", fmt.Sprintf("quota of %d visitor passwords reached", admin.MaxUserPasswords))
			}
			p, err = q.CreateUserPassword(ctx, store.CreateUserPasswordParams{
				AdminID:    admin.ID,
				FestivalID: f.ID,
				Password:   hash,
				Digest:     digest,
				Label:      label,
				CreatedAt:  s.timestamp(),
			})
			return err
		})
		if err != nil {
			return model.UserPassword{}, activity.Entry{}, err
		}
		return p, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionUserPasswordCreated,
			Details:    map[string]any{"label": p.Label, "owner_admin_id": p.AdminID},
			TargetType: "user_password",
			TargetID:   idString(p.ID),
		}, nil
	})
}

// get loads a visitor password the actor may manage.
func (s *UserPasswordService) get(ctx context.Context, f *model.Festival, actor session.Session, id int64) (model.UserPassword, error) {
	p, err := s.store.GetUserPassword(ctx, f.ID, id)
	if err != nil {
		return p, err
	}
	if actor.IsAdmin() && p.AdminID != *actor.AdminID {
		// Other admins' passwords are invisible rather than forbidden.
		return model.UserPassword{}, model.ErrNotFound
	}
	if !actor.IsAdmin() && !actor.IsSuperAdmin() {
		return model.UserPassword{}, model.ErrForbidden
	}
	return p, nil
}

// SetActive enables or disables a visitor password.
func (s *UserPasswordService) SetActive(ctx context.Context, f *model.Festival, actor session.Session, id int64, active bool) (model.UserPassword, error) {
	p, err := s.get(ctx, f, actor, id)
	if err != nil {
		return model.UserPassword{}, err
	}
	return activity.Do(ctx, s.emitter, func() (model.UserPassword, activity.Entry, error) {
		if err := s.store.SetUserPasswordActive(ctx, f.ID, id, active); err != nil {
			return model.UserPassword{}, activity.Entry{}, err
		}
		p.IsActive = active
		return p, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionUserPasswordToggled,
			Details:    map[string]any{"label": p.Label, "is_active": active},
			TargetType: "user_password",
			TargetID:   idString(id),
		}, nil
	})
}

// Delete removes a visitor password.
func (s *UserPasswordService) Delete(ctx context.Context, f *model.Festival, actor session.Session, id int64) error {
	p, err := s.get(ctx, f, actor, id)
	if err != nil {
		return err
	}
	_, err = activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.DeleteUserPassword(ctx, f.ID, id); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionUserPasswordDeleted,
			Details:    map[string]any{"label": p.Label},
			TargetType: "user_password",
			TargetID:   idString(id),
		}, nil
	})
	return err
}

// List returns the actor's own visitor passwords, or every password of the
// festival for the super admin.
func (s *UserPasswordService) List(ctx context.Context, f *model.Festival, actor session.Session) ([]model.UserPassword, error) {
	switch {
	case actor.IsAdmin():
		return s.store.ListUserPasswords(ctx, f.ID, *actor.AdminID)
	case actor.IsSuperAdmin():
		return s.store.ListFestivalUserPasswords(ctx, f.ID)
	}
	return nil, model.ErrForbidden
}
