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

// MaxUserPasswordQuota caps the visitor password quota of a single admin.
const MaxUserPasswordQuota = 100

// AdminService manages the admins of a festival.
type AdminService struct {
	deps
}

// CreateAdminInput is the admin creation form.
type CreateAdminInput struct {
	Name             string `json:"admin_name"`
	Password         string `json:"admin_password"`
	MaxUserPasswords int    `json:"max_user_passwords"`
}

// Create adds an admin to f. The admin code is derived from the name and kept
// unique globally and within f. created_by is the creating admin and stays
// NULL when the super admin creates one; the default admin is still the oldest
// NULL row.
func (s *AdminService) Create(ctx context.Context, f *model.Festival, actor session.Session, in CreateAdminInput) (model.Admin, error) {
	name, err := requiredText("admin_name", in.Name, MaxNameLength)
	if err != nil {
		return model.Admin{}, err
	}
	quota := in.MaxUserPasswords
	if quota == 0 {
		quota = model.DefaultMaxUserPasswords
	}
	if quota < 1 || quota > MaxUserPasswordQuota {
		return model.Admin{}, model.Validation("max_user_passwords", fmt.Sprintf("must be between 1 and %d", MaxUserPasswordQuota))
	}
	hash, err := hashSecret("admin_password", in.Password)
	if err != nil {
		return model.Admin{}, err
	}
	if err := s.checkPasswordFree(ctx, f, in.Password, 0); err != nil {
		return model.Admin{}, err
	}

	return activity.Do(ctx, s.emitter, func() (model.Admin, activity.Entry, error) {
		var admin model.Admin
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			code, err := s.gen.NewAdminCode(ctx, name, adminCodeExists(q, f.ID))
			if err != nil {
				return fmt.Errorf("generating admin code: %w", err)
			}
			admin, err = q.CreateAdmin(ctx, store.CreateAdminParams{
				FestivalID:        f.ID,
				AdminCode:         code,
				AdminName:         name,
				AdminPasswordHash: hash,
				MaxUserPasswords:  quota,
				CreatedBy:         actor.ActorID(),
				CreatedAt:         s.timestamp(),
			})
			return err
		})
		if err != nil {
			return model.Admin{}, activity.Entry{}, err
		}
		return admin, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionAdminCreated,
			Details:    map[string]any{"admin_code": admin.AdminCode, "admin_name": admin.AdminName},
			TargetType: "admin",
			TargetID:   idString(admin.ID),
		}, nil
	})
}

// checkPasswordFree rejects a password that would make admin unlock
// ambiguous: one already used by another admin of f or by the super admin.
func (s *AdminService) checkPasswordFree(ctx context.Context, f *model.Festival, password string, exceptID int64) error {
	clash, err := auth.VerifySecret(password, f.SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("verifying super admin password: %w", err)
	}
	if clash {
		return model.Validation("admin_password", "must differ from the super admin password")
	}

	admins, err := s.store.ListAdmins(ctx, f.ID)
	if err != nil {
		return err
	}
	for _, a := range admins {
		if a.ID == exceptID {
			continue
		}
		ok, err := auth.VerifySecret(password, a.AdminPasswordHash)
		if err != nil {
			return fmt.Errorf("verifying admin password: %w", err)
		}
		if ok {
			return &model.DuplicateError{Entity: "admin password"}
		}
	}
	return nil
}

// Delete removes an admin together with its visitor passwords. The default
// admin cannot be deleted.
func (s *AdminService) Delete(ctx context.Context, f *model.Festival, actor session.Session, id int64) error {
	_, err := activity.Do(ctx, s.emitter, func() (model.Admin, activity.Entry, error) {
		var admin model.Admin
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			var err error
			if admin, err = q.GetAdmin(ctx, f.ID, id); err != nil {
				return err
			}
			def, err := q.GetDefaultAdmin(ctx, f.ID)
			if err != nil {
				return err
			}
			if def.ID == admin.ID {
				return model.Validation("admin", "the default admin cannot be deleted")
			}
			return q.DeleteAdmin(ctx, f.ID, id)
		})
		if err != nil {
			return model.Admin{}, activity.Entry{}, err
		}
		return admin, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionAdminDeleted,
			Details:    map[string]any{"admin_code": admin.AdminCode, "admin_name": admin.AdminName},
			TargetType: "admin",
			TargetID:   idString(admin.ID),
		}, nil
	})
	return err
}

// SetActive enables or disables unlock for admin id. Sessions of a disabled
// admin are dropped on their next request. The default admin always stays
// active so that the festival keeps a usable admin.
func (s *AdminService) SetActive(ctx context.Context, f *model.Festival, actor session.Session, id int64, active bool) (model.Admin, error) {
	return activity.Do(ctx, s.emitter, func() (model.Admin, activity.Entry, error) {
		var admin model.Admin
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			var err error
			if admin, err = q.GetAdmin(ctx, f.ID, id); err != nil {
				return err
			}
			if !active {
				def, err := q.GetDefaultAdmin(ctx, f.ID)
				if err != nil {
					return err
				}
				if def.ID == admin.ID {
					return model.Validation("is_active", "the default admin cannot be deactivated")
				}
			}
			return q.SetAdminActive(ctx, f.ID, id, active)
		})
		if err != nil {
			return model.Admin{}, activity.Entry{}, err
		}
		admin.IsActive = active
		return admin, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionAdminToggled,
			Details:    map[string]any{"admin_code": admin.AdminCode, "is_active": active},
			TargetType: "admin",
			TargetID:   idString(admin.ID),
		}, nil
	})
}

// List returns every admin of f, oldest first.
func (s *AdminService) List(ctx context.Context, f *model.Festival) ([]model.Admin, error) {
	return s.store.ListAdmins(ctx, f.ID)
}

// Get returns one admin of f.
func (s *AdminService) Get(ctx context.Context, f *model.Festival, id int64) (model.Admin, error) {
	return s.store.GetAdmin(ctx, f.ID, id)
}

// Default returns the admin created together with f.
func (s *AdminService) Default(ctx context.Context, f *model.Festival) (model.Admin, error) {
	return s.store.GetDefaultAdmin(ctx, f.ID)
}

// ChangePassword sets a new password for admin id. Admins may only change
// their own password; the super admin may change any.
func (s *AdminService) ChangePassword(ctx context.Context, f *model.Festival, actor session.Session, id int64, password string) error {
	if actor.IsAdmin() && *actor.AdminID != id {
		return model.ErrForbidden
	}
	if !actor.IsAdmin() && !actor.IsSuperAdmin() {
		return model.ErrForbidden
	}

	hash, err := hashSecret("admin_password", password)
	if err != nil {
		return err
	}
	if _, err := s.store.GetAdmin(ctx, f.ID, id); err != nil {
		return err
	}
	if err := s.checkPasswordFree(ctx, f, password, id); err != nil {
		return err
	}

	_, err = activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.UpdateAdminPassword(ctx, f.ID, id, hash); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			AdminID:    actor.ActorID(),
			ActionType: model.ActionAdminPasswordChanged,
			TargetType: "admin",
			TargetID:   idString(id),
		}, nil
	})
	return err
}
