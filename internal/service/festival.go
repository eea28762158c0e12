// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/auth"
	"github.com/olegiv/festivo-go/internal/cache"
	"github.com/olegiv/festivo-go/internal/codegen"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
)

// DefaultAdminName names the admin created with a festival when none is given.
const DefaultAdminName = "Admin"

// DefaultVisitorPasswordLabel labels the visitor password created with a festival.
const DefaultVisitorPasswordLabel = "Default"

// FestivalService creates festivals and manages their codes and settings.
type FestivalService struct {
	deps
	codes *cache.FestivalCodes
}

// CreateFestivalInput is the festival creation form.
type CreateFestivalInput struct {
	Name               string `json:"name"`
	Organiser          string `json:"organiser"`
	RequiresPassword   bool   `json:"requires_password"`
	UserPassword       string `json:"user_password"`
	AdminName          string `json:"admin_name"`
	AdminPassword      string `json:"admin_password"`
	SuperAdminPassword string `json:"super_admin_password"`
	CEStartDate        string `json:"ce_start_date"`
	CEEndDate          string `json:"ce_end_date"`
	EventStartDate     string `json:"event_start_date"`
	EventEndDate       string `json:"event_end_date"`
}

// DatesInput carries raw festival dates.
type DatesInput struct {
	CEStartDate    string `json:"ce_start_date"`
	CEEndDate      string `json:"ce_end_date"`
	EventStartDate string `json:"event_start_date"`
	EventEndDate   string `json:"event_end_date"`
}

// CreatedFestival is the result of Create.
type CreatedFestival struct {
	Festival        model.Festival
	DefaultAdmin    model.Admin
	VisitorPassword *model.UserPassword
}

// Create validates in and inserts the festival, its default admin and, for a
// password-gated festival with a visitor password, one default visitor
// password owned by that admin. Everything is written in one transaction.
func (s *FestivalService) Create(ctx context.Context, in CreateFestivalInput) (CreatedFestival, error) {
	name, err := requiredText("name", in.Name, MaxNameLength)
	if err != nil {
		return CreatedFestival{}, err
	}
	organiser := strings.TrimSpace(in.Organiser)
	if utf8.RuneCountInString(organiser) > MaxNameLength {
		return CreatedFestival{}, model.Validation("organiser", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	adminName := strings.TrimSpace(in.AdminName)
	if adminName == "" {
		adminName = DefaultAdminName
	}
	if adminName, err = requiredText("admin_name", adminName, MaxNameLength); err != nil {
		return CreatedFestival{}, err
	}

	dates, err := model.ParseFestivalDates(in.CEStartDate, in.CEEndDate, in.EventStartDate, in.EventEndDate)
	if err != nil {
		return CreatedFestival{}, err
	}

	superHash, err := hashSecret("super_admin_password", in.SuperAdminPassword)
	if err != nil {
		return CreatedFestival{}, err
	}
	if in.AdminPassword == in.SuperAdminPassword {
		return CreatedFestival{}, model.Validation("admin_password", "must differ from super_admin_password")
	}
	adminHash, err := hashSecret("admin_password", in.AdminPassword)
	if err != nil {
		return CreatedFestival{}, err
	}

	var visitorHash, visitorDigest string
	if in.RequiresPassword && in.UserPassword != "" {
		if visitorHash, err = hashSecret("user_password", in.UserPassword); err != nil {
			return CreatedFestival{}, err
		}
		visitorDigest = auth.Digest(s.digestKey, in.UserPassword)
	}

	code, err := s.gen.NewFestivalCode(ctx, s.store.FestivalCodeTaken)
	if err != nil {
		return CreatedFestival{}, fmt.Errorf("generating festival code: %w", err)
	}

	now := s.timestamp()
	return activity.Do(ctx, s.emitter, func() (CreatedFestival, activity.Entry, error) {
		var out CreatedFestival
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			f, err := q.CreateFestival(ctx, store.CreateFestivalParams{
				Code:               code,
				Name:               name,
				Organiser:          organiser,
				RequiresPassword:   in.RequiresPassword,
				SuperAdminPassword: superHash,
				Dates:              dates,
				CreatedAt:          now,
			})
			if err != nil {
				return err
			}

			adminCode, err := s.gen.NewAdminCode(ctx, adminName, adminCodeExists(q, f.ID))
			if err != nil {
				return fmt.Errorf("generating admin code: %w", err)
			}
			admin, err := q.CreateAdmin(ctx, store.CreateAdminParams{
				FestivalID:        f.ID,
				AdminCode:         adminCode,
				AdminName:         adminName,
				AdminPasswordHash: adminHash,
				MaxUserPasswords:  model.DefaultMaxUserPasswords,
				CreatedAt:         now,
			})
			if err != nil {
				return err
			}

			out = CreatedFestival{Festival: f, DefaultAdmin: admin}
			if visitorHash == "" {
				return nil
			}
			p, err := q.CreateUserPassword(ctx, store.CreateUserPasswordParams{
				AdminID:    admin.ID,
				FestivalID: f.ID,
				Password:   visitorHash,
				Digest:     visitorDigest,
				Label:      DefaultVisitorPasswordLabel,
				CreatedAt:  now,
			})
			if err != nil {
				return err
			}
			out.VisitorPassword = &p
			return nil
		})
		if err != nil {
			return CreatedFestival{}, activity.Entry{}, err
		}

		s.remember(ctx, out.Festival.Code, out.Festival.ID)
		s.logger.Info("festival created", "festival_id", out.Festival.ID, "code", out.Festival.Code)
		return out, activity.Entry{
			FestivalID: out.Festival.ID,
			ActionType: model.ActionFestivalCreated,
			Details: map[string]any{
				"code":              out.Festival.Code,
				"name":              out.Festival.Name,
				"requires_password": out.Festival.RequiresPassword,
				"default_admin":     out.DefaultAdmin.AdminCode,
			},
			TargetType: "festival",
			TargetID:   idString(out.Festival.ID),
		}, nil
	})
}

// adminCodeExists checks a candidate admin code both globally and within the
// festival. Both checks must report absence for the code to be free.
func adminCodeExists(q *store.Queries, festivalID int64) codegen.ExistsFunc {
	return codegen.ExistsInAny(
		q.AdminCodeExists,
		func(ctx context.Context, code string) (bool, error) {
			return q.AdminCodeExistsInFestival(ctx, festivalID, code)
		},
	)
}

// Get returns a festival by id.
func (s *FestivalService) Get(ctx context.Context, id int64) (model.Festival, error) {
	return s.store.GetFestivalByID(ctx, id)
}

// Resolve finds the festival for code, which may be the current code or a live
// alias left behind by a code change.
func (s *FestivalService) Resolve(ctx context.Context, code string) (model.Festival, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Festival{}, model.ErrNotFound
	}

	if s.codes != nil {
		if id, ok := s.codes.Lookup(ctx, code); ok {
			f, err := s.store.GetFestivalByID(ctx, id)
			if err == nil {
				return f, nil
			}
			if !errors.Is(err, model.ErrNotFound) {
				return model.Festival{}, err
			}
			s.forget(ctx, code)
		}
	}

	f, err := s.store.GetFestivalByCode(ctx, code)
	if errors.Is(err, model.ErrNotFound) {
		var id int64
		id, err = s.store.GetFestivalIDByAlias(ctx, code)
		if err != nil {
			return model.Festival{}, err
		}
		f, err = s.store.GetFestivalByID(ctx, id)
	}
	if err != nil {
		return model.Festival{}, err
	}

	s.remember(ctx, code, f.ID)
	return f, nil
}

// ChangeCode replaces the code of f with a custom 6-12 character code. The old
// code becomes an alias that keeps resolving until it is invalidated.
func (s *FestivalService) ChangeCode(ctx context.Context, f *model.Festival, newCode string) (model.Festival, error) {
	code, err := model.NormalizeCustomCode(newCode)
	if err != nil {
		return model.Festival{}, err
	}
	if code == f.Code {
		return *f, nil
	}

	oldCode := f.Code
	now := s.timestamp()
	return activity.Do(ctx, s.emitter, func() (model.Festival, activity.Entry, error) {
		var updated model.Festival
		err := s.store.ExecTx(ctx, func(q *store.Queries) error {
			aliasOwner, err := q.GetFestivalIDByAlias(ctx, code)
			switch {
			case err == nil && aliasOwner == f.ID:
				// Reclaiming one of this festival's own old codes.
				if err := q.DeleteFestivalAlias(ctx, f.ID, code); err != nil {
					return err
				}
			case err == nil:
				return &model.DuplicateError{Entity: "festival code", Value: code}
			case !errors.Is(err, model.ErrNotFound):
				return err
			}

			taken, err := q.FestivalCodeTaken(ctx, code)
			if err != nil {
				return err
			}
			if taken {
				return &model.DuplicateError{Entity: "festival code", Value: code}
			}

			if err := q.UpdateFestivalCode(ctx, f.ID, code, now); err != nil {
				return err
			}
			if err := q.CreateFestivalAlias(ctx, oldCode, f.ID, now); err != nil {
				return err
			}
			updated, err = q.GetFestivalByID(ctx, f.ID)
			return err
		})
		if err != nil {
			return model.Festival{}, activity.Entry{}, err
		}

		s.forget(ctx, oldCode, code)
		s.remember(ctx, code, updated.ID)
		return updated, activity.Entry{
			FestivalID: f.ID,
			ActionType: model.ActionFestivalCodeChanged,
			Details:    map[string]any{"old_code": oldCode, "new_code": code},
			TargetType: "festival",
			TargetID:   idString(f.ID),
		}, nil
	})
}

// Aliases lists the old codes that still resolve to f.
func (s *FestivalService) Aliases(ctx context.Context, f *model.Festival) ([]string, error) {
	return s.store.ListFestivalAliases(ctx, f.ID)
}

// InvalidateAlias stops an old code of f from resolving.
func (s *FestivalService) InvalidateAlias(ctx context.Context, f *model.Festival, alias string) error {
	alias = strings.ToUpper(strings.TrimSpace(alias))
	_, err := activity.Do(ctx, s.emitter, func() (struct{}, activity.Entry, error) {
		if err := s.store.DeleteFestivalAlias(ctx, f.ID, alias); err != nil {
			return struct{}{}, activity.Entry{}, err
		}
		s.forget(ctx, alias)
		return struct{}{}, activity.Entry{
			FestivalID: f.ID,
			ActionType: model.ActionCodeAliasInvalidated,
			Details:    map[string]any{"alias": alias},
			TargetType: "festival",
			TargetID:   idString(f.ID),
		}, nil
	})
	return err
}

// UpdateDates replaces the date windows of f. The new CE window must still
// contain every recorded collection and expense.
func (s *FestivalService) UpdateDates(ctx context.Context, f *model.Festival, in DatesInput) (model.Festival, error) {
	dates, err := model.ParseFestivalDates(in.CEStartDate, in.CEEndDate, in.EventStartDate, in.EventEndDate)
	if err != nil {
		return model.Festival{}, err
	}

	first, last, err := s.store.TransactionDateRange(ctx, f.ID)
	if err != nil {
		return model.Festival{}, err
	}
	if first != nil && first.Before(dates.CEStart) {
		return model.Festival{}, model.Validation("ce_start_date",
			"must not be after the earliest transaction date "+model.FormatDate(*first))
	}
	if last != nil && last.After(dates.CEEnd) {
		return model.Festival{}, model.Validation("ce_end_date",
			"must not be before the latest transaction date "+model.FormatDate(*last))
	}

	return activity.Do(ctx, s.emitter, func() (model.Festival, activity.Entry, error) {
		if err := s.store.UpdateFestivalDates(ctx, f.ID, dates, s.timestamp()); err != nil {
			return model.Festival{}, activity.Entry{}, err
		}
		updated, err := s.store.GetFestivalByID(ctx, f.ID)
		if err != nil {
			return model.Festival{}, activity.Entry{}, err
		}
		details := map[string]any{
			"ce_start_date": model.FormatDate(dates.CEStart),
			"ce_end_date":   model.FormatDate(dates.CEEnd),
		}
		if dates.EventStart != nil {
			details["event_start_date"] = model.FormatDate(*dates.EventStart)
			details["event_end_date"] = model.FormatDate(*dates.EventEnd)
		}
		return updated, activity.Entry{
			FestivalID: f.ID,
			ActionType: model.ActionFestivalDatesUpdated,
			Details:    details,
			TargetType: "festival",
			TargetID:   idString(f.ID),
		}, nil
	})
}

// SetVisitorGate turns the visitor password gate on or off. A non-empty
// password replaces the festival-wide visitor password; an empty one keeps it.
func (s *FestivalService) SetVisitorGate(ctx context.Context, f *model.Festival, requiresPassword bool, password string) (model.Festival, error) {
	hash := f.UserPassword
	if password != "" {
		var err error
		if hash, err = hashSecret("user_password", password); err != nil {
			return model.Festival{}, err
		}
	}

	return activity.Do(ctx, s.emitter, func() (model.Festival, activity.Entry, error) {
		if err := s.store.UpdateVisitorGate(ctx, f.ID, requiresPassword, hash, s.timestamp()); err != nil {
			return model.Festival{}, activity.Entry{}, err
		}
		updated, err := s.store.GetFestivalByID(ctx, f.ID)
		if err != nil {
			return model.Festival{}, activity.Entry{}, err
		}
		return updated, activity.Entry{
			FestivalID: f.ID,
			ActionType: model.ActionVisitorGateUpdated,
			Details: map[string]any{
				"requires_password": requiresPassword,
				"password_changed":  password != "",
			},
			TargetType: "festival",
			TargetID:   idString(f.ID),
		}, nil
	})
}

func (s *FestivalService) remember(ctx context.Context, code string, id int64) {
	if s.codes == nil {
		return
	}
	if err := s.codes.Remember(ctx, code, id); err != nil {
		s.logger.Warn("caching festival code failed", "category", model.EventCategoryCache, "code", code, "error", err)
	}
}

func (s *FestivalService) forget(ctx context.Context, codes ...string) {
	if s.codes == nil {
		return
	}
	if err := s.codes.Forget(ctx, codes...); err != nil {
		s.logger.Warn("evicting festival code failed", "category", model.EventCategoryCache, "codes", codes, "error", err)
	}
}
