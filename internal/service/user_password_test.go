// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

func gatedFixture(t *testing.T) (*fixture, CreatedFestival, model.Admin) {
	t.Helper()
	fx := newFixture(t)
	created := fx.createFestival(t, func(in *CreateFestivalInput) { in.RequiresPassword = true })
	second, err := fx.svc.Admins.Create(context.Background(), &created.Festival, session.SuperAdmin(),
		CreateAdminInput{Name: "Second", Password: "second-pass", MaxUserPasswords: 2})
	require.NoError(t, err)
	return fx, created, second
}

func TestUserPasswordQuota(t *testing.T) {
	fx, created, second := gatedFixture(t)
	ctx := context.Background()
	f := created.Festival
	actor := session.Admin(second.ID)

	for i := range 2 {
		_, err := fx.svc.UserPasswords.Create(ctx, &f, actor, CreateUserPasswordInput{
			Label:    fmt.Sprintf("Gate %d", i),
			Password: fmt.Sprintf("gate-pass-%d", i),
		})
		require.NoError(t, err)
	}

	_, err := fx.svc.UserPasswords.Create(ctx, &f, actor, CreateUserPasswordInput{Label: "Gate 3", Password: "gate-pass-3"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "quota of 2")
}

func TestUserPasswordUniqueness(t *testing.T) {
	fx, created, second := gatedFixture(t)
	ctx := context.Background()
	f := created.Festival

	_, err := fx.svc.UserPasswords.Create(ctx, &f, session.Admin(created.DefaultAdmin.ID),
		CreateUserPasswordInput{Label: "Main", Password: "shared-pass"})
	require.NoError(t, err)

	// Another admin of the same festival cannot issue the same password.
	_, err = fx.svc.UserPasswords.Create(ctx, &f, session.Admin(second.ID),
		CreateUserPasswordInput{Label: "Main", Password: "shared-pass"})
	var dup *model.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "visitor password", dup.Entity)

	// Labels are unique per admin.
	_, err = fx.svc.UserPasswords.Create(ctx, &f, session.Admin(created.DefaultAdmin.ID),
		CreateUserPasswordInput{Label: "Main", Password: "other-pass"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "password label", dup.Entity)

	// Another festival may reuse it.
	other := fx.createFestival(t, func(in *CreateFestivalInput) { in.RequiresPassword = true }).Festival
	_, err = fx.svc.UserPasswords.Create(ctx, &other, session.SuperAdmin(),
		CreateUserPasswordInput{Label: "Main", Password: "shared-pass"})
	require.NoError(t, err)
}

func TestUserPasswordOwnership(t *testing.T) {
	fx, created, second := gatedFixture(t)
	ctx := context.Background()
	f := created.Festival
	actor := session.Admin(second.ID)

	_, err := fx.svc.UserPasswords.Create(ctx, &f, actor, CreateUserPasswordInput{
		AdminID: &created.DefaultAdmin.ID, Label: "Sneaky", Password: "sneaky-pass",
	})
	assert.ErrorIs(t, err, model.ErrForbidden)

	byDefault, err := fx.svc.UserPasswords.Create(ctx, &f, session.SuperAdmin(), CreateUserPasswordInput{Label: "Front", Password: "front-pass"})
	require.NoError(t, err)
	assert.Equal(t, created.DefaultAdmin.ID, byDefault.AdminID)

	bySecond, err := fx.svc.UserPasswords.Create(ctx, &f, session.SuperAdmin(), CreateUserPasswordInput{
		AdminID: &second.ID, Label: "Back", Password: "back-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, bySecond.AdminID)

	own, err := fx.svc.UserPasswords.List(ctx, &f, actor)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Back", own[0].Label)

	all, err := fx.svc.UserPasswords.List(ctx, &f, session.SuperAdmin())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = fx.svc.UserPasswords.List(ctx, &f, session.Visitor("Asha"))
	assert.ErrorIs(t, err, model.ErrForbidden)

	assert.ErrorIs(t, fx.svc.UserPasswords.Delete(ctx, &f, actor, byDefault.ID), model.ErrNotFound)
	require.NoError(t, fx.svc.UserPasswords.Delete(ctx, &f, actor, bySecond.ID))
}

func TestUserPasswordToggleGatesUnlock(t *testing.T) {
	fx, created, second := gatedFixture(t)
	ctx := context.Background()
	f := created.Festival
	actor := session.Admin(second.ID)

	p, err := fx.svc.UserPasswords.Create(ctx, &f, actor, CreateUserPasswordInput{Label: "Gate", Password: "gate-pass"})
	require.NoError(t, err)

	creds := access.Credentials{Tier: access.TierVisitor, Password: "gate-pass", VisitorName: "Asha"}
	_, err = fx.svc.Access.Unlock(ctx, &f, creds)
	require.NoError(t, err)

	p, err = fx.svc.UserPasswords.SetActive(ctx, &f, actor, p.ID, false)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	_, err = fx.svc.Access.Unlock(ctx, &f, creds)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = fx.svc.UserPasswords.SetActive(ctx, &f, actor, p.ID, true)
	require.NoError(t, err)
	_, err = fx.svc.Access.Unlock(ctx, &f, creds)
	require.NoError(t, err)

	list, err := fx.svc.UserPasswords.List(ctx, &f, actor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].UsageCount)

	types := fx.activityTypes(t, &f)
	assert.Contains(t, types, model.ActionUserPasswordCreated)
	assert.Contains(t, types, model.ActionUserPasswordToggled)
}
