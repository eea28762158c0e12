// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

func TestAdminCreate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.createFestival(t, nil)
	f := created.Festival

	admin, err := fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{
		Name:     "Ravi Shankar",
		Password: "second-pass",
	})
	require.NoError(t, err)

	// RAVISH is free, so the seed is kept as is.
	assert.Equal(t, "RAVISH", admin.AdminCode)
	assert.Equal(t, model.DefaultMaxUserPasswords, admin.MaxUserPasswords)
	assert.Nil(t, admin.CreatedBy, "the super admin is not an admin row")

	def, err := fx.svc.Admins.Default(ctx, &f)
	require.NoError(t, err)
	assert.Equal(t, created.DefaultAdmin.ID, def.ID)

	sess, err := fx.svc.Access.Unlock(ctx, &f, access.Credentials{Tier: access.TierAdmin, Password: "second-pass"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *sess.AdminID)

	admins, err := fx.svc.Admins.List(ctx, &f)
	require.NoError(t, err)
	assert.Len(t, admins, 2)
	assert.Contains(t, fx.activityTypes(t, &f), model.ActionAdminCreated)
}

func TestAdminCreateCodeCollision(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFestival(t, nil).Festival

	admin, err := fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{
		Name:     "Ravi Kumar",
		Password: "second-pass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "RAVIKU", admin.AdminCode)
	assert.True(t, strings.HasPrefix(admin.AdminCode, "RAV"), admin.AdminCode)
	assert.Regexp(t, adminCodeRE, admin.AdminCode)
}

func TestAdminCreateRejectsSharedPasswords(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFestival(t, nil).Festival

	_, err := fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{Name: "Second", Password: testAdminPassword})
	var dup *model.DuplicateError
	require.ErrorAs(t, err, &dup)

	_, err = fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{Name: "Second", Password: testSuperAdminPassword})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{Name: "Second", Password: "ok-pass", MaxUserPasswords: -1})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_user_passwords", ve.Field)

	_, err = fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{Name: "", Password: "ok-pass"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "admin_name", ve.Field)
}

func TestAdminDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.createFestival(t, nil)
	f := created.Festival
	super := session.SuperAdmin()

	err := fx.svc.Admins.Delete(ctx, &f, super, created.DefaultAdmin.ID)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)

	second, err := fx.svc.Admins.Create(ctx, &f, super, CreateAdminInput{Name: "Second", Password: "second-pass"})
	require.NoError(t, err)
	_, err = fx.svc.UserPasswords.Create(ctx, &f, session.Admin(second.ID), CreateUserPasswordInput{Label: "Gate", Password: "gate-pass"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Admins.Delete(ctx, &f, super, second.ID))
	assert.Equal(t, 0, fx.count(t, `SELECT COUNT(*) FROM user_passwords WHERE admin_id = ?`, second.ID))
	_, err = fx.svc.Admins.Get(ctx, &f, second.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Admins.Delete(ctx, &f, super, second.ID), model.ErrNotFound)
}

func TestAdminDeleteScopedToFestival(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.createFestival(t, nil).Festival
	b := fx.createFestival(t, nil).Festival

	other, err := fx.svc.Admins.Create(ctx, &b, session.SuperAdmin(), CreateAdminInput{Name: "Other", Password: "other-pass"})
	require.NoError(t, err)
	assert.ErrorIs(t, fx.svc.Admins.Delete(ctx, &a, session.SuperAdmin(), other.ID), model.ErrNotFound)
}

func TestAdminChangePassword(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.createFestival(t, nil)
	f := created.Festival
	second, err := fx.svc.Admins.Create(ctx, &f, session.SuperAdmin(), CreateAdminInput{Name: "Second", Password: "second-pass"})
	require.NoError(t, err)

	self := session.Admin(second.ID)
	require.NoError(t, fx.svc.Admins.ChangePassword(ctx, &f, self, second.ID, "renewed-pass"))
	_, err = fx.svc.Access.Unlock(ctx, &f, access.Credentials{Tier: access.TierAdmin, Password: "second-pass"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	sess, err := fx.svc.Access.Unlock(ctx, &f, access.Credentials{Tier: access.TierAdmin, Password: "renewed-pass"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, *sess.AdminID)

	// Admins cannot change other admins' passwords.
	err = fx.svc.Admins.ChangePassword(ctx, &f, self, created.DefaultAdmin.ID, "hijack-pass")
	assert.ErrorIs(t, err, model.ErrForbidden)
	err = fx.svc.Admins.ChangePassword(ctx, &f, session.Visitor("Asha"), second.ID, "hijack-pass")
	assert.ErrorIs(t, err, model.ErrForbidden)

	// Nor reuse another admin's password.
	err = fx.svc.Admins.ChangePassword(ctx, &f, session.SuperAdmin(), second.ID, testAdminPassword)
	var dup *model.DuplicateError
	require.ErrorAs(t, err, &dup)

	assert.Contains(t, fx.activityTypes(t, &f), model.ActionAdminPasswordChanged)
}

func TestAdminCreatedByAdmin(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.createFestival(t, nil)
	f := created.Festival

	admin, err := fx.svc.Admins.Create(ctx, &f, session.Admin(created.DefaultAdmin.ID), CreateAdminInput{
		Name:     "Meera",
		Password: "meera-pass",
	})
	require.NoError(t, err)
	require.NotNil(t, admin.CreatedBy)
	assert.Equal(t, created.DefaultAdmin.ID, *admin.CreatedBy)

	def, err := fx.svc.Admins.Default(ctx, &f)
	require.NoError(t, err)
	assert.Equal(t, created.DefaultAdmin.ID, def.ID)
}

func TestAdminSetActive(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.createFestival(t, nil)
	f := created.Festival
	super := session.SuperAdmin()

	admin, err := fx.svc.Admins.Create(ctx, &f, super, CreateAdminInput{Name: "Bee", Password: "bee-pass"})
	require.NoError(t, err)

	off, err := fx.svc.Admins.SetActive(ctx, &f, super, admin.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = fx.svc.Access.Unlock(ctx, &f, access.Credentials{Tier: access.TierAdmin, Password: "bee-pass"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	on, err := fx.svc.Admins.SetActive(ctx, &f, super, admin.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	sess, err := fx.svc.Access.Unlock(ctx, &f, access.Credentials{Tier: access.TierAdmin, Password: "bee-pass"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *sess.AdminID)

	_, err = fx.svc.Admins.SetActive(ctx, &f, super, created.DefaultAdmin.ID, false)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = fx.svc.Admins.SetActive(ctx, &f, super, 9999, false)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.Contains(t, fx.activityTypes(t, &f), model.ActionAdminToggled)
}
