// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the festival business operations. It composes the
// store with code generation, access checks, caching and the activity log.
package service

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/auth"
	"github.com/olegiv/festivo-go/internal/cache"
	"github.com/olegiv/festivo-go/internal/codegen"
	"github.com/olegiv/festivo-go/internal/geoip"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// Field length limits shared by the services.
const (
	MaxNameLength      = 255
	MaxLabelLength     = 100
	MaxReferenceLength = 100
)

// Options configures New. Only Store is required.
type Options struct {
	Store *store.Store
	// Codes caches festival code lookups. Nil disables caching.
	Codes *cache.FestivalCodes
	// Generator defaults to one backed by crypto/rand.
	Generator *codegen.Generator
	// GeoIP resolves access log countries. Nil disables lookups.
	GeoIP *geoip.Lookup
	// DigestKey keys the visitor password uniqueness digest.
	DigestKey []byte
	Logger    *slog.Logger
	Now       func() time.Time
}

// Services bundles every service sharing one set of collaborators.
type Services struct {
	Access        *access.Engine
	Festivals     *FestivalService
	Admins        *AdminService
	UserPasswords *UserPasswordService
	References    *ReferenceService
	Transactions  *TransactionService
	AccessLogs    *AccessLogService
	Activity      *ActivityService
	Events        *EventService
}

// deps is embedded by each service.
type deps struct {
	store     *store.Store
	emitter   *activity.Emitter
	gen       *codegen.Generator
	digestKey []byte
	logger    *slog.Logger
	now       func() time.Time
}

func (d deps) timestamp() time.Time {
	return d.now().UTC()
}

// New wires all services.
func New(opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	gen := opts.Generator
	if gen == nil {
		gen = codegen.New()
	}

	d := deps{
		store:     opts.Store,
		emitter:   activity.NewEmitter(opts.Store, logger),
		gen:       gen,
		digestKey: opts.DigestKey,
		logger:    logger,
		now:       now,
	}

	return &Services{
		Access:        access.NewEngine(opts.Store.Queries, opts.DigestKey),
		Festivals:     &FestivalService{deps: d, codes: opts.Codes},
		Admins:        &AdminService{deps: d},
		UserPasswords: &UserPasswordService{deps: d},
		References:    &ReferenceService{deps: d},
		Transactions:  &TransactionService{deps: d, validator: transfer.NewValidator()},
		AccessLogs:    &AccessLogService{deps: d, geo: opts.GeoIP},
		Activity:      &ActivityService{deps: d},
		Events:        NewEventService(opts.Store.DB()),
	}
}

// requiredText trims s and enforces presence and a rune limit.
func requiredText(field, s string, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", model.Validation(field, "is required")
	}
	if utf8.RuneCountInString(s) > maxLen {
		return "", model.Validation(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return s, nil
}

// hashSecret validates a password and returns its argon2id hash.
func hashSecret(field, secret string) (string, error) {
	if err := auth.ValidateSecret(secret); err != nil {
		return "", model.Validation(field, err.Error())
	}
	h, err := auth.HashSecret(secret)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", field, err)
	}
	return h, nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
