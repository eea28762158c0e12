// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package codegen generates festival and admin codes and resolves them to
// values that do not collide with existing ones.
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

// Code lengths.
const (
	FestivalCodeLength = 8
	AdminCodeLength    = 6
)

const (
	letters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanumeric = letters + "0123456789"
)

// Generator produces random codes. The zero value is not usable; use New.
type Generator struct {
	rand io.Reader
	now  func() time.Time
}

// New returns a Generator backed by crypto/rand and the wall clock.
func New() *Generator {
	return &Generator{rand: rand.Reader, now: time.Now}
}

// NewWithSource returns a Generator reading randomness from r and time from now.
// Tests use it to make candidate sequences reproducible.
func NewWithSource(r io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rand: r, now: now}
}

// FestivalCode returns 8 characters drawn uniformly from A-Z.
func (g *Generator) FestivalCode() (string, error) {
	return g.randomString(letters, FestivalCodeLength)
}

// AdminCodeSeed derives an admin code from a display name: uppercased, reduced to
// [A-Z0-9], truncated to 6 and right-padded with random [A-Z0-9] characters.
func (g *Generator) AdminCodeSeed(displayName string) (string, error) {
	var sb strings.Builder
	for _, r := range strings.ToUpper(displayName) {
		if sb.Len() == AdminCodeLength {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}

	if pad := AdminCodeLength - sb.Len(); pad > 0 {
		suffix, err := g.randomString(alphanumeric, pad)
		if err != nil {
			return "", err
		}
		sb.WriteString(suffix)
	}
	return sb.String(), nil
}

// randomString returns n characters drawn uniformly from charset.
func (g *Generator) randomString(charset string, n int) (string, error) {
	limit := big.NewInt(int64(len(charset)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(g.rand, limit)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		buf[i] = charset[idx.Int64()]
	}
	return string(buf), nil
}

var defaultGenerator = New()

// FestivalCode returns a random festival code using the default generator.
func FestivalCode() (string, error) {
	return defaultGenerator.FestivalCode()
}

// AdminCodeSeed derives an admin code seed using the default generator.
func AdminCodeSeed(displayName string) (string, error) {
	return defaultGenerator.AdminCodeSeed(displayName)
}
