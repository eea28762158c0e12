// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/transfer"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", model.Validation("amount", "must be positive"), http.StatusUnprocessableEntity, "validation_error"},
		{"reference", &model.ReferenceNotFoundError{Kind: "mode", Value: "Card"}, http.StatusUnprocessableEntity, "reference_not_found"},
		{"duplicate", &model.DuplicateError{Entity: "group", Value: "A"}, http.StatusConflict, "duplicate"},
		{"credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"forbidden", fmt.Errorf("deleting: %w", model.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"not found", model.ErrNotFound, http.StatusNotFound, "not_found"},
		{"exhausted", model.ErrCodeGenerationExhausted, http.StatusServiceUnavailable, "code_generation_exhausted"},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorBody(t, rec).Code)
		})
	}
}

func TestWriteServiceErrorDetails(t *testing.T) {
	err := &transfer.RowError{Row: 4, Err: &model.ReferenceNotFoundError{Kind: "group", Value: "Z", Available: []string{"A", "B"}}}

	rec := httptest.NewRecorder()
	WriteServiceError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	detail := errorBody(t, rec)
	assert.EqualValues(t, 4, detail.Details["row"])
	assert.Equal(t, "group", detail.Details["field"])
	assert.Equal(t, "Z", detail.Details["value"])
	assert.Equal(t, []any{"A", "B"}, detail.Details["available"])

	// Unreported alternatives still serialise as an empty list.
	rec = httptest.NewRecorder()
	WriteServiceError(rec, httptest.NewRequest(http.MethodPost, "/", nil), &model.ReferenceNotFoundError{Kind: "mode"})
	assert.Equal(t, []any{}, errorBody(t, rec).Details["available"])
}

func TestIsCSV(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/?format=CSV", nil)
	assert.True(t, isCSV(r))

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Content-Type", "text/csv; charset=utf-8")
	assert.True(t, isCSV(r))

	r = httptest.NewRequest(http.MethodPost, "/?format=json", nil)
	r.Header.Set("Content-Type", "text/csv")
	assert.False(t, isCSV(r))
}
