// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the festivo JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// MaxBodyBytes caps JSON request bodies. Imports get MaxImportBytes.
const (
	MaxBodyBytes   = 1 << 20
	MaxImportBytes = 10 << 20
)

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]any) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteServiceError maps a service error to its HTTP status and envelope.
// Unknown errors are logged and reported as 500 without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rowErr *transfer.RowError
		refErr *model.ReferenceNotFoundError
		valErr *model.ValidationError
		dupErr *model.DuplicateError
	)

	details := map[string]any{}
	if errors.As(err, &rowErr) {
		details["row"] = rowErr.Row
	}

	switch {
	case errors.As(err, &refErr):
		details["field"] = refErr.Kind
		details["value"] = refErr.Value
		available := refErr.Available
		if available == nil {
			available = []string{}
		}
		details["available"] = available
		WriteError(w, http.StatusUnprocessableEntity, "reference_not_found", err.Error(), details)
	case errors.As(err, &valErr):
		if valErr.Field != "" {
			details["field"] = valErr.Field
		}
		details["reason"] = valErr.Reason
		WriteError(w, http.StatusUnprocessableEntity, "validation_error", err.Error(), details)
	case errors.As(err, &dupErr):
		WriteError(w, http.StatusConflict, "duplicate", err.Error(), map[string]any{"entity": dupErr.Entity})
	case errors.Is(err, model.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect password", nil)
	case errors.Is(err, model.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "Not allowed for this session", nil)
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, "Not found")
	case errors.Is(err, model.ErrCodeGenerationExhausted):
		WriteError(w, http.StatusServiceUnavailable, "code_generation_exhausted", err.Error(), nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected. It writes a 400 response and returns false on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return false
	}
	if dec.More() {
		WriteBadRequest(w, "Invalid JSON body: unexpected data after object")
		return false
	}
	return true
}

// readBody reads the raw request body up to limit bytes.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Body exceeds %d bytes", maxErr.Limit), nil)
			return nil, false
		}
		WriteBadRequest(w, "Failed to read body")
		return nil, false
	}
	return raw, true
}

// ParseIDParam parses the {id} route parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requireID parses {id} or writes a 400 naming entity.
func requireID(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	id, err := ParseIDParam(r)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entity+" ID")
		return 0, false
	}
	return id, true
}

// pagination reads limit and offset query parameters. Missing or malformed
// values fall back to zero and the service applies its defaults.
func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// isCSV reports whether the request body is CSV, by query or content type.
func isCSV(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, string(transfer.FormatCSV))
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv")
}
