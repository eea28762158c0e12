// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

// ErrorBody is the payload under the "error" key of a failed API response.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// APIError is the JSON envelope of a failed API response.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteAPIError writes status and a JSON error envelope.
func WriteAPIError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// ClientIP returns the client address without port. chi's RealIP middleware
// rewrites RemoteAddr from proxy headers before this runs.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
