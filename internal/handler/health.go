// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/festivo-go/internal/cache"
	"github.com/olegiv/festivo-go/internal/version"
)

// Pinger is implemented by cache backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	cache     cache.Cache
	info      version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. c may be nil.
func NewHealthHandler(db *sql.DB, c cache.Cache, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     c,
		info:      info,
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	GoVersion string           `json:"go_version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. A failing database makes the service
// unavailable; a failing cache only degrades it since lookups fall back to
// the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{"database": h.checkDatabase(r.Context())}
	if h.cache != nil {
		checks["cache"] = h.checkCache(r.Context())
	}

	status, code := "healthy", http.StatusOK
	switch {
	case checks["database"].Status != "healthy":
		status, code = "unhealthy", http.StatusServiceUnavailable
	case h.cache != nil && checks["cache"].Status != "healthy":
		status = "degraded"
	}

	WriteJSON(w, code, HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.info,
		GoVersion: runtime.Version(),
		Checks:    checks,
	})
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if check := h.checkDatabase(r.Context()); check.Status != "healthy" {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: "healthy", Message: "Connected", Latency: latency.String()}
}

func (h *HealthHandler) checkCache(ctx context.Context) Check {
	p, ok := h.cache.(Pinger)
	if !ok {
		return Check{Status: "healthy", Message: "In-memory"}
	}

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: "healthy", Message: "Connected", Latency: latency.String()}
}
