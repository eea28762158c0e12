// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/olegiv/festivo-go/internal/access"
)

// LoginProtection combines per-IP rate limiting of unlock requests with a
// lockout of repeated failures. Failures are counted per festival, tier and
// client IP. A disabled LoginProtection allows every attempt.
type LoginProtection struct {
	enabled bool

	ipLimiters *ipLimiters

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration // doubles with each lockout
	attemptWindow     time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// Enabled turns throttling on. Retries are unlimited when false.
	Enabled bool
	// IPRateLimit is unlock requests per second per IP (default: 0.5)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns the defaults with throttling disabled.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance. Call Stop to
// release the cleanup goroutine.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		enabled:           cfg.Enabled,
		ipLimiters:        newIPLimiters(cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}

	if lp.enabled {
		go lp.cleanup()
	}
	return lp
}

// Enabled reports whether throttling is active.
func (lp *LoginProtection) Enabled() bool {
	return lp.enabled
}

// Stop ends the cleanup goroutine.
func (lp *LoginProtection) Stop() {
	lp.once.Do(func() { close(lp.stop) })
}

// LoginKey identifies the failure counter for one client unlocking one tier.
func LoginKey(festivalID int64, tier access.Tier, ip string) string {
	return strconv.FormatInt(festivalID, 10) + ":" + string(tier) + ":" + ip
}

// CheckIPRateLimit reports whether a request from ip should be allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	if !lp.enabled {
		return true
	}
	return lp.ipLimiters.allow(ip)
}

// IsLocked reports whether key is currently locked and for how long.
func (lp *LoginProtection) IsLocked(key string) (bool, time.Duration) {
	if !lp.enabled {
		return false, 0
	}

	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[key]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	now := lp.now()
	if now.Before(attempt.lockedUntil) {
		return true, attempt.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailedAttempt records a failed unlock for key.
// Returns (locked, lockDuration) if key is now locked.
func (lp *LoginProtection) RecordFailedAttempt(key string) (bool, time.Duration) {
	if !lp.enabled {
		return false, 0
	}

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := lp.now()
	attempt, exists := lp.failedAttempts[key]

	if !exists {
		attempt = &loginAttempt{}
		lp.failedAttempts[key] = attempt
	}
	if !exists || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 0
		attempt.firstFailed = now
	}

	attempt.count++
	slog.Debug("unlock failure recorded", "key", key, "count", attempt.count)

	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("unlock locked due to failed attempts",
		"category", "auth",
		"key", key,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)
	return true, lockDuration
}

// RecordSuccessfulLogin clears failure tracking for key.
func (lp *LoginProtection) RecordSuccessfulLogin(key string) {
	if !lp.enabled {
		return
	}

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, key)
}

// RemainingAttempts returns the number of failures left before lockout.
func (lp *LoginProtection) RemainingAttempts(key string) int {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[key]
	lp.attemptsMu.RUnlock()

	if !exists || lp.now().Sub(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-attempt.count, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := lp.now()

	lp.attemptsMu.Lock()
	for key, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, key)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits unlock POSTs per client IP. It passes everything
// through when protection is disabled.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("unlock rate limit exceeded", "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many attempts. Please wait and try again.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RetryAfter formats d as a Retry-After header value in whole seconds.
func RetryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d", max(secs, 1))
}
