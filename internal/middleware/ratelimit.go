// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedIPs bounds the limiter table. Once exceeded the table starts over,
// which briefly hands every client a fresh bucket.
const maxTrackedIPs = 10000

// ipLimiters keeps one token bucket per client IP.
type ipLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	max     int
}

func newIPLimiters(rps float64, burst int) *ipLimiters {
	return &ipLimiters{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		max:     maxTrackedIPs,
	}
}

// allow reports whether ip may make another request now.
func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) >= l.max {
			slog.Info("resetting rate limiter table", "entries", len(l.buckets))
			l.buckets = make(map[string]*rate.Limiter)
		}
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

func (l *ipLimiters) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// GlobalRateLimiter limits API requests per client IP.
type GlobalRateLimiter struct {
	limiters *ipLimiters
}

// NewGlobalRateLimiter allows rps requests per second per IP with the given burst.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{limiters: newIPLimiters(rps, burst)}
}

// Middleware rejects requests over the limit with 429.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !rl.limiters.allow(ip) {
				slog.Warn("api rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
