package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/festivo-go/internal/model"
)

// CSRFConfig configures CSRF. filippo.io/csrf/gorilla decides from the
// Sec-Fetch-Site and Origin headers, so API clients that send neither are
// let through and no token round trip is needed.
type CSRFConfig struct {
	AuthKey        []byte       // 32 bytes, required by the gorilla-compatible API
	TrustedOrigins []string     // host:port
	OnFailure      http.Handler // defaults to a JSON 403
}

// DefaultCSRFConfig trusts localhost on port in development and nothing
// extra in production.
func DefaultCSRFConfig(authKey []byte, isDev bool, port int) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		p := strconv.Itoa(port)
		cfg.TrustedOrigins = []string{"localhost:" + p, "127.0.0.1:" + p}
	}
	return cfg
}

// CSRF rejects cross-site requests with unsafe methods.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = http.HandlerFunc(rejectCSRF)
	}
	opts := []csrf.Option{csrf.ErrorHandler(onFailure)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("cross-site request rejected",
		"category", model.EventCategoryAuth,
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "csrf_failed", "Cross-site request rejected", nil)
}
