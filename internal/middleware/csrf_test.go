package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testCSRFKey, true, 9090)
	want := map[string]bool{"localhost:9090": true, "127.0.0.1:9090": true}
	if len(dev.TrustedOrigins) != len(want) {
		t.Fatalf("dev TrustedOrigins = %v, want %d entries", dev.TrustedOrigins, len(want))
	}
	for _, origin := range dev.TrustedOrigins {
		if !want[origin] {
			t.Errorf("unexpected TrustedOrigin %q", origin)
		}
		// The library expects host:port, not a URL.
		if strings.HasPrefix(origin, "http") {
			t.Errorf("TrustedOrigin %q should be host:port", origin)
		}
	}

	prod := DefaultCSRFConfig(testCSRFKey, false, 9090)
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %v", prod.TrustedOrigins)
	}
}

func TestCSRFRejectsCrossSitePost(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false, 8080))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name          string
		method        string
		secFetchSite  string
		wantForbidden bool
	}{
		{"same origin post", http.MethodPost, "same-origin", false},
		{"api client without fetch metadata", http.MethodPost, "", false},
		{"cross site get", http.MethodGet, "cross-site", false},
		{"cross site post", http.MethodPost, "cross-site", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/festivals", nil)
			if tt.secFetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.secFetchSite)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if got := rr.Code == http.StatusForbidden; got != tt.wantForbidden {
				t.Errorf("status = %d, want forbidden=%v", rr.Code, tt.wantForbidden)
			}
			if tt.wantForbidden && !strings.Contains(rr.Body.String(), "csrf_failed") {
				t.Errorf("body = %s, want csrf_failed error code", rr.Body.String())
			}
		})
	}
}

func TestCSRFCustomFailureHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, false, 8080)
	cfg.OnFailure = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/festivals/ABCDEFGH/aliases/OLD", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rr.Code)
	}
}
