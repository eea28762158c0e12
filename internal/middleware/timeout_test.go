package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTimeoutMiddlewareNormalRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("success"))
	})

	wrapped := Timeout(5 * time.Second)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if body := rr.Body.String(); body != "success" {
		t.Errorf("Body = %q, want %q", body, "success")
	}
	if rr.Header().Get("X-Handler") != "yes" {
		t.Error("handler header was not copied")
	}
}

func TestTimeoutMiddlewareSlowRequest(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		<-r.Context().Done()
		<-release
		w.Header().Set("X-Late", "yes")
		_, _ = w.Write([]byte("late"))
	})

	wrapped := Timeout(20 * time.Millisecond)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	close(release)
	<-finished

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rr.Body.String(), `"timeout"`) {
		t.Errorf("Body = %q, want timeout error code", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "late") {
		t.Error("write after timeout reached the client")
	}
	if rr.Header().Get("X-Late") != "" {
		t.Error("header set after timeout reached the client")
	}
}

func TestTimeoutWriterWriteAfterTimeout(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{ResponseWriter: rr, header: make(http.Header), timedOut: true}

	if _, err := tw.Write([]byte("x")); err != http.ErrHandlerTimeout {
		t.Errorf("Write() error = %v, want ErrHandlerTimeout", err)
	}
}
