package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	handler := APIKeyMiddleware("topsecret")(okHandler())

	tests := []struct {
		name       string
		path       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing key", "/api/v1/watches", "", "", http.StatusUnauthorized},
		{"wrong key", "/api/v1/watches", "X-API-Key", "nope", http.StatusUnauthorized},
		{"x-api-key header", "/api/v1/watches", "X-API-Key", "topsecret", http.StatusOK},
		{"bearer token", "/api/v1/watches", "Authorization", "Bearer topsecret", http.StatusOK},
		{"health bypasses auth", "/health", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAPIKeyMiddleware_DisabledWhenEmpty(t *testing.T) {
	handler := APIKeyMiddleware("")(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/watches", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no key configured", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(1)(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/watches", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	// immediate second request from the same IP trips the limiter
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}
