// ABOUTME: Tests for CORS and chain middleware
// ABOUTME: Verifies origin whitelisting, preflight handling, and middleware ordering

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	handler := CORS([]string{"https://example.com", "http://localhost:5173"})(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://example.com")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "GET, POST, OPTIONS")
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestCORS_DisallowedOriginNoHeaders(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
	}{
		{"not in list", []string{"https://example.com"}, "https://evil.com"},
		{"different port", []string{"http://localhost:5173"}, "http://localhost:3000"},
		{"empty list", nil, "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.allowed)(okHandler(nil))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Errorf("Access-Control-Allow-Origin should be empty, got %q", got)
			}
		})
	}
}

func TestCORS_HandlesPreflight(t *testing.T) {
	handlerCalled := false
	handler := CORS([]string{"https://example.com"})(okHandler(&handlerCalled))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/plan", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if handlerCalled {
		t.Error("Handler should not be called for OPTIONS preflight")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://example.com")
	}
}

func TestCORS_PassesThroughSameOrigin(t *testing.T) {
	handlerCalled := false
	handler := CORS(nil)(okHandler(&handlerCalled))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plan", nil))

	if !handlerCalled {
		t.Error("Handler should be called for POST")
	}
}

func TestChain_AppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	trace := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), trace("first"), trace("second"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	expected := []string{"first-before", "second-before", "handler", "second-after", "first-after"}
	if len(order) != len(expected) {
		t.Fatalf("order length = %d, want %d", len(order), len(expected))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("order[%d] = %q, want %q", i, order[i], v)
		}
	}
}

func TestChain_EmptyMiddlewares(t *testing.T) {
	handlerCalled := false
	handler := Chain(okHandler(&handlerCalled))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !handlerCalled {
		t.Error("Handler should be called with empty middleware chain")
	}
}
