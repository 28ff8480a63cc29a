package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(Logger(logger))
	r.Get("/ok", okHandler)
	r.Get("/health", okHandler)
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tests := []struct {
		path  string
		level zapcore.Level
	}{
		{"/ok", zapcore.InfoLevel},
		{"/health", zapcore.DebugLevel},
		{"/fail", zapcore.ErrorLevel},
		{"/missing", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
	}

	entries := logs.All()
	if len(entries) != len(tests) {
		t.Fatalf("expected %d log entries, got %d", len(tests), len(entries))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("%s: expected level %s, got %s", tt.path, tt.level, entries[i].Level)
		}
		if entries[i].ContextMap()["request_id"] == "" {
			t.Errorf("%s: expected request id to be logged", tt.path)
		}
	}
}

func TestRoutePattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/api/v1/metrics/breakdown/{dimension}", func(w http.ResponseWriter, req *http.Request) {
		got = routePattern(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/metrics/breakdown/sport", nil))

	if got != "/api/v1/metrics/breakdown/{dimension}" {
		t.Errorf("expected route pattern, got %s", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	if p := routePattern(req); p != "/plain" {
		t.Errorf("expected raw path without a router, got %s", p)
	}
}

func TestMetrics_PassesThrough(t *testing.T) {
	handler := Metrics()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	handler := RateLimiter(1)(http.HandlerFunc(okHandler))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON body, got %s", second.Header().Get("Content-Type"))
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header for unknown origin, got %q", got)
	}
}
