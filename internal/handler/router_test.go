package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/saasseed/internal/metrics"
)

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.pingFn(ctx)
}

func newTestRouter(pingErr error) (http.Handler, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	router := NewRouter(&RouterDeps{
		HealthChecker: &mockHealthChecker{pingFn: func(context.Context) error { return pingErr }},
		Gatherer:      reg,
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	return router, c
}

func TestRouter_Health_OK(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestRouter_Health_DatabaseDown(t *testing.T) {
	router, _ := newTestRouter(errors.New("connection refused"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(w.Body.String(), "DB_UNAVAILABLE") {
		t.Errorf("body should contain DB_UNAVAILABLE, got %s", w.Body.String())
	}
}

func TestRouter_Health_PingHasDeadline(t *testing.T) {
	reg := prometheus.NewRegistry()
	hasDeadline := false
	router := NewRouter(&RouterDeps{
		HealthChecker: &mockHealthChecker{pingFn: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		}},
		Gatherer: reg,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !hasDeadline {
		t.Error("ping context should carry a deadline")
	}
}

func TestRouter_Metrics_ServesCollectorMetrics(t *testing.T) {
	router, c := newTestRouter(nil)
	c.RecordCompaniesGenerated(7)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "saasseed_companies_generated_total 7") {
		t.Errorf("metrics body missing counter:\n%s", w.Body.String())
	}
}

func TestRouter_UnknownPath_NotFound(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feeds", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_PostHealth_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
