package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func requestWithRoute(method, target, pattern string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, pattern)
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithRoute(http.MethodGet, "/matters", "/matters"))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `lexora_http_requests_total{code="418",route="/matters"} 1`) {
		t.Fatalf("expected request counter, got: %s", body)
	}
	if !strings.Contains(body, `lexora_http_request_duration_seconds_bucket{route="/matters"`) {
		t.Fatalf("expected duration histogram, got: %s", body)
	}
}

func TestMetricsMiddlewareCountsAuthFailures(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestWithRoute(http.MethodGet, "/firms", "/firms"))
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "lexora_auth_failures_total 3") {
		t.Fatalf("expected auth failure counter at 3, got: %s", body)
	}
}

func TestRecordPermissionDenial(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordPermissionDenial("matters:write")
	metrics.RecordPermissionDenial("matters:write")
	metrics.RecordPermissionDenial("billing:edit")

	body := scrape(t, metrics)
	if !strings.Contains(body, `lexora_permission_denials_total{permission="matters:write"} 2`) {
		t.Fatalf("expected denial counter, got: %s", body)
	}
	if !strings.Contains(body, `lexora_permission_denials_total{permission="billing:edit"} 1`) {
		t.Fatalf("expected denial counter, got: %s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics

	metrics.RecordPermissionDenial("matters:write")

	passthrough := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	passthrough.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected passthrough, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected unavailable handler, got %d", rr.Code)
	}
}
