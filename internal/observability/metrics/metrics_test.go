package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
)

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewHTTPServerMetrics("hris-api")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/onboarding/{applicantID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware("hris-api", mux)

	for _, id := range []string{"APP-1", "APP-2"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/onboarding/"+id, nil))
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("hris-api", http.MethodGet, "/v1/onboarding/{applicantID}", "418"))
	if got != 2 {
		t.Fatalf("expected 2 requests on the pattern label, got %v", got)
	}
}

func TestRecordMutationAndBreakerState(t *testing.T) {
	m := NewHTTPServerMetrics("hris-api")
	m.RecordMutation("hris-api", "add_task", nil)
	m.RecordMutation("hris-api", "add_task", errors.New("boom"))
	m.SetBreakerState("postgres.kv.put", gobreaker.StateOpen)
	m.RecordRateLimited("hris-api")

	if v := testutil.ToFloat64(m.mutationsTotal.WithLabelValues("hris-api", "add_task", "error")); v != 1 {
		t.Fatalf("expected one failed mutation, got %v", v)
	}
	if v := testutil.ToFloat64(m.breakerState.WithLabelValues("postgres.kv.put")); v != 2 {
		t.Fatalf("expected open state 2, got %v", v)
	}
	if v := testutil.ToFloat64(m.rateLimited.WithLabelValues("hris-api")); v != 1 {
		t.Fatalf("expected one rate limited request, got %v", v)
	}
}

func TestWorkerMetricsSweep(t *testing.T) {
	m := NewWorkerMetrics("hris-worker")
	m.RecordEvent("hris-worker", "onboarding.task_added", 50*time.Millisecond)
	m.RecordSweep("hris-worker", time.Second, 4, 3, 2, nil)
	m.RecordSweep("hris-worker", time.Second, 0, 0, 0, errors.New("io"))

	if v := testutil.ToFloat64(m.eventsTotal.WithLabelValues("hris-worker", "onboarding.task_added")); v != 1 {
		t.Fatalf("expected one event, got %v", v)
	}
	if v := testutil.ToFloat64(m.overdueTasks); v != 3 {
		t.Fatalf("failed sweep must keep last gauges, got %v", v)
	}
	if v := testutil.ToFloat64(m.bottlenecks); v != 2 {
		t.Fatalf("expected 2 bottlenecks, got %v", v)
	}
	if v := testutil.ToFloat64(m.sweepTotal.WithLabelValues("hris-worker", "error")); v != 1 {
		t.Fatalf("expected one failed sweep, got %v", v)
	}
}
