package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func counterValue(t *testing.T, c *Collector, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_Records(t *testing.T) {
	c := New()

	c.ObserveBackend("companies", http.MethodGet, 200, 30*time.Millisecond)
	c.ObserveBackend("companies", http.MethodGet, 200, 10*time.Millisecond)
	c.ObserveBackend("companies", http.MethodGet, 0, time.Second)
	c.StaleResponse("companies")
	c.SessionEvent("invalidated")
	c.ObserveHTTPRequest(http.MethodGet, "/api/v1/companies", 200, time.Millisecond)

	if got := counterValue(t, c, "amcham_backend_requests_total", map[string]string{"status": "200"}); got != 2 {
		t.Errorf("backend 200 count = %v, want 2", got)
	}
	if got := counterValue(t, c, "amcham_backend_requests_total", map[string]string{"status": "0"}); got != 1 {
		t.Errorf("backend connection failures = %v, want 1", got)
	}
	if got := counterValue(t, c, "amcham_listview_stale_responses_total", map[string]string{"view": "companies"}); got != 1 {
		t.Errorf("stale responses = %v, want 1", got)
	}
	if got := counterValue(t, c, "amcham_session_events_total", map[string]string{"event": "invalidated"}); got != 1 {
		t.Errorf("session events = %v, want 1", got)
	}
	if got := counterValue(t, c, "http_requests_total", map[string]string{"path": "/api/v1/companies"}); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.StaleResponse("sectors")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "amcham_listview_stale_responses_total") {
		t.Error("exposition missing stale response counter")
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveBackend("x", "GET", 200, 0)
	c.StaleResponse("x")
	c.SessionEvent("x")
	c.ObserveHTTPRequest("GET", "/", 200, 0)
	if c.Registry() != nil {
		t.Error("nil collector registry should be nil")
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
