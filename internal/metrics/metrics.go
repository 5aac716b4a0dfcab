// Package metrics exposes Prometheus instrumentation for the console.
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the console registry. A nil *Collector is valid and records
// nothing.
type Collector struct {
	registry *prometheus.Registry
	handler  http.Handler

	backendDuration *prometheus.HistogramVec
	backendTotal    *prometheus.CounterVec
	staleResponses  *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New registers the console collectors on a fresh registry.
func New() *Collector {
	registry := prometheus.NewRegistry()

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amcham_backend_request_duration_seconds",
		Help:    "Duration of calls to the AmCham backend in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "method"})

	backendTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amcham_backend_requests_total",
		Help: "Calls to the AmCham backend by resulting status (0 when no response)",
	}, []string{"resource", "method", "status"})

	staleResponses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amcham_listview_stale_responses_total",
		Help: "List responses discarded because a newer request was issued",
	}, []string{"view"})

	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amcham_session_events_total",
		Help: "Session lifecycle events",
	}, []string{"event"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of console HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of console HTTP requests",
	}, []string{"method", "path", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(backendDuration, backendTotal, staleResponses, sessionEvents, requestDuration, requestTotal, goroutines)

	return &Collector{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		backendDuration: backendDuration,
		backendTotal:    backendTotal,
		staleResponses:  staleResponses,
		sessionEvents:   sessionEvents,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return c.handler
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveBackend records one backend call.
func (c *Collector) ObserveBackend(resource, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.backendDuration.WithLabelValues(resource, method).Observe(d.Seconds())
	c.backendTotal.WithLabelValues(resource, method, strconv.Itoa(status)).Inc()
}

// StaleResponse counts a discarded out-of-order list response.
func (c *Collector) StaleResponse(view string) {
	if c == nil {
		return
	}
	c.staleResponses.WithLabelValues(view).Inc()
}

// SessionEvent counts a session lifecycle event such as "login" or "invalidated".
func (c *Collector) SessionEvent(event string) {
	if c == nil {
		return
	}
	c.sessionEvents.WithLabelValues(event).Inc()
}

// ObserveHTTPRequest records one console request.
func (c *Collector) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if c == nil {
		return
	}
	label := strconv.Itoa(status)
	c.requestDuration.WithLabelValues(method, path, label).Observe(d.Seconds())
	c.requestTotal.WithLabelValues(method, path, label).Inc()
}
