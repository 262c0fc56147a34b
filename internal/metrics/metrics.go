// Package metrics exposes Prometheus counters for page traffic, backend
// calls, bulk operations and sign-ins.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "proplex"

// Registry holds the dashboard's metric vectors on a private registry.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	BulkItemsTotal         *prometheus.CounterVec
	AuthEventsTotal        *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of dashboard HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of dashboard HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		BackendRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of calls to the Proplex API",
		}, []string{"method", "endpoint", "status"}),
		BackendRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of calls to the Proplex API in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		BulkItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Items processed by bulk operations",
		}, []string{"operation", "outcome"}),
		AuthEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session sign-ins, sign-outs and invalidations",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.BulkItemsTotal,
		m.AuthEventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics in the Prometheus text format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one dashboard request.
func (m *Registry) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveBackend records one backend call. Status 0 is a transport failure.
func (m *Registry) ObserveBackend(method, route string, status int, elapsed time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.BackendRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveBulk records one bulk item.
func (m *Registry) ObserveBulk(operation, outcome string) {
	m.BulkItemsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveAuth records a session change.
func (m *Registry) ObserveAuth(kind string) {
	m.AuthEventsTotal.WithLabelValues(kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware counts requests by their matched route pattern so that record
// ids do not become label values.
func (m *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(r.Method, path, rec.status, time.Since(start))
	})
}
