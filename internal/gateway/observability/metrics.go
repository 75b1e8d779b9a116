package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecoledger"

// Metrics owns a private registry so tests and multiple app instances never
// collide on the default one. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	scans          *prometheus.CounterVec
	co2Saved       prometheus.Counter
	nearestQueries prometheus.Counter
	storeErrors    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"route"}),
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Recorded scans by category.",
		}, []string{"category"}),
		co2Saved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "co2_saved_kg_total",
			Help:      "Kilograms of CO2 saved across all recorded scans.",
		}),
		nearestQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nearest_queries_total",
			Help:      "Nearest-center lookups served.",
		}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Record store failures by operation.",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ScanRecorded(category string, co2Saved float64) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(category).Inc()
	if co2Saved > 0 {
		m.co2Saved.Add(co2Saved)
	}
}

func (m *Metrics) NearestQueried() {
	if m == nil {
		return
	}
	m.nearestQueries.Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the text exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
