// Package metrics provides Prometheus instrumentation and fetch latency
// percentiles for the dashboard service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datahub/internal/models"
)

const namespace = "datahub"

// Metrics holds the collectors of one service instance. Each instance has its
// own registry so tests and CLI runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry
	latency  *LatencyTracker

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FetchDuration       *prometheus.HistogramVec
	FetchFallbacksTotal *prometheus.CounterVec
	RefreshesTotal      prometheus.Counter
	StaleResultsTotal   prometheus.Counter
	ChartRendersTotal   *prometheus.CounterVec
	WebSocketClients    prometheus.Gauge
	MockSources         prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		latency:  NewLatencyTracker(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, path pattern, and status code.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Backend fetch duration in seconds by resource and resulting data source.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "source"},
		),
		FetchFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_fallbacks_total",
				Help:      "Fetches that fell back to mock data, by resource.",
			},
			[]string{"resource"},
		),
		RefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Full data refreshes started.",
		}),
		StaleResultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Load results discarded because a newer refresh had started.",
		}),
		ChartRendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chart_renders_total",
				Help:      "Chart renders by canvas id.",
			},
			[]string{"chart"},
		),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of currently connected dashboard pages.",
		}),
		MockSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mock_sources",
			Help:      "Number of resources currently served from mock data.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FetchDuration,
		m.FetchFallbacksTotal,
		m.RefreshesTotal,
		m.StaleResultsTotal,
		m.ChartRendersTotal,
		m.WebSocketClients,
		m.MockSources,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Latency returns the fetch latency tracker
func (m *Metrics) Latency() *LatencyTracker {
	return m.latency
}

// ObserveFetch records one resource load
func (m *Metrics) ObserveFetch(resource models.Resource, source models.DataSource, d time.Duration) {
	m.FetchDuration.WithLabelValues(string(resource), string(source)).Observe(d.Seconds())
	if source == models.SourceMock {
		m.FetchFallbacksTotal.WithLabelValues(string(resource)).Inc()
	}
	m.latency.Observe(resource, d)
}

// ObserveRender counts a chart render
func (m *Metrics) ObserveRender(chartID string) {
	m.ChartRendersTotal.WithLabelValues(chartID).Inc()
}

// Middleware records request count and latency for every gin route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath() // route pattern keeps label cardinality bounded
		if path == "" {
			path = "unmatched"
		}
		timer := prometheus.NewTimer(m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path))

		c.Next()

		timer.ObserveDuration()
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, statusBucket(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 100:
		return strconv.Itoa(code)
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
