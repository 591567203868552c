// Package metrics exposes Prometheus collectors for crawl runs and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	itemsTotal   *prometheus.CounterVec
	itemDuration prometheus.Histogram
	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runActive    prometheus.Gauge

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vodcrawler_items_total",
			Help: "Catalog pages handled, labeled by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		itemDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vodcrawler_item_duration_seconds",
			Help:    "Time to crawl, normalize and store one page.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vodcrawler_runs_total",
			Help: "Finished batch runs, labeled by final state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vodcrawler_run_duration_seconds",
			Help:    "Wall time of finished batch runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vodcrawler_run_active",
			Help: "1 while a batch run is in progress.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests, labeled by method and code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.itemsTotal, m.itemDuration, m.runsTotal, m.runDuration, m.runActive,
		m.httpRequestsTotal, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RunStarted() { m.runActive.Set(1) }

func (m *Metrics) RunFinished(state string, took time.Duration) {
	m.runActive.Set(0)
	m.runsTotal.WithLabelValues(state).Inc()
	m.runDuration.Observe(took.Seconds())
}

func (m *Metrics) ItemProcessed(took time.Duration) {
	m.itemsTotal.WithLabelValues("processed", "").Inc()
	m.itemDuration.Observe(took.Seconds())
}

func (m *Metrics) ItemFailed(reason string) {
	m.itemsTotal.WithLabelValues("failed", reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records count and latency of every request.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		code := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}
		m.httpRequestsTotal.WithLabelValues(c.Method(), strconv.Itoa(code)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), c.Route().Path).Observe(time.Since(start).Seconds())
		return err
	}
}
