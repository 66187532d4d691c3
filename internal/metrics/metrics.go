// Package metrics exposes repository and HTTP metrics through Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-projectclocks/repositorycache"
)

// Collector holds all Prometheus metrics for the service on its own
// registry.
type Collector struct {
	registry *prometheus.Registry

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	Divergences *prometheus.CounterVec
	WarmedRows  *prometheus.GaugeVec
	WarmupTime  *prometheus.GaugeVec

	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

var _ repositorycache.Recorder = (*Collector)(nil)

// NewCollector creates a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Point reads served from the entity mirror",
			},
			[]string{"repository"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Point reads for identifiers absent from the entity mirror",
			},
			[]string{"repository"},
		),
		Divergences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_divergences_total",
				Help:      "Writes whose result could not be mirrored as read",
			},
			[]string{"repository", "operation"},
		),
		WarmedRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_warmed_rows",
				Help:      "Rows loaded by the last cache warm-up",
			},
			[]string{"repository"},
		),
		WarmupTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_warmup_duration_seconds",
				Help:      "Duration of the last cache warm-up",
			},
			[]string{"repository"},
		),
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"operation", "table", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Database operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.CacheHits,
		c.CacheMisses,
		c.Divergences,
		c.WarmedRows,
		c.WarmupTime,
		c.StoreOps,
		c.StoreDuration,
		c.HTTPRequests,
		c.HTTPDuration,
	)

	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) CacheHit(repository string) {
	c.CacheHits.WithLabelValues(repository).Inc()
}

func (c *Collector) CacheMiss(repository string) {
	c.CacheMisses.WithLabelValues(repository).Inc()
}

func (c *Collector) StoreOp(repository, op string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StoreOps.WithLabelValues(op, repository, status).Inc()
	c.StoreDuration.WithLabelValues(op, repository).Observe(took.Seconds())
}

func (c *Collector) Divergence(repository, op string) {
	c.Divergences.WithLabelValues(repository, op).Inc()
}

func (c *Collector) Warmed(repository string, rows int, took time.Duration) {
	c.WarmedRows.WithLabelValues(repository).Set(float64(rows))
	c.WarmupTime.WithLabelValues(repository).Set(took.Seconds())
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, took time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
