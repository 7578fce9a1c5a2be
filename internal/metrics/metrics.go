// Package metrics provides Prometheus metrics for migration runs
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wpx"

// Metrics contains Prometheus metrics for migration batches, items, downloads and the HTTP surface
type Metrics struct {
	registry *prometheus.Registry

	// Processor metrics
	itemsTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchesTotal    *prometheus.CounterVec
	selfHealedTotal *prometheus.CounterVec

	// Media metrics
	downloadsTotal   *prometheus.CounterVec
	downloadDuration prometheus.Histogram
	downloadBytes    prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates and registers migration metrics on registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefault creates metrics on a fresh registry that also carries the Go and process collectors.
func NewDefault() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(registry)
}

func (m *Metrics) initMetrics() {
	m.itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Legacy items processed, by category and outcome",
		},
		[]string{"category", "status"}, // status: success, failed, skipped
	)

	m.batchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time taken to process one batch",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"category"},
	)

	m.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed, by category",
		},
		[]string{"category"},
	)

	m.selfHealedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_self_healed_total",
			Help:      "Stale ledger success entries removed because their target no longer exists",
		},
		[]string{"migration_type"},
	)

	m.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_downloads_total",
			Help:      "Media downloads, by outcome",
		},
		[]string{"outcome"}, // outcome: ok, error
	)

	m.downloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "media_download_duration_seconds",
			Help:      "Time taken to download and store one media file",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.downloadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_download_bytes_total",
			Help:      "Bytes written by successful media downloads",
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

// Describe implements [prometheus.Collector]
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.itemsTotal.Describe(ch)
	m.batchDuration.Describe(ch)
	m.batchesTotal.Describe(ch)
	m.selfHealedTotal.Describe(ch)
	m.downloadsTotal.Describe(ch)
	m.downloadDuration.Describe(ch)
	m.downloadBytes.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements [prometheus.Collector]
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.itemsTotal.Collect(ch)
	m.batchDuration.Collect(ch)
	m.batchesTotal.Collect(ch)
	m.selfHealedTotal.Collect(ch)
	m.downloadsTotal.Collect(ch)
	m.downloadDuration.Collect(ch)
	m.downloadBytes.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}

// RecordItem counts one processed legacy item.
func (m *Metrics) RecordItem(category, status string) {
	m.itemsTotal.WithLabelValues(category, status).Inc()
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(category string, elapsed time.Duration) {
	m.batchesTotal.WithLabelValues(category).Inc()
	m.batchDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// RecordSelfHeal counts a removed stale ledger entry.
func (m *Metrics) RecordSelfHeal(migrationType string) {
	m.selfHealedTotal.WithLabelValues(migrationType).Inc()
}

// ObserveDownload records a media download.
func (m *Metrics) ObserveDownload(outcome string, size int64, elapsed time.Duration) {
	m.downloadsTotal.WithLabelValues(outcome).Inc()
	m.downloadDuration.Observe(elapsed.Seconds())
	if size > 0 {
		m.downloadBytes.Add(float64(size))
	}
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
