// Package metrics provides Prometheus metrics for gwrecon runs.
//
// A run is a short-lived batch job, so nothing is scraped. The collected
// series can be written once at the end of a run in the text exposition
// format (see WriteTextfile) for a node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeFound   = "found"
	OutcomeMiss    = "miss"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Registry query labels.
const (
	QueryParticipants = "participants"
	QueryDemographics = "demographics"
)

// Manager manages all Prometheus metrics for a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Pipeline metrics
	requestsParsed      prometheus.Counter
	resolutions         *prometheus.CounterVec
	resolverLatency     prometheus.Histogram
	registryQueryTime   *prometheus.HistogramVec
	registryRowsFetched prometheus.Counter
	registryRowsMatched prometheus.Counter
	missingParticipants prometheus.Counter
	reportRows          prometheus.Counter
	runDuration         prometheus.Gauge
	runFailures         prometheus.Counter

	// HTTP metrics (sandbox stub server)
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gwrecon",
		subsystem:        "run",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requestsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_parsed_total",
		Help:      "Interpretation request rows parsed from the input file",
	})

	m.resolutions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "resolutions_total",
			Help:      "Participant lookups against CIP-API by outcome",
		},
		[]string{"outcome"},
	)

	m.resolverLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolver_latency_milliseconds",
		Help:      "CIP-API lookup latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.registryQueryTime = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "registry_query_milliseconds",
			Help:      "Registry query latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"query"},
	)

	m.registryRowsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_rows_fetched_total",
		Help:      "Rows read from the unfiltered registry participant query",
	})

	m.registryRowsMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_rows_matched_total",
		Help:      "Registry rows kept after client-side participant filtering",
	})

	m.missingParticipants = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "missing_participants_total",
		Help:      "Resolved participants absent from the registry",
	})

	m.reportRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_rows_total",
		Help:      "Rows written to the reconciliation report",
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duration_seconds",
		Help:      "Wall time of the last run",
	})

	m.runFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "failures_total",
		Help:      "Runs aborted by a fatal error",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordRequestsParsed adds n parsed input rows.
func (m *Manager) RecordRequestsParsed(n int) {
	if !m.enabled {
		return
	}
	m.requestsParsed.Add(float64(n))
}

// RecordResolution records one lookup outcome and its latency. Skipped
// lookups never reach the network and do not observe latency.
func (m *Manager) RecordResolution(outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.resolverLatency.Observe(latencyMs)
	}
}

// RecordRegistryQuery records the latency of one registry query.
func (m *Manager) RecordRegistryQuery(query string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.registryQueryTime.WithLabelValues(query).Observe(latencyMs)
}

// RecordRegistryRows records how many rows were read and how many survived filtering.
func (m *Manager) RecordRegistryRows(fetched, matched int) {
	if !m.enabled {
		return
	}
	m.registryRowsFetched.Add(float64(fetched))
	m.registryRowsMatched.Add(float64(matched))
}

// RecordReport records the size of a finished report.
func (m *Manager) RecordReport(rows, missing int) {
	if !m.enabled {
		return
	}
	m.reportRows.Add(float64(rows))
	m.missingParticipants.Add(float64(missing))
}

// RecordRunDuration sets the duration of the last run.
func (m *Manager) RecordRunDuration(seconds float64) {
	if !m.enabled {
		return
	}
	m.runDuration.Set(seconds)
}

// RecordRunFailure increments the failed run counter.
func (m *Manager) RecordRunFailure() {
	if !m.enabled {
		return
	}
	m.runFailures.Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// WriteTextfile writes every gathered series to path in the Prometheus text
// format. The file is written atomically.
func (m *Manager) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("%w: registry is not gatherable", ErrObserveFailed)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	return nil
}

// Global manager helpers.

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// RecordRequestsParsed adds n parsed input rows.
func RecordRequestsParsed(n int) { globalManager.RecordRequestsParsed(n) }

// RecordResolution records one lookup outcome and its latency.
func RecordResolution(outcome string, latencyMs float64) {
	globalManager.RecordResolution(outcome, latencyMs)
}

// RecordRegistryQuery records the latency of one registry query.
func RecordRegistryQuery(query string, latencyMs float64) {
	globalManager.RecordRegistryQuery(query, latencyMs)
}

// RecordRegistryRows records fetched and matched registry rows.
func RecordRegistryRows(fetched, matched int) { globalManager.RecordRegistryRows(fetched, matched) }

// RecordReport records the size of a finished report.
func RecordReport(rows, missing int) { globalManager.RecordReport(rows, missing) }

// RecordRunDuration sets the duration of the last run.
func RecordRunDuration(seconds float64) { globalManager.RecordRunDuration(seconds) }

// RecordRunFailure increments the failed run counter.
func RecordRunFailure() { globalManager.RecordRunFailure() }

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// WriteTextfile writes the global registry to path.
func WriteTextfile(path string) error { return globalManager.WriteTextfile(path) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
