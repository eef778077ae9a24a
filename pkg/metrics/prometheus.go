// Package metrics provides Prometheus metrics for the workpulse service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the workpulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingest Metrics - Data quality of roster and report sources
	rosterRows        prometheus.Counter
	reportRows        prometheus.Counter
	skippedRosterRows prometheus.Counter
	unresolvedRecords prometheus.Counter
	degradedFields    prometheus.Counter
	unparseableDates  prometheus.Counter
	unresolvedRatio   prometheus.Gauge

	// Snapshot Metrics - Reconciliation refresh cycle
	snapshotCount           prometheus.Counter
	snapshotLastUnix        prometheus.Gauge
	snapshotRebuildDuration prometheus.Histogram
	snapshotRecords         prometheus.Gauge
	snapshotEmployees       prometheus.Gauge

	// Billing Metrics - SOW compliance per project
	sowViolations     *prometheus.CounterVec
	billingEfficiency *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec
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
		namespace:        "workpulse",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Ingest Metrics - Data quality of roster and report sources
	m.rosterRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_rows_total",
		Help:      "Total number of roster rows ingested",
	})

	m.reportRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_rows_total",
		Help:      "Total number of work report rows ingested",
	})

	m.skippedRosterRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skipped_roster_rows_total",
		Help:      "Total number of roster rows skipped during identity extraction",
	})

	m.unresolvedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unresolved_records_total",
		Help:      "Total number of report rows that could not be matched to a roster identity",
	})

	m.degradedFields = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "degraded_fields_total",
		Help:      "Total number of fields that fell back to a degraded value during normalization",
	})

	m.unparseableDates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unparseable_dates_total",
		Help:      "Total number of report rows excluded because the date could not be parsed",
	})

	m.unresolvedRatio = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unresolved_ratio",
		Help:      "Fraction of records in the current snapshot without a resolved identity",
	})

	// Snapshot Metrics - Reconciliation refresh cycle
	m.snapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_count_total",
		Help:      "Total number of reconciliation snapshots installed",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the most recent snapshot swap",
	})

	m.snapshotRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rebuild_duration_milliseconds",
		Help:      "Histogram of snapshot rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_records",
		Help:      "Number of work records in the current snapshot",
	})

	m.snapshotEmployees = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_employees",
		Help:      "Number of roster identities in the current snapshot",
	})

	// Billing Metrics - SOW compliance per project
	m.sowViolations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sow_violations_total",
			Help:      "Total number of SOW cap violations detected by project",
		},
		[]string{"project"},
	)

	m.billingEfficiency = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "billing_efficiency_percent",
			Help:      "Billable-to-actual hours ratio as a percentage by project",
		},
		[]string{"project"},
	)

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint, method, and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)
}

// Ingest Metrics Functions.

// RecordRosterRows adds to the ingested roster rows counter.
func RecordRosterRows(count int) {
	globalManager.rosterRows.Add(float64(count))
}

// RecordReportRows adds to the ingested report rows counter.
func RecordReportRows(count int) {
	globalManager.reportRows.Add(float64(count))
}

// RecordSkippedRosterRows adds to the skipped roster rows counter.
func RecordSkippedRosterRows(count int) {
	globalManager.skippedRosterRows.Add(float64(count))
}

// RecordUnresolvedRecords adds to the unresolved records counter.
func RecordUnresolvedRecords(count int) {
	globalManager.unresolvedRecords.Add(float64(count))
}

// RecordDegradedFields adds to the degraded fields counter.
func RecordDegradedFields(count int) {
	globalManager.degradedFields.Add(float64(count))
}

// RecordUnparseableDates adds to the unparseable dates counter.
func RecordUnparseableDates(count int) {
	globalManager.unparseableDates.Add(float64(count))
}

// UpdateUnresolvedRatio sets the unresolved ratio of the current snapshot.
func UpdateUnresolvedRatio(ratio float64) {
	globalManager.unresolvedRatio.Set(ratio)
}

// Snapshot Metrics Functions.

// IncrementSnapshotCount increments the installed snapshots counter.
func IncrementSnapshotCount() {
	globalManager.snapshotCount.Inc()
}

// UpdateSnapshotLastUnix sets the timestamp of the most recent snapshot swap.
func UpdateSnapshotLastUnix(unix float64) {
	globalManager.snapshotLastUnix.Set(unix)
}

// RecordSnapshotRebuildDuration records a snapshot rebuild duration in milliseconds.
func RecordSnapshotRebuildDuration(durationMs float64) {
	globalManager.snapshotRebuildDuration.Observe(durationMs)
}

// UpdateSnapshotRecords sets the record count of the current snapshot.
func UpdateSnapshotRecords(count int) {
	globalManager.snapshotRecords.Set(float64(count))
}

// UpdateSnapshotEmployees sets the identity count of the current snapshot.
func UpdateSnapshotEmployees(count int) {
	globalManager.snapshotEmployees.Set(float64(count))
}

// Billing Metrics Functions.

// RecordSOWViolations adds to the SOW violations counter for a project.
func RecordSOWViolations(project string, count int) {
	globalManager.sowViolations.WithLabelValues(project).Add(float64(count))
}

// UpdateBillingEfficiency sets the billing efficiency percentage for a project.
func UpdateBillingEfficiency(project string, percent float64) {
	globalManager.billingEfficiency.WithLabelValues(project).Set(percent)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
