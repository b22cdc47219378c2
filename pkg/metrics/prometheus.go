// Package metrics provides Prometheus metrics for the rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram buckets in milliseconds.
var defaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// Manager owns every Prometheus metric the service records.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Rating engine metrics.
	matchesApplied  prometheus.Counter
	rebuildDuration prometheus.Histogram
	predictions     prometheus.Counter
	teamsIndexed    prometheus.Gauge

	// Snapshot metrics.
	snapshotSaves prometheus.Counter
	snapshotLoads prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics by component.
	componentErrors *prometheus.CounterVec
}

// Global metrics manager and its dedicated registry.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trueskill",
		histogramBuckets: defaultBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help}
	}

	m.matchesApplied = prometheus.NewCounter(factory("matches_applied_total", "Match outcomes fed through the skill updater."))
	m.predictions = prometheus.NewCounter(factory("predictions_total", "Win-probability forecasts served."))
	m.snapshotSaves = prometheus.NewCounter(factory("snapshot_saves_total", "Snapshot files written."))
	m.snapshotLoads = prometheus.NewCounter(factory("snapshot_loads_total", "Snapshot files loaded."))

	m.rebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "rebuild_duration_ms",
		Help:      "Wall time of full scope rebuilds in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.teamsIndexed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "teams_indexed",
		Help:      "Teams currently tracked in the rating store.",
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.componentErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "component_errors_total",
		Help:      "Errors by component.",
	}, []string{"component"})

	m.registry.MustRegister(
		m.matchesApplied, m.predictions, m.snapshotSaves, m.snapshotLoads,
		m.rebuildDuration, m.teamsIndexed,
		m.httpRequests, m.httpRequestDuration, m.componentErrors,
	)
}

// GetRegistry returns the registry backing the global manager, for the
// /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level recording helpers delegate to the global manager.

// RecordMatchesApplied counts outcomes fed through the skill updater.
func RecordMatchesApplied(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.matchesApplied.Add(float64(n))
	}
}

// RecordRebuildDuration observes one full rebuild's wall time.
func RecordRebuildDuration(ms float64) {
	if globalManager.enabled {
		globalManager.rebuildDuration.Observe(ms)
	}
}

// RecordPrediction counts one served forecast.
func RecordPrediction() {
	if globalManager.enabled {
		globalManager.predictions.Inc()
	}
}

// UpdateTeamsIndexed sets the tracked-team gauge.
func UpdateTeamsIndexed(n int) {
	if globalManager.enabled {
		globalManager.teamsIndexed.Set(float64(n))
	}
}

// RecordSnapshotSave counts one snapshot write.
func RecordSnapshotSave() {
	if globalManager.enabled {
		globalManager.snapshotSaves.Inc()
	}
}

// RecordSnapshotLoad counts one snapshot load.
func RecordSnapshotLoad() {
	if globalManager.enabled {
		globalManager.snapshotLoads.Inc()
	}
}

// RecordHTTPRequest counts one handled request.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration observes one request's latency.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
	}
}

// RecordComponentError counts one error attributed to a component.
func RecordComponentError(component string) {
	if globalManager.enabled {
		globalManager.componentErrors.WithLabelValues(component).Inc()
	}
}
