// Package metrics provides Prometheus metrics for PitchPredict runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages the Prometheus metrics for a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Remote data sources
	remoteRequests        *prometheus.CounterVec
	remoteRequestDuration *prometheus.HistogramVec
	cacheLookups          *prometheus.CounterVec

	// Pipeline
	pitchesFetched    prometheus.Gauge
	pitchesDuplicate  prometheus.Counter
	pitchesSelected   prometheus.Gauge
	battedBallsInPlay prometheus.Gauge
	stageDuration     *prometheus.HistogramVec
	runs              *prometheus.CounterVec
	filesExported     prometheus.Counter
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
		namespace:        "pitchpredict",
		subsystem:        "run",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		constLabels:      make(map[string]string),
		registry:         prometheus.NewRegistry(),
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

	m.remoteRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_requests_total",
		Help:        "Remote data source requests by source and HTTP status",
		ConstLabels: m.constLabels,
	}, []string{"source", "status"})

	m.remoteRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_request_duration_seconds",
		Help:        "Remote data source request duration in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_lookups_total",
		Help:        "Response cache lookups by result (hit, miss, stale)",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.pitchesFetched = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pitches_fetched",
		Help:        "Pitches in the fetched history",
		ConstLabels: m.constLabels,
	})

	m.pitchesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pitches_duplicate_total",
		Help:        "Duplicate pitch rows dropped while merging seasons",
		ConstLabels: m.constLabels,
	})

	m.pitchesSelected = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pitches_selected",
		Help:        "Pitches kept by the similarity selector",
		ConstLabels: m.constLabels,
	})

	m.battedBallsInPlay = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batted_balls_in_play",
		Help:        "Balls in play among the selected pitches",
		ConstLabels: m.constLabels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of each pipeline stage in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Completed runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.filesExported = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_exported_total",
		Help:        "CSV files written",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordRemoteRequest counts a remote request and its duration.
func (m *Manager) RecordRemoteRequest(source string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = fmt.Sprintf("%d", status)
	}
	m.remoteRequests.WithLabelValues(source, label).Inc()
	m.remoteRequestDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordCacheLookup counts a cache lookup by result.
func (m *Manager) RecordCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// UpdatePitchesFetched sets the fetched history size.
func (m *Manager) UpdatePitchesFetched(n int) { m.pitchesFetched.Set(float64(n)) }

// RecordDuplicatePitches adds dropped duplicate rows.
func (m *Manager) RecordDuplicatePitches(n int) { m.pitchesDuplicate.Add(float64(n)) }

// UpdatePitchesSelected sets the selection size.
func (m *Manager) UpdatePitchesSelected(n int) { m.pitchesSelected.Set(float64(n)) }

// UpdateBattedBallsInPlay sets the number of qualifying batted balls.
func (m *Manager) UpdateBattedBallsInPlay(n int) { m.battedBallsInPlay.Set(float64(n)) }

// ObserveStage records how long a pipeline stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun counts a finished run.
func (m *Manager) RecordRun(outcome string) { m.runs.WithLabelValues(outcome).Inc() }

// RecordFilesExported adds written files.
func (m *Manager) RecordFilesExported(n int) { m.filesExported.Add(float64(n)) }

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }
