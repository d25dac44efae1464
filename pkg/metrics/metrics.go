package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Default manager configuration.
const (
	defaultNamespace = "crease"
	defaultSubsystem = "engine"
)

// defaultBuckets covers sub-millisecond scoring up to multi-second settlements.
var defaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Manager owns the metric vectors and the registry they live in.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	transitions         *prometheus.CounterVec
	transitionConflicts prometheus.Counter
	telemetryUpdates    prometheus.Counter
	telemetryAnomalies  *prometheus.CounterVec

	settlementRuns     *prometheus.CounterVec
	settlementDuration prometheus.Histogram
	answerKeysResolved prometheus.Counter
	answerKeyFailures  prometheus.Counter
	submissionsScored  prometheus.Counter
	scoringFailures    prometheus.Counter

	leaderboardQueries prometheus.Counter

	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDropped  prometheus.Counter
	workerCount   prometheus.Gauge
	workerLatency prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	memoryUsage prometheus.Gauge
	goroutines  prometheus.Gauge
}

// NewManager creates a Manager and registers all vectors on its registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		subsystem: defaultSubsystem,
		buckets:   defaultBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
	}

	m.transitions = prometheus.NewCounterVec(prometheus.CounterOpts(opts(
		"contest_transitions_total", "Contest status transitions by from/to status.")), []string{"from", "to"})
	m.transitionConflicts = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"contest_transition_conflicts_total", "Optimistic status writes discarded after losing a race.")))
	m.telemetryUpdates = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"telemetry_updates_total", "Match telemetry snapshots applied.")))
	m.telemetryAnomalies = prometheus.NewCounterVec(prometheus.CounterOpts(opts(
		"telemetry_anomalies_total", "Malformed telemetry fields handled via defaults.")), []string{"kind"})

	m.settlementRuns = prometheus.NewCounterVec(prometheus.CounterOpts(opts(
		"settlement_runs_total", "Settlement attempts by outcome.")), []string{"outcome"})
	m.settlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "settlement_duration_seconds", Help: "Wall time of settlement runs.",
		Buckets: m.buckets,
	})
	m.answerKeysResolved = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"answer_keys_resolved_total", "Question answer keys resolved during settlement.")))
	m.answerKeyFailures = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"answer_key_failures_total", "Questions whose answer key could not be resolved.")))
	m.submissionsScored = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"submissions_scored_total", "Submissions scored during settlement.")))
	m.scoringFailures = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"scoring_failures_total", "Submissions skipped because scoring failed.")))

	m.leaderboardQueries = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"leaderboard_queries_total", "Leaderboard and rank read queries served.")))

	m.queueSize = prometheus.NewGauge(prometheus.GaugeOpts(opts(
		"telemetry_queue_size", "Current depth of the telemetry queue.")))
	m.queueCapacity = prometheus.NewGauge(prometheus.GaugeOpts(opts(
		"telemetry_queue_capacity", "Configured capacity of the telemetry queue.")))
	m.queueDropped = prometheus.NewCounter(prometheus.CounterOpts(opts(
		"telemetry_queue_dropped_total", "Telemetry updates rejected by a full or closed queue.")))
	m.workerCount = prometheus.NewGauge(prometheus.GaugeOpts(opts(
		"worker_count", "Number of telemetry workers.")))
	m.workerLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_apply_duration_seconds", Help: "Time to apply one snapshot to one match.",
		Buckets: m.buckets,
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts(opts(
		"http_requests_total", "HTTP requests by endpoint, method and status.")), []string{"endpoint", "method", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_seconds", Help: "HTTP request latency.",
		Buckets: m.buckets,
	}, []string{"endpoint", "method"})

	m.memoryUsage = prometheus.NewGauge(prometheus.GaugeOpts(opts(
		"system_memory_bytes", "Allocated heap bytes.")))
	m.goroutines = prometheus.NewGauge(prometheus.GaugeOpts(opts(
		"system_goroutines", "Current goroutine count.")))

	m.registry.MustRegister(
		m.transitions, m.transitionConflicts, m.telemetryUpdates, m.telemetryAnomalies,
		m.settlementRuns, m.settlementDuration, m.answerKeysResolved, m.answerKeyFailures,
		m.submissionsScored, m.scoringFailures, m.leaderboardQueries,
		m.queueSize, m.queueCapacity, m.queueDropped, m.workerCount, m.workerLatency,
		m.httpRequests, m.httpDuration, m.memoryUsage, m.goroutines,
	)
}

// Registry exposes the manager's registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

var (
	defaultManager *Manager
	managerOnce    sync.Once
)

func manager() *Manager {
	managerOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// GetRegistry returns the default manager's registry.
func GetRegistry() *prometheus.Registry { return manager().registry }

// Package-level helpers against the default manager.

func RecordTransition(from, to string) { manager().transitions.WithLabelValues(from, to).Inc() }
func RecordTransitionConflict()        { manager().transitionConflicts.Inc() }
func RecordTelemetryUpdate()           { manager().telemetryUpdates.Inc() }
func RecordTelemetryAnomaly(kind string) {
	manager().telemetryAnomalies.WithLabelValues(kind).Inc()
}

func RecordSettlementRun(outcome string) { manager().settlementRuns.WithLabelValues(outcome).Inc() }
func RecordSettlementDuration(seconds float64) {
	manager().settlementDuration.Observe(seconds)
}
func RecordAnswerKeyResolved() { manager().answerKeysResolved.Inc() }
func RecordAnswerKeyFailure()  { manager().answerKeyFailures.Inc() }
func RecordSubmissionScored()  { manager().submissionsScored.Inc() }
func RecordScoringFailure()    { manager().scoringFailures.Inc() }

func RecordLeaderboardQuery() { manager().leaderboardQueries.Inc() }

func UpdateQueueSize(size int)         { manager().queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { manager().queueCapacity.Set(float64(capacity)) }
func RecordQueueDrop()                 { manager().queueDropped.Inc() }
func UpdateWorkerCount(count int)      { manager().workerCount.Set(float64(count)) }
func RecordWorkerApplyDuration(seconds float64) {
	manager().workerLatency.Observe(seconds)
}

func RecordHTTPRequest(endpoint, method, status string) {
	manager().httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	manager().httpDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

func UpdateSystemMemoryUsage(bytes uint64) { manager().memoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { manager().goroutines.Set(float64(count)) }
