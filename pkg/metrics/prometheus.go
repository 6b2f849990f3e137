// Package metrics provides Prometheus metrics for the Vibex session engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics.
	joins           *prometheus.CounterVec
	leaves          *prometheus.CounterVec
	vouchesApplied  prometheus.Counter
	vouchesRejected *prometheus.CounterVec
	ratingUpdates   prometheus.Counter
	sessionsClosed  *prometheus.CounterVec

	// Optimistic concurrency metrics.
	commitConflicts *prometheus.CounterVec
	commitRetries   prometheus.Counter

	// Operational health metrics.
	totalSessions     prometheus.Gauge
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	workerCount       prometheus.Gauge
	notifyEnqueued    prometheus.Counter
	notifyDropped     prometheus.Counter
	notifyDispatched  prometheus.Counter
	notifyFailures    prometheus.Counter
	dispatchLatencyMs prometheus.Histogram

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vibex",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
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

	m.joins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "joins_total",
		Help:      "Total join attempts by outcome",
	}, []string{"outcome"})

	m.leaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaves_total",
		Help:      "Total leave attempts by outcome",
	}, []string{"outcome"})

	m.vouchesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vouches_applied_total",
		Help:      "Total vouches applied to a rating",
	})

	m.vouchesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vouches_rejected_total",
		Help:      "Total vouch attempts rejected, by reason",
	}, []string{"reason"})

	m.ratingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_updates_total",
		Help:      "Total committed rating updates",
	})

	m.sessionsClosed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_closed_total",
		Help:      "Total sessions closed, by cause (creator, auto_close)",
	}, []string{"cause"})

	m.commitConflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_conflicts_total",
		Help:      "Conditional commits rejected by version mismatch, per unit",
	}, []string{"unit"})

	m.commitRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_retries_total",
		Help:      "Coordinator retries after a lost optimistic-lock race",
	})

	m.totalSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_tracked",
		Help:      "Number of sessions currently tracked by the store",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_queue_size",
		Help:      "Current depth of the notification queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_queue_capacity",
		Help:      "Configured capacity of the notification queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_queue_utilization",
		Help:      "Queue depth as a fraction of capacity",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_workers",
		Help:      "Number of notification dispatch workers",
	})

	m.notifyEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_enqueued_total",
		Help:      "Notification triggers accepted by the queue",
	})

	m.notifyDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_dropped_total",
		Help:      "Notification triggers dropped on backpressure or shutdown",
	})

	m.notifyDispatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_dispatched_total",
		Help:      "Notifications handed to the external collaborator",
	})

	m.notifyFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_failures_total",
		Help:      "Dispatch failures (logged, never retried inline)",
	})

	m.dispatchLatencyMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_dispatch_latency_milliseconds",
		Help:      "Histogram of notification dispatch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the registry metrics are served from.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

// RecordJoin counts a join attempt with its outcome label.
func RecordJoin(outcome string) { globalManager.joins.WithLabelValues(outcome).Inc() }

// RecordLeave counts a leave attempt with its outcome label.
func RecordLeave(outcome string) { globalManager.leaves.WithLabelValues(outcome).Inc() }

// RecordVouchApplied counts a successfully applied vouch.
func RecordVouchApplied() { globalManager.vouchesApplied.Inc() }

// RecordVouchRejected counts a rejected vouch attempt by reason.
func RecordVouchRejected(reason string) { globalManager.vouchesRejected.WithLabelValues(reason).Inc() }

// RecordRatingUpdate counts a committed rating update.
func RecordRatingUpdate() { globalManager.ratingUpdates.Inc() }

// RecordSessionClosed counts a closed session by cause.
func RecordSessionClosed(cause string) { globalManager.sessionsClosed.WithLabelValues(cause).Inc() }

// RecordCommitConflict counts a version-mismatch rejection per unit.
func RecordCommitConflict(unit string) { globalManager.commitConflicts.WithLabelValues(unit).Inc() }

// RecordCommitRetry counts a coordinator retry.
func RecordCommitRetry() { globalManager.commitRetries.Inc() }

// UpdateTotalSessions sets the tracked-session gauge.
func UpdateTotalSessions(n int) { globalManager.totalSessions.Set(float64(n)) }

// UpdateQueueSize sets the notification queue depth gauge.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the notification queue capacity gauge.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets queue depth as a fraction of capacity.
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }

// UpdateWorkerCount sets the dispatch worker gauge.
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }

// RecordNotificationEnqueued counts an accepted notification trigger.
func RecordNotificationEnqueued() { globalManager.notifyEnqueued.Inc() }

// RecordNotificationDropped counts a dropped notification trigger.
func RecordNotificationDropped() { globalManager.notifyDropped.Inc() }

// RecordNotificationDispatched counts a dispatched notification.
func RecordNotificationDispatched() { globalManager.notifyDispatched.Inc() }

// RecordNotificationFailure counts a dispatch failure.
func RecordNotificationFailure() { globalManager.notifyFailures.Inc() }

// RecordDispatchLatency observes dispatch latency in milliseconds.
func RecordDispatchLatency(ms float64) { globalManager.dispatchLatencyMs.Observe(ms) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
