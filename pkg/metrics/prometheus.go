// Package metrics provides Prometheus metrics for the scobo score board.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the scobo service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	eventsAccepted   prometheus.Counter
	eventsRejected   *prometheus.CounterVec
	commandsReceived *prometheus.CounterVec
	updatesDuplicate prometheus.Counter

	// Persistence
	eventsPersisted prometheus.Counter
	eventsLost      prometheus.Counter
	persistErrors   *prometheus.CounterVec
	appendLatency   prometheus.Histogram
	writerUp        prometheus.Gauge
	logSizeBytes    prometheus.Gauge

	// Replay
	replayLatency  *prometheus.HistogramVec
	recordsScanned *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec

	// Queue
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueEnqueueRate    prometheus.Counter
	queueDequeueRate    prometheus.Counter
	queueEnqueueErrors  prometheus.Counter
	queueEnqueueLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "scobo",
		subsystem:        "eventlog",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.eventsAccepted = m.counter("events_accepted_total", "Scoring events accepted into the ingest queue")
	m.eventsRejected = m.counterVec("events_rejected_total", "Scoring events the ingest queue refused", "reason")
	m.commandsReceived = m.counterVec("commands_received_total", "Chat commands received by the router", "command")
	m.updatesDuplicate = m.counter("updates_duplicate_total", "Transport updates dropped as redeliveries")

	m.eventsPersisted = m.counter("events_persisted_total", "Events durably appended to the log")
	m.eventsLost = m.counter("events_lost_total", "Queued events lost because the writer stopped before draining them")
	m.persistErrors = m.counterVec("persist_errors_total", "Failed appends by failure kind", "kind")
	m.appendLatency = m.histogram("append_latency_milliseconds", "Latency of a single log append in milliseconds", m.histogramBuckets)
	m.writerUp = m.gauge("writer_up", "1 while the log writer is draining the queue, 0 otherwise")
	m.logSizeBytes = m.gauge("log_size_bytes", "Size of the event log file in bytes")

	m.replayLatency = m.histogramVec("replay_latency_milliseconds", "Latency of a full log replay in milliseconds", "operation")
	m.recordsScanned = m.counterVec("records_scanned_total", "Log lines read by replay operations", "operation")
	m.recordsSkipped = m.counterVec("records_skipped_total", "Malformed log lines skipped by replay operations", "operation")

	m.queueSize = m.gauge("queue_size", "Current size of the ingest queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Soft capacity of the ingest queue, 0 when unbounded")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueEnqueueLatency = m.histogram("queue_enqueue_latency_milliseconds", "Latency of a single enqueue in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Configure applies options to the global manager. Options that shape
// metric names (namespace, subsystem, prefix, labels, buckets, registry)
// only take effect in NewManager and are ignored here.
func Configure(opts ...Option) {
	m := &Manager{}
	m.enabled.Store(globalManager.enabled.Load())
	m.refreshInterval.Store(globalManager.refreshInterval.Load())
	for _, opt := range opts {
		opt(m)
	}
	globalManager.enabled.Store(m.enabled.Load())
	globalManager.refreshInterval.Store(m.refreshInterval.Load())
}

// Enabled reports whether the global recorders are collecting.
func Enabled() bool { return active() }

// RefreshInterval is how often periodically computed gauges should be
// refreshed.
func RefreshInterval() time.Duration {
	return time.Duration(globalManager.refreshInterval.Load())
}

func active() bool { return globalManager.enabled.Load() }

// Ingestion.

// RecordEventAccepted increments the accepted events counter.
func RecordEventAccepted() {
	if !active() {
		return
	}
	globalManager.eventsAccepted.Inc()
}

// RecordEventRejected counts an event the queue refused, by reason.
func RecordEventRejected(reason string) {
	if !active() {
		return
	}
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordCommand counts a chat command by kind.
func RecordCommand(command string) {
	if !active() {
		return
	}
	globalManager.commandsReceived.WithLabelValues(command).Inc()
}

// RecordUpdateDuplicate counts a redelivered transport update.
func RecordUpdateDuplicate() {
	if !active() {
		return
	}
	globalManager.updatesDuplicate.Inc()
}

// Persistence.

// RecordEventPersisted increments the persisted events counter.
func RecordEventPersisted() {
	if !active() {
		return
	}
	globalManager.eventsPersisted.Inc()
}

// RecordEventsLost adds n events lost at shutdown or after a writer failure.
func RecordEventsLost(n int) {
	if !active() {
		return
	}
	if n > 0 {
		globalManager.eventsLost.Add(float64(n))
	}
}

// RecordPersistError counts a failed append by kind (encode, transient, fatal).
func RecordPersistError(kind string) {
	if !active() {
		return
	}
	globalManager.persistErrors.WithLabelValues(kind).Inc()
}

// RecordAppendLatency records append latency in milliseconds.
func RecordAppendLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.appendLatency.Observe(latencyMs)
}

// UpdateWriterUp sets the writer liveness gauge.
func UpdateWriterUp(up bool) {
	if !active() {
		return
	}
	if up {
		globalManager.writerUp.Set(1)
		return
	}
	globalManager.writerUp.Set(0)
}

// UpdateLogSize sets the event log size in bytes.
func UpdateLogSize(bytes int64) {
	if !active() {
		return
	}
	globalManager.logSizeBytes.Set(float64(bytes))
}

// Replay.

// RecordReplayLatency records the duration of a replay operation.
func RecordReplayLatency(operation string, latencyMs float64) {
	if !active() {
		return
	}
	globalManager.replayLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordRecordsScanned adds n scanned lines for an operation.
func RecordRecordsScanned(operation string, n int) {
	if !active() {
		return
	}
	if n > 0 {
		globalManager.recordsScanned.WithLabelValues(operation).Add(float64(n))
	}
}

// RecordRecordSkipped counts a malformed line skipped by an operation.
func RecordRecordSkipped(operation string) {
	if !active() {
		return
	}
	globalManager.recordsSkipped.WithLabelValues(operation).Inc()
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !active() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !active() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !active() {
		return
	}
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !active() {
		return
	}
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !active() {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueEnqueueLatency records how long one enqueue took.
func RecordQueueEnqueueLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.queueEnqueueLatency.Observe(latencyMs)
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !active() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !active() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !active() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !active() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !active() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !active() {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !active() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !active() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !active() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
