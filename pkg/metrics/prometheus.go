package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Breaker states as exported on the circuit breaker gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	profilesComputed      *prometheus.CounterVec
	recommendationsServed prometheus.Counter
	profileLatency        prometheus.Histogram
	matchLatency          prometheus.Histogram

	// Catalog
	catalogSongs   prometheus.Gauge
	catalogSkipped prometheus.Gauge
	catalogLoads   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Webhooks
	webhookSubmissions *prometheus.CounterVec
	webhookDeliveries  *prometheus.CounterVec
	webhookLatency     prometheus.Histogram
	breakerState       prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "replaytune",
		subsystem:        "recommender",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.profilesComputed = auto.NewCounterVec(
		m.counter("profiles_computed_total", "Profile computations by outcome (ok or error kind)"),
		[]string{"outcome"},
	)
	m.recommendationsServed = auto.NewCounter(m.counter("recommendations_served_total", "Total number of ranked songs returned"))
	m.profileLatency = auto.NewHistogram(m.histogram("profile_latency_milliseconds", "Extraction through rule engine latency in milliseconds"))
	m.matchLatency = auto.NewHistogram(m.histogram("match_latency_milliseconds", "Catalog ranking latency in milliseconds"))

	m.catalogSongs = auto.NewGauge(m.gauge("catalog_songs", "Number of valid songs in the loaded catalog"))
	m.catalogSkipped = auto.NewGauge(m.gauge("catalog_skipped_entries", "Number of catalog entries skipped on the last load"))
	m.catalogLoads = auto.NewCounterVec(m.counter("catalog_loads_total", "Catalog load attempts by result"), []string{"result"})

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.webhookSubmissions = auto.NewCounterVec(
		m.counter("webhook_submissions_total", "Webhook submissions by result (queued, duplicate, rejected)"),
		[]string{"result"},
	)
	m.webhookDeliveries = auto.NewCounterVec(
		m.counter("webhook_deliveries_total", "Webhook delivery attempts by result"),
		[]string{"result"},
	)
	m.webhookLatency = auto.NewHistogram(m.histogram("webhook_delivery_latency_milliseconds", "Callback POST latency in milliseconds"))
	m.breakerState = auto.NewGauge(m.gauge("webhook_circuit_breaker_state", "Webhook circuit breaker state (0 closed, 1 half-open, 2 open)"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current size of the webhook queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counter("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counter("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of enqueue errors"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured number of delivery workers"))
	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Number of workers currently delivering"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Per-job processing latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counter("worker_errors_total", "Total number of jobs that exhausted their attempts"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
}

// RecordProfile counts a profile computation; outcome is "ok" or an error kind.
func RecordProfile(outcome string, latencyMs float64) {
	globalManager.profilesComputed.WithLabelValues(outcome).Inc()
	globalManager.profileLatency.Observe(latencyMs)
}

// RecordRecommendations adds n served songs and the ranking latency.
func RecordRecommendations(n int, latencyMs float64) {
	globalManager.recommendationsServed.Add(float64(n))
	globalManager.matchLatency.Observe(latencyMs)
}

// RecordCatalogLoad records a catalog load; result is "ok" or "error".
func RecordCatalogLoad(result string, songs, skipped int) {
	globalManager.catalogLoads.WithLabelValues(result).Inc()
	if result == "ok" {
		globalManager.catalogSongs.Set(float64(songs))
		globalManager.catalogSkipped.Set(float64(skipped))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordWebhookSubmission counts a webhook submission by result.
func RecordWebhookSubmission(result string) {
	globalManager.webhookSubmissions.WithLabelValues(result).Inc()
}

// RecordWebhookDelivery counts one delivery attempt by result.
func RecordWebhookDelivery(result string, latencyMs float64) {
	globalManager.webhookDeliveries.WithLabelValues(result).Inc()
	globalManager.webhookLatency.Observe(latencyMs)
}

// UpdateBreakerState sets the breaker gauge; see Breaker* constants.
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMetrics samples heap usage and goroutine count.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus text format.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, ErrNotInitialized.Error(), http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
