package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantpilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Document store operation latency (seconds)
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantpilot_store_op_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "collection"},
	)

	// Oracle (LLM) call latency (milliseconds)
	OracleCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantpilot_oracle_call_latency_ms",
			Help:    "LLM oracle call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"mode", "status"},
	)

	// Records created by award extraction
	ExtractedRecordCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantpilot_extracted_records_total",
			Help: "Total number of records created from award documents",
		},
		[]string{"kind"}, // kind: reporting, compliance
	)

	// Deadline reminders published by the worker
	ReminderPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantpilot_deadline_reminders_total",
			Help: "Total number of deadline reminder events published",
		},
		[]string{"kind", "status"}, // status: upcoming, overdue
	)

	// Slow queries observed by the pgx tracer
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantpilot_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	// Dashboard cache lookups
	DashboardCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantpilot_dashboard_cache_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// RecordHTTPRequestDuration records the latency of one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStoreOp records the latency of one document store operation.
func RecordStoreOp(operation, collection string, duration time.Duration) {
	StoreOpDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

// RecordOracleCall records the latency of one oracle call.
func RecordOracleCall(mode, status string, duration time.Duration) {
	OracleCallLatency.WithLabelValues(mode, status).Observe(float64(duration.Milliseconds()))
}

// AddExtractedRecords counts records created by an extraction.
func AddExtractedRecords(kind string, n int) {
	ExtractedRecordCount.WithLabelValues(kind).Add(float64(n))
}

// IncrementReminderPublished counts one published reminder.
func IncrementReminderPublished(kind, status string) {
	ReminderPublishedCount.WithLabelValues(kind, status).Inc()
}

// IncrementSlowQuery counts one slow query.
func IncrementSlowQuery(sql string) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

// IncrementDashboardCache counts one dashboard cache lookup.
func IncrementDashboardCache(result string) {
	DashboardCacheCount.WithLabelValues(result).Inc()
}
