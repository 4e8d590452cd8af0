package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения SQL запросов
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики (Draft Store)
// =============================================================================

// RedisOperationDuration - время операций Redis
var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // operation: get, set, del, sweep
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (специфичные для Reviewflow)
// =============================================================================

// SubmissionsCreated - созданные заявки на ревью
var SubmissionsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_submissions_created_total",
		Help: "Total number of submissions created",
	},
)

// DraftsStarted - начатые черновики ревью
var DraftsStarted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_drafts_started_total",
		Help: "Total number of review drafts started",
	},
)

// DraftsActive - текущее количество живых черновиков
var DraftsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "review_drafts_active",
		Help: "Current number of live review drafts",
	},
)

// DraftsExpired - черновики, удалённые по таймауту
var DraftsExpired = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_drafts_expired_total",
		Help: "Total number of review drafts evicted by the expiry sweep",
	},
)

// DraftsCancelled - явно отменённые черновики
var DraftsCancelled = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_drafts_cancelled_total",
		Help: "Total number of review drafts cancelled by the reviewer",
	},
)

// ReviewsPublished - опубликованные ревью
var ReviewsPublished = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_published_total",
		Help: "Total number of reviews published",
	},
)

// DraftConflicts - проигранные гонки за черновик
// Labels: operation (create, update)
var DraftConflicts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "review_draft_conflicts_total",
		Help: "Total number of draft create/update conflicts",
	},
	[]string{"operation"},
)
