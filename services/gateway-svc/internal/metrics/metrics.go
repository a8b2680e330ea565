package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	instance *GatewayMetrics
)

// GatewayMetrics метрики gateway
type GatewayMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge

	// Вызовы solver-svc
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec

	// Здоровье backend сервисов
	BackendHealth *prometheus.GaugeVec

	// Ошибки по кодам
	ErrorsByType *prometheus.CounterVec

	// Размер трасс в ответах
	TraceSteps *prometheus.HistogramVec

	// Решения лимитера по процедурам
	RateLimitDecisions *prometheus.CounterVec
}

// Init инициализирует метрики в глобальном реестре
func Init() *GatewayMetrics {
	once.Do(func() {
		instance = New(prometheus.DefaultRegisterer)
	})
	return instance
}

// New создаёт метрики в указанном реестре
func New(reg prometheus.Registerer) *GatewayMetrics {
	f := promauto.With(reg)

	return &GatewayMetrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Name:      "requests_total",
				Help:      "Total gateway requests",
			},
			[]string{"procedure", "status"},
		),

		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Gateway request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"procedure"},
		),

		ActiveRequests: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "gateway",
				Name:      "active_requests",
				Help:      "Currently active requests",
			},
		),

		BackendRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Name:      "backend_requests_total",
				Help:      "Total backend service requests",
			},
			[]string{"service", "method", "status"},
		),

		BackendDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gateway",
				Name:      "backend_duration_seconds",
				Help:      "Backend service request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method"},
		),

		BackendHealth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gateway",
				Name:      "backend_health",
				Help:      "Backend service health (1=healthy, 0=unhealthy)",
			},
			[]string{"service"},
		),

		ErrorsByType: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Name:      "errors_by_type_total",
				Help:      "Total errors by application error code",
			},
			[]string{"type", "service"},
		),

		TraceSteps: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gateway",
				Name:      "trace_steps",
				Help:      "Snapshots per trace returned to clients",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
			},
			[]string{"method"},
		),

		RateLimitDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Name:      "rate_limit_decisions_total",
				Help:      "Rate limiter decisions by procedure",
			},
			[]string{"procedure", "decision"},
		),
	}
}

// Get возвращает инстанс метрик
func Get() *GatewayMetrics {
	return Init()
}

// RecordRequest записывает метрики запроса
func (m *GatewayMetrics) RecordRequest(procedure, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(procedure, status).Inc()
	m.RequestDuration.WithLabelValues(procedure).Observe(duration.Seconds())
}

// RecordBackendRequest записывает метрику backend запроса
func (m *GatewayMetrics) RecordBackendRequest(service, method, status string, duration time.Duration) {
	m.BackendRequests.WithLabelValues(service, method, status).Inc()
	m.BackendDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// IncActiveRequests увеличивает счётчик активных запросов
func (m *GatewayMetrics) IncActiveRequests() {
	m.ActiveRequests.Inc()
}

// DecActiveRequests уменьшает счётчик активных запросов
func (m *GatewayMetrics) DecActiveRequests() {
	m.ActiveRequests.Dec()
}

// RecordBackendHealth записывает здоровье backend
func (m *GatewayMetrics) RecordBackendHealth(service string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	m.BackendHealth.WithLabelValues(service).Set(val)
}

// RecordError записывает ошибку
func (m *GatewayMetrics) RecordError(errorType, service string) {
	m.ErrorsByType.WithLabelValues(errorType, service).Inc()
}

// RecordTrace записывает длину трассы в ответе
func (m *GatewayMetrics) RecordTrace(method string, steps int) {
	m.TraceSteps.WithLabelValues(method).Observe(float64(steps))
}

// RecordRateLimit записывает решение лимитера
func (m *GatewayMetrics) RecordRateLimit(procedure string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "limited"
	}
	m.RateLimitDecisions.WithLabelValues(procedure, decision).Inc()
}
