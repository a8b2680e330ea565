package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик сервиса
type Metrics struct {
	// gRPC метрики
	GRPCRequestsTotal    *prometheus.CounterVec
	GRPCRequestDuration  *prometheus.HistogramVec
	GRPCRequestsInFlight prometheus.Gauge

	// Метрики решателя
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	SolveSweeps          *prometheus.HistogramVec
	SolveSteps           *prometheus.HistogramVec
	GraphNodesTotal      *prometheus.HistogramVec
	GraphEdgesTotal      *prometheus.HistogramVec
	MethodDisagreements  prometheus.Counter

	// Кэш и хранилище трасс
	CacheLookupsTotal *prometheus.CounterVec
	TracesStoredTotal *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

var (
	defaultMu      sync.Mutex
	defaultMetrics *Metrics
)

// InitMetrics регистрирует метрики в глобальном реестре Prometheus
func InitMetrics(namespace, subsystem string) *Metrics {
	m := New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, namespace, subsystem)

	defaultMu.Lock()
	defaultMetrics = m
	defaultMu.Unlock()

	return m
}

// NewWithRegistry создаёт метрики в отдельном реестре (для тестов и CLI)
func NewWithRegistry(namespace, subsystem string) (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(reg, reg, namespace, subsystem), reg
}

// New создаёт и регистрирует метрики, включая runtime коллектор
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		GRPCRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),

		GRPCRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_request_duration_seconds",
				Help:      "Duration of gRPC requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		GRPCRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_in_flight",
				Help:      "Current number of gRPC requests being processed",
			},
		),

		SolveOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations by method and outcome",
			},
			[]string{"method", "status"},
		),

		SolveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Wall time of value iteration",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"method"},
		),

		SolveSweeps: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_sweeps",
				Help:      "Value-iteration sweeps run before convergence",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"method"},
		),

		SolveSteps: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_steps",
				Help:      "Trace length in snapshots",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
			},
			[]string{"method"},
		),

		GraphNodesTotal: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in processed graphs",
				Buckets:   []float64{5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),

		GraphEdgesTotal: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in processed graphs",
				Buckets:   []float64{10, 50, 100, 500, 1000, 10000, 50000},
			},
			[]string{"operation"},
		),

		MethodDisagreements: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "method_disagreements_total",
				Help:      "Compare calls where Gauss-Seidel and Jacobi final states differed",
			},
		),

		CacheLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Solve cache lookups by result",
			},
			[]string{"result"},
		),

		TracesStoredTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "traces_stored_total",
				Help:      "Traces persisted to the repository",
			},
			[]string{"method"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),

		gatherer: gatherer,
	}

	reg.MustRegister(NewRuntimeCollector(namespace, subsystem))

	return m
}

// Get возвращает глобальные метрики, создавая их при первом обращении
func Get() *Metrics {
	defaultMu.Lock()
	m := defaultMetrics
	defaultMu.Unlock()

	if m == nil {
		return InitMetrics("bellman", "")
	}
	return m
}

// RecordGRPCRequest записывает метрики gRPC запроса
func (m *Metrics) RecordGRPCRequest(method string, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSolve записывает метрики успешного решения
func (m *Metrics) RecordSolve(method string, duration time.Duration, sweeps, steps int) {
	m.SolveOperationsTotal.WithLabelValues(method, "success").Inc()
	m.SolveDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.SolveSweeps.WithLabelValues(method).Observe(float64(sweeps))
	m.SolveSteps.WithLabelValues(method).Observe(float64(steps))
}

// RecordSolveError записывает неудачное решение; status - код ошибки
func (m *Metrics) RecordSolveError(method, status string) {
	if status == "" {
		status = "error"
	}
	m.SolveOperationsTotal.WithLabelValues(method, status).Inc()
}

// RecordGraphSize записывает размер графа
func (m *Metrics) RecordGraphSize(operation string, nodes, edges int) {
	m.GraphNodesTotal.WithLabelValues(operation).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(operation).Observe(float64(edges))
}

// RecordCacheLookup записывает попадание или промах кэша
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordTraceStored записывает сохранение трассы
func (m *Metrics) RecordTraceStored(method string) {
	m.TracesStoredTotal.WithLabelValues(method).Inc()
}

// RecordComparison записывает результат сравнения методов
func (m *Metrics) RecordComparison(agree bool) {
	if !agree {
		m.MethodDisagreements.Inc()
	}
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics по реестру этих метрик
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Handler возвращает HTTP handler для глобального реестра
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer собирает HTTP сервер с /metrics и /health
func NewMetricsServer(port int, path string, h http.Handler) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartMetricsServer запускает HTTP сервер для метрик (блокирующий)
func StartMetricsServer(port int) error {
	return NewMetricsServer(port, "/metrics", Handler()).ListenAndServe()
}
