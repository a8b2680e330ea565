package clients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"bellman/pkg/client"
	"bellman/pkg/config"
	"bellman/pkg/logger"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
)

const (
	StatusHealthy   = "HEALTHY"
	StatusUnhealthy = "UNHEALTHY"

	healthCheckTimeout = 5 * time.Second
)

// Manager управляет gRPC клиентами backend сервисов
type Manager struct {
	mu sync.RWMutex

	solver *SolverClient

	config  *Config
	metrics *gwmetrics.GatewayMetrics
	closed  bool
}

// Config конфигурация менеджера клиентов
type Config struct {
	Solver config.ServiceEndpoint
	Retry  config.RetryConfig
}

// NewManager создаёт менеджер и подключается к solver-svc
func NewManager(_ context.Context, cfg *Config, m *gwmetrics.GatewayMetrics, extra ...grpc.DialOption) (*Manager, error) {
	sc, err := client.NewSolverClient(client.ConfigFromEndpoint(cfg.Solver, cfg.Retry), extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to solver-svc: %w", err)
	}
	logger.Log.Info("Connected to solver-svc", "address", cfg.Solver.Address())

	return NewManagerWithClient(sc, cfg, m), nil
}

// NewManagerWithClient оборачивает готовый клиент (тесты, in-process backend)
func NewManagerWithClient(sc *client.SolverClient, cfg *Config, m *gwmetrics.GatewayMetrics) *Manager {
	if m == nil {
		m = gwmetrics.Get()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return &Manager{
		solver:  NewSolverClient(sc, m),
		config:  cfg,
		metrics: m,
	}
}

// Solver возвращает клиент solver-svc
func (m *Manager) Solver() *SolverClient { return m.solver }

// ServiceHealth информация о здоровье сервиса
type ServiceHealth struct {
	Name      string
	Address   string
	Status    string
	LatencyMs int64
	Error     string
}

// CheckHealth опрашивает grpc.health.v1 всех backend сервисов параллельно
func (m *Manager) CheckHealth(ctx context.Context) map[string]*ServiceHealth {
	results := make(map[string]*ServiceHealth)

	services := []struct {
		name    string
		check   func(context.Context) (grpc_health_v1.HealthCheckResponse_ServingStatus, error)
		address string
	}{
		{"solver", m.solver.Health, m.config.Solver.Address()},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, svc := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()

			health := &ServiceHealth{
				Name:    svc.name,
				Address: svc.address,
			}

			healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			start := time.Now()
			st, err := svc.check(healthCtx)
			health.LatencyMs = time.Since(start).Milliseconds()

			switch {
			case err != nil:
				health.Status = StatusUnhealthy
				health.Error = err.Error()
			case st == grpc_health_v1.HealthCheckResponse_SERVING:
				health.Status = StatusHealthy
			default:
				health.Status = st.String()
			}
			m.metrics.RecordBackendHealth(svc.name, health.Status == StatusHealthy)

			mu.Lock()
			results[svc.name] = health
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// Close закрывает все соединения
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if err := m.solver.Close(); err != nil {
		return fmt.Errorf("errors closing connections: %w", err)
	}
	return nil
}
