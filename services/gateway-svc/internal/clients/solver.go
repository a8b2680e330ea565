package clients

import (
	"context"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/pkg/client"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
)

const solverService = "solver"

// SolverClient клиент solver-svc с метриками backend вызовов
type SolverClient struct {
	raw     *client.SolverClient
	metrics *gwmetrics.GatewayMetrics
}

// NewSolverClient оборачивает pkg/client
func NewSolverClient(raw *client.SolverClient, m *gwmetrics.GatewayMetrics) *SolverClient {
	return &SolverClient{raw: raw, metrics: m}
}

// observe замеряет вызов; статус - код apperror или OK
func observe[T any](c *SolverClient, method string, fn func() (T, error)) (T, error) {
	start := time.Now()
	resp, err := fn()

	status := "OK"
	if err != nil {
		status = string(apperror.Code(err))
	}
	c.metrics.RecordBackendRequest(solverService, method, status, time.Since(start))

	return resp, err
}

// Solve решает задачу одним методом
func (c *SolverClient) Solve(ctx context.Context, req *solverv1.SolveRequest) (*solverv1.SolveResponse, error) {
	return observe(c, "Solve", func() (*solverv1.SolveResponse, error) {
		return c.raw.Solve(ctx, req)
	})
}

// Compare решает обоими методами
func (c *SolverClient) Compare(ctx context.Context, req *solverv1.CompareRequest) (*solverv1.CompareResponse, error) {
	return observe(c, "Compare", func() (*solverv1.CompareResponse, error) {
		return c.raw.Compare(ctx, req)
	})
}

// ReconstructPath восстанавливает путь по предшественникам
func (c *SolverClient) ReconstructPath(ctx context.Context, req *solverv1.PathRequest) (*solverv1.PathResponse, error) {
	return observe(c, "ReconstructPath", func() (*solverv1.PathResponse, error) {
		return c.raw.ReconstructPath(ctx, req)
	})
}

// GetTrace возвращает сохранённую трассу
func (c *SolverClient) GetTrace(ctx context.Context, id string) (*solverv1.SolveResponse, error) {
	return observe(c, "GetTrace", func() (*solverv1.SolveResponse, error) {
		return c.raw.GetTrace(ctx, id)
	})
}

// ListTraces возвращает страницу трасс
func (c *SolverClient) ListTraces(ctx context.Context, req *solverv1.ListTracesRequest) (*solverv1.ListTracesResponse, error) {
	return observe(c, "ListTraces", func() (*solverv1.ListTracesResponse, error) {
		return c.raw.ListTraces(ctx, req)
	})
}

// DeleteTrace удаляет трассу
func (c *SolverClient) DeleteTrace(ctx context.Context, id string) (bool, error) {
	return observe(c, "DeleteTrace", func() (bool, error) {
		return c.raw.DeleteTrace(ctx, id)
	})
}

// GetMethods возвращает каталог методов
func (c *SolverClient) GetMethods(ctx context.Context) (*solverv1.GetMethodsResponse, error) {
	return observe(c, "GetMethods", func() (*solverv1.GetMethodsResponse, error) {
		return c.raw.GetMethods(ctx)
	})
}

// Health проверяет solver-svc; пустое имя - общее состояние сервера
func (c *SolverClient) Health(ctx context.Context) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	return c.raw.Health(ctx, "")
}

// Close закрывает соединение
func (c *SolverClient) Close() error {
	return c.raw.Close()
}
