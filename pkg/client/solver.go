// pkg/client/solver.go
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
)

// SolverClient клиент для solver-svc
type SolverClient struct {
	conn    *grpc.ClientConn
	client  solverv1.SolverServiceClient
	health  grpc_health_v1.HealthClient
	timeout time.Duration
}

// DefaultSolverClientConfig возвращает конфигурацию по умолчанию
func DefaultSolverClientConfig() ClientConfig {
	return ClientConfig{
		Address:           "localhost:50052",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryBackoff:      100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2,
	}
}

// NewSolverClient создаёт клиента и соединение
func NewSolverClient(cfg ClientConfig, extra ...grpc.DialOption) (*SolverClient, error) {
	conn, err := NewGRPCClient(cfg, extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to solver service: %w", err)
	}
	c := NewSolverClientFromConn(conn, cfg.Timeout)
	c.conn = conn
	return c, nil
}

// NewSolverClientFromConn оборачивает готовое соединение; Close его не закрывает
func NewSolverClientFromConn(cc grpc.ClientConnInterface, timeout time.Duration) *SolverClient {
	return &SolverClient{
		client:  solverv1.NewSolverServiceClient(cc),
		health:  grpc_health_v1.NewHealthClient(cc),
		timeout: timeout,
	}
}

// Close закрывает соединение
func (c *SolverClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *SolverClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// call выполняет вызов с таймаутом и переводит gRPC статус в *apperror.Error
func call[Req, Resp any](ctx context.Context, c *SolverClient, fn func(context.Context, *Req, ...grpc.CallOption) (*Resp, error), req *Req) (*Resp, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := fn(ctx, req)
	if err != nil {
		return nil, apperror.FromGRPC(err)
	}
	return resp, nil
}

// Solve решает задачу кратчайшего пути
func (c *SolverClient) Solve(ctx context.Context, req *solverv1.SolveRequest) (*solverv1.SolveResponse, error) {
	return call(ctx, c, c.client.Solve, req)
}

// Compare решает обоими методами и сверяет результаты
func (c *SolverClient) Compare(ctx context.Context, req *solverv1.CompareRequest) (*solverv1.CompareResponse, error) {
	return call(ctx, c, c.client.Compare, req)
}

// ReconstructPath восстанавливает путь по таблице предшественников
func (c *SolverClient) ReconstructPath(ctx context.Context, req *solverv1.PathRequest) (*solverv1.PathResponse, error) {
	return call(ctx, c, c.client.ReconstructPath, req)
}

// GetTrace возвращает сохранённую трассу
func (c *SolverClient) GetTrace(ctx context.Context, id string) (*solverv1.SolveResponse, error) {
	return call(ctx, c, c.client.GetTrace, &solverv1.GetTraceRequest{Id: id})
}

// ListTraces возвращает страницу сохранённых трасс
func (c *SolverClient) ListTraces(ctx context.Context, req *solverv1.ListTracesRequest) (*solverv1.ListTracesResponse, error) {
	return call(ctx, c, c.client.ListTraces, req)
}

// DeleteTrace удаляет трассу
func (c *SolverClient) DeleteTrace(ctx context.Context, id string) (bool, error) {
	resp, err := call(ctx, c, c.client.DeleteTrace, &solverv1.DeleteTraceRequest{Id: id})
	if err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// GetMethods возвращает список методов
func (c *SolverClient) GetMethods(ctx context.Context) (*solverv1.GetMethodsResponse, error) {
	return call(ctx, c, c.client.GetMethods, &solverv1.GetMethodsRequest{})
}

// Health проверяет состояние сервиса через grpc.health.v1
func (c *SolverClient) Health(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	// health сервис говорит на protobuf, перекрываем JSON по умолчанию
	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service},
		grpc.CallContentSubtype("proto"))
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, apperror.FromGRPC(err)
	}
	return resp.GetStatus(), nil
}
