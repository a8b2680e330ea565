package client

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/pkg/config"
)

type fakeSolver struct {
	solverv1.UnimplementedSolverServiceServer
	solveCalls   atomic.Int32
	failuresLeft atomic.Int32
}

func (f *fakeSolver) Solve(_ context.Context, req *solverv1.SolveRequest) (*solverv1.SolveResponse, error) {
	f.solveCalls.Add(1)
	if f.failuresLeft.Add(-1) >= 0 {
		return nil, status.Error(codes.Unavailable, "warming up")
	}
	return &solverv1.SolveResponse{
		Path:      []string{req.SourceId, req.TargetId},
		PathFound: true,
	}, nil
}

func (f *fakeSolver) GetTrace(_ context.Context, req *solverv1.GetTraceRequest) (*solverv1.SolveResponse, error) {
	return nil, apperror.Newf(apperror.CodeNotFound, "trace %s not found", req.Id)
}

func (f *fakeSolver) DeleteTrace(_ context.Context, _ *solverv1.DeleteTraceRequest) (*solverv1.DeleteTraceResponse, error) {
	return &solverv1.DeleteTraceResponse{Deleted: true}, nil
}

func startFake(t *testing.T, f *fakeSolver, cfg ClientConfig) *SolverClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	solverv1.RegisterSolverServiceServer(s, f)
	h := health.NewServer()
	h.SetServingStatus("solver-svc", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, h)

	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	cfg.Address = "passthrough:///bufnet"
	c, err := NewSolverClient(cfg, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDefaultSolverClientConfig(t *testing.T) {
	cfg := DefaultSolverClientConfig()

	assert.Equal(t, "localhost:50052", cfg.Address)
	assert.Positive(t, cfg.Timeout)
	assert.Positive(t, cfg.MaxRetries)
}

func TestConfigFromEndpoint(t *testing.T) {
	ep := config.ServiceEndpoint{Host: "solver", Port: 50052, Timeout: time.Second, TLS: true}
	retry := config.RetryConfig{MaxAttempts: 4, InitialBackoff: 50 * time.Millisecond, MaxBackoff: time.Second, BackoffMultiplier: 2}

	cfg := ConfigFromEndpoint(ep, retry)
	assert.Equal(t, "solver:50052", cfg.Address)
	assert.Equal(t, 4, cfg.MaxRetries, "falls back to retry.max_attempts")
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBackoff)
	assert.True(t, cfg.TLS)

	ep.MaxRetries = 1
	assert.Equal(t, 1, ConfigFromEndpoint(ep, retry).MaxRetries)
}

func TestBackoff(t *testing.T) {
	b := backoff(10*time.Millisecond, 50*time.Millisecond, 2)

	assert.Equal(t, 10*time.Millisecond, b(context.Background(), 0))
	assert.Equal(t, 40*time.Millisecond, b(context.Background(), 2))
	assert.Equal(t, 50*time.Millisecond, b(context.Background(), 5), "capped")

	flat := backoff(0, 0, 0)
	assert.Equal(t, 100*time.Millisecond, flat(context.Background(), 3))
}

func TestSolverClient_RetriesUnavailable(t *testing.T) {
	f := &fakeSolver{}
	f.failuresLeft.Store(2)

	cfg := DefaultSolverClientConfig()
	cfg.RetryBackoff = time.Millisecond
	c := startFake(t, f, cfg)

	resp, err := c.Solve(context.Background(), &solverv1.SolveRequest{SourceId: "a", TargetId: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Path)
	assert.Equal(t, int32(3), f.solveCalls.Load())
}

func TestSolverClient_NoRetries(t *testing.T) {
	f := &fakeSolver{}
	f.failuresLeft.Store(1)

	cfg := DefaultSolverClientConfig()
	cfg.MaxRetries = 0
	c := startFake(t, f, cfg)

	_, err := c.Solve(context.Background(), &solverv1.SolveRequest{SourceId: "a", TargetId: "b"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnavailable))
}

func TestSolverClient_ErrorMapping(t *testing.T) {
	c := startFake(t, &fakeSolver{}, DefaultSolverClientConfig())

	_, err := c.GetTrace(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = c.GetMethods(context.Background())
	assert.True(t, apperror.Is(err, apperror.CodeUnimplemented))

	deleted, err := c.DeleteTrace(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSolverClient_Health(t *testing.T) {
	c := startFake(t, &fakeSolver{}, DefaultSolverClientConfig())

	st, err := c.Health(context.Background(), "solver-svc")
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, st)
}
