package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/pkg/cache"
	"bellman/pkg/config"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/services/solver-svc/internal/algorithms"
	"bellman/services/solver-svc/internal/repository"
)

func TestMain(m *testing.M) {
	// Инициализируем логгер для тестов
	logger.Init("error")

	os.Exit(m.Run())
}

// diamondGraph: 1->2 (1), 2->4 (1), 1->3 (5), 3->4 (1), 5 изолирован
func diamondGraph() *solverv1.Graph {
	return &solverv1.Graph{
		Nodes: []*solverv1.Node{
			{Id: "1", Role: "start"}, {Id: "2"}, {Id: "3"}, {Id: "4", Role: "end"}, {Id: "5"},
		},
		Edges: []*solverv1.Edge{
			{Id: "e1", Source: "1", Target: "2", Weight: 1},
			{Id: "e2", Source: "2", Target: "4", Weight: 1},
			{Id: "e3", Source: "1", Target: "3", Weight: 5},
			{Id: "e4", Source: "3", Target: "4", Weight: 1},
		},
	}
}

type fixture struct {
	svc     *SolverService
	repo    *repository.MemoryTraceRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	m, _ := metrics.NewWithRegistry("test", "")
	repo := repository.NewMemoryTraceRepository()
	sc := cache.NewSolverCache(cache.NewMemoryCache(cache.DefaultOptions()), time.Minute)

	return &fixture{
		svc:     NewSolverService(opts, repo, sc, m),
		repo:    repo,
		metrics: m,
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		App:    config.AppConfig{Version: "1.2.3"},
		Solver: config.SolverConfig{MaxNodes: 10, Timeout: time.Second, PersistTraces: true},
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, algorithms.MethodGaussSeidel, opts.DefaultMethod)
	assert.Equal(t, "1.2.3", opts.Version)
	assert.Equal(t, 10, opts.MaxNodes)
	assert.True(t, opts.PersistTraces)

	cfg.Solver.DefaultMethod = "jacobi"
	assert.Equal(t, algorithms.MethodJacobi, OptionsFromConfig(cfg).DefaultMethod)
}

func TestSolverService_Solve(t *testing.T) {
	for _, method := range []string{"gauss_seidel", "jacobi"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t, Options{})

			resp, err := f.svc.Solve(context.Background(), &solverv1.SolveRequest{
				Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: method,
			})
			require.NoError(t, err)

			assert.Equal(t, method, resp.Result.Method)
			assert.Equal(t, []string{"1", "2", "4"}, resp.Path)
			assert.Equal(t, []string{"e1", "e2"}, resp.PathEdges)
			require.NotNil(t, resp.PathWeight)
			assert.Equal(t, int64(2), *resp.PathWeight)
			assert.True(t, resp.PathFound)
			assert.False(t, resp.CacheHit)
			assert.Empty(t, resp.TraceId)

			assert.Equal(t, int64(2), *resp.Result.FinalValues["1"])
			assert.Nil(t, resp.Result.FinalValues["5"], "isolated node is unreachable")
			assert.Equal(t, "", resp.Result.FinalPredecessors["5"])
			assert.True(t, resp.Result.Steps[len(resp.Result.Steps)-1].Completed)

			assert.Equal(t, int32(5), resp.Metrics.NodeCount)
			assert.Equal(t, int32(len(resp.Result.Steps)), resp.Metrics.Steps)
		})
	}
}

func TestSolverService_Solve_DefaultMethod(t *testing.T) {
	f := newFixture(t, Options{DefaultMethod: algorithms.MethodJacobi})

	resp, err := f.svc.Solve(context.Background(), &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "jacobi", resp.Result.Method)
	assert.NotEmpty(t, resp.Result.Table)
}

func TestSolverService_Solve_UnreachableTarget(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.svc.Solve(context.Background(), &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "5", TargetId: "4",
	})
	require.NoError(t, err)
	assert.False(t, resp.PathFound)
	assert.Empty(t, resp.Path)
	assert.Nil(t, resp.PathWeight)
}

func TestSolverService_Solve_CacheHit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := &solverv1.SolveRequest{Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: "jacobi"}

	first, err := f.svc.Solve(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := f.svc.Solve(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Path, second.Path)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SolveOperationsTotal.WithLabelValues("jacobi", "success")))

	// Другой метод - другой ключ
	req.Method = "gauss_seidel"
	third, err := f.svc.Solve(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	// SkipCache всегда считает заново
	req.SkipCache = true
	fourth, err := f.svc.Solve(ctx, req)
	require.NoError(t, err)
	assert.False(t, fourth.CacheHit)
}

func TestSolverService_Solve_Errors(t *testing.T) {
	f := newFixture(t, Options{MaxNodes: 3})

	tests := []struct {
		name string
		req  *solverv1.SolveRequest
		code apperror.ErrorCode
	}{
		{
			name: "nil graph",
			req:  &solverv1.SolveRequest{SourceId: "1", TargetId: "2"},
			code: apperror.CodeNilInput,
		},
		{
			name: "empty graph",
			req:  &solverv1.SolveRequest{Graph: &solverv1.Graph{}, SourceId: "1", TargetId: "2"},
			code: apperror.CodeEmptyGraph,
		},
		{
			name: "unknown method",
			req:  &solverv1.SolveRequest{Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: "dijkstra"},
			code: apperror.CodeInvalidMethod,
		},
		{
			name: "too many nodes",
			req:  &solverv1.SolveRequest{Graph: diamondGraph(), SourceId: "1", TargetId: "4"},
			code: apperror.CodeGraphTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Solve(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))
		})
	}
}

func TestSolverService_Solve_InvalidEndpoints(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Solve(context.Background(), &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "missing",
	})
	assert.Equal(t, apperror.CodeInvalidTarget, apperror.Code(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.SolveOperationsTotal.WithLabelValues("gauss_seidel", string(apperror.CodeInvalidTarget))))
}

func TestSolverService_Solve_Timeout(t *testing.T) {
	f := newFixture(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Solve(ctx, &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4", SkipCache: true,
	})
	assert.Equal(t, apperror.CodeTimeout, apperror.Code(err))
}

func TestSolverService_Solve_PersistAndReplay(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	resp, err := f.svc.Solve(ctx, &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: "jacobi", Persist: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.TraceId)
	assert.Equal(t, 1, f.repo.Len())

	replayed, err := f.svc.GetTrace(ctx, &solverv1.GetTraceRequest{Id: resp.TraceId})
	require.NoError(t, err)
	assert.Equal(t, resp.TraceId, replayed.TraceId)
	assert.Equal(t, resp.Result, replayed.Result)
	assert.Equal(t, resp.Path, replayed.Path)
	assert.Equal(t, resp.PathWeight, replayed.PathWeight)
	assert.Equal(t, resp.PathEdges, replayed.PathEdges)

	// Повторный запрос из кэша тоже сохраняется, но под новым ID
	again, err := f.svc.Solve(ctx, &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: "jacobi", Persist: true,
	})
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.NotEqual(t, resp.TraceId, again.TraceId)
	assert.Equal(t, 2, f.repo.Len())
}

func TestSolverService_Solve_PersistTracesByConfig(t *testing.T) {
	f := newFixture(t, Options{PersistTraces: true})

	resp, err := f.svc.Solve(context.Background(), &solverv1.SolveRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TraceId)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TracesStoredTotal.WithLabelValues("gauss_seidel")))
}

type failingRepo struct {
	repository.TraceRepository
}

func (failingRepo) Save(context.Context, *repository.Trace) error {
	return errors.New("connection refused")
}

func TestSolverService_Solve_PersistFailure(t *testing.T) {
	m, _ := metrics.NewWithRegistry("test", "")
	ctx := context.Background()
	req := &solverv1.SolveRequest{Graph: diamondGraph(), SourceId: "1", TargetId: "4"}

	// Явный запрос на сохранение - ошибка
	svc := NewSolverService(Options{}, failingRepo{}, nil, m)
	req.Persist = true
	_, err := svc.Solve(ctx, req)
	assert.Equal(t, apperror.CodeUnavailable, apperror.Code(err))

	// Сохранение по конфигу - только предупреждение
	svc = NewSolverService(Options{PersistTraces: true}, failingRepo{}, nil, m)
	req.Persist = false
	resp, err := svc.Solve(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, resp.TraceId)
}

func TestSolverService_Compare(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.svc.Compare(context.Background(), &solverv1.CompareRequest{
		Graph: diamondGraph(), SourceId: "1", TargetId: "4",
	})
	require.NoError(t, err)

	assert.True(t, resp.ValuesAgree)
	assert.True(t, resp.PredecessorsAgree)
	assert.Empty(t, resp.MismatchedNodes)
	assert.Equal(t, []string{"1", "2", "4"}, resp.Path)
	assert.Equal(t, "gauss_seidel", resp.GaussSeidel.Method)
	assert.Equal(t, "jacobi", resp.Jacobi.Method)
	assert.Less(t, len(resp.GaussSeidel.Steps), len(resp.Jacobi.Steps)+1)
	assert.Zero(t, testutil.ToFloat64(f.metrics.MethodDisagreements))
}

func TestSolverService_Compare_InvalidSource(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Compare(context.Background(), &solverv1.CompareRequest{
		Graph: diamondGraph(), SourceId: "x", TargetId: "4",
	})
	assert.Equal(t, apperror.CodeInvalidSource, apperror.Code(err))
}

func TestSolverService_ReconstructPath(t *testing.T) {
	f := newFixture(t, Options{})
	preds := map[string]string{"1": "2", "2": "4", "3": "4", "4": "", "5": ""}

	resp, err := f.svc.ReconstructPath(context.Background(), &solverv1.PathRequest{
		Predecessors: preds, SourceId: "1", TargetId: "4",
	})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"1", "2", "4"}, resp.Path)
	assert.Nil(t, resp.Weight)

	resp, err = f.svc.ReconstructPath(context.Background(), &solverv1.PathRequest{
		Predecessors: preds, SourceId: "1", TargetId: "4", Graph: diamondGraph(),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Weight)
	assert.Equal(t, int64(2), *resp.Weight)
	assert.Equal(t, []string{"e1", "e2"}, resp.EdgeIds)

	resp, err = f.svc.ReconstructPath(context.Background(), &solverv1.PathRequest{
		Predecessors: preds, SourceId: "5", TargetId: "4",
	})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Path)

	_, err = f.svc.ReconstructPath(context.Background(), &solverv1.PathRequest{Predecessors: preds, TargetId: "4"})
	assert.Equal(t, apperror.CodeInvalidSource, apperror.Code(err))
}

func TestSolverService_TraceLifecycle(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	var ids []string
	for _, m := range []string{"jacobi", "gauss_seidel", "jacobi"} {
		resp, err := f.svc.Solve(ctx, &solverv1.SolveRequest{
			Graph: diamondGraph(), SourceId: "1", TargetId: "4", Method: m, Persist: true,
		})
		require.NoError(t, err)
		ids = append(ids, resp.TraceId)
	}

	list, err := f.svc.ListTraces(ctx, &solverv1.ListTracesRequest{Limit: 1, Method: "jacobi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.True(t, list.HasMore)
	require.Len(t, list.Traces, 1)
	assert.Equal(t, "jacobi", list.Traces[0].Method)
	require.NotNil(t, list.Traces[0].SourceValue)
	assert.Equal(t, int64(2), *list.Traces[0].SourceValue)

	all, err := f.svc.ListTraces(ctx, &solverv1.ListTracesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.False(t, all.HasMore)

	del, err := f.svc.DeleteTrace(ctx, &solverv1.DeleteTraceRequest{Id: ids[0]})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, err = f.svc.GetTrace(ctx, &solverv1.GetTraceRequest{Id: ids[0]})
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))

	_, err = f.svc.DeleteTrace(ctx, &solverv1.DeleteTraceRequest{Id: ids[0]})
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))

	_, err = f.svc.ListTraces(ctx, &solverv1.ListTracesRequest{Method: "bfs"})
	assert.Equal(t, apperror.CodeInvalidMethod, apperror.Code(err))

	_, err = f.svc.ListTraces(ctx, &solverv1.ListTracesRequest{Limit: solverv1.MaxPageSize + 1})
	assert.Equal(t, apperror.CodeInvalidPagination, apperror.Code(err))
}

func TestSolverService_GetTrace_Corrupted(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	tr := &repository.Trace{
		Method:    "jacobi",
		SourceID:  "1",
		TargetID:  "4",
		GraphHash: "h",
		Graph:     []byte(`{"nodes":[],"edges":[]}`),
		Result:    []byte(`{"method":"jacobi","steps":[]}`),
	}
	require.NoError(t, f.repo.Save(ctx, tr))

	_, err := f.svc.GetTrace(ctx, &solverv1.GetTraceRequest{Id: tr.ID})
	assert.Equal(t, apperror.CodeTraceCorrupted, apperror.Code(err))
}

func TestSolverService_NoStorage(t *testing.T) {
	m, _ := metrics.NewWithRegistry("test", "")
	svc := NewSolverService(Options{}, nil, nil, m)

	_, err := svc.GetTrace(context.Background(), &solverv1.GetTraceRequest{Id: "x"})
	assert.Equal(t, apperror.CodeUnavailable, apperror.Code(err))

	_, err = svc.ListTraces(context.Background(), &solverv1.ListTracesRequest{})
	assert.Equal(t, apperror.CodeUnavailable, apperror.Code(err))
}

func TestSolverService_GetMethods(t *testing.T) {
	f := newFixture(t, Options{DefaultMethod: algorithms.MethodJacobi})

	resp, err := f.svc.GetMethods(context.Background(), &solverv1.GetMethodsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Methods, 2)
	assert.Equal(t, "gauss_seidel", resp.Methods[0].Method)
	assert.Equal(t, "value", resp.Methods[0].ConvergenceSignal)
	assert.Equal(t, "predecessor", resp.Methods[1].ConvergenceSignal)
	assert.Equal(t, "jacobi", resp.DefaultMethod)
}
