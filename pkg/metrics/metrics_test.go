package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prevReg, prevGath := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer, prometheus.DefaultGatherer = reg, reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer, prometheus.DefaultGatherer = prevReg, prevGath
		defaultMu.Lock()
		defaultMetrics = nil
		defaultMu.Unlock()
	})

	m := InitMetrics("test", "service")
	if m == nil {
		t.Fatal("InitMetrics returned nil")
	}
	if Get() != m {
		t.Error("Get() should return the initialised instance")
	}
}

func TestRecordGRPCRequest(t *testing.T) {
	m, _ := NewWithRegistry("test", "grpc")

	m.RecordGRPCRequest("/bellman.solver.v1.SolverService/Solve", "OK", 100*time.Millisecond)
	m.RecordGRPCRequest("/bellman.solver.v1.SolverService/Solve", "InvalidArgument", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues("/bellman.solver.v1.SolverService/Solve", "OK")); got != 1 {
		t.Errorf("expected 1 OK request, got %v", got)
	}
	if got := testutil.CollectAndCount(m.GRPCRequestDuration); got != 1 {
		t.Errorf("expected 1 duration series, got %d", got)
	}
}

func TestRecordSolve(t *testing.T) {
	m, _ := NewWithRegistry("test", "solve")

	m.RecordSolve("jacobi", 2*time.Millisecond, 3, 5)
	m.RecordSolve("jacobi", time.Millisecond, 2, 4)
	m.RecordSolveError("gauss_seidel", "INVALID_SOURCE")
	m.RecordSolveError("gauss_seidel", "")

	if got := testutil.ToFloat64(m.SolveOperationsTotal.WithLabelValues("jacobi", "success")); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.SolveOperationsTotal.WithLabelValues("gauss_seidel", "INVALID_SOURCE")); got != 1 {
		t.Errorf("expected 1 INVALID_SOURCE, got %v", got)
	}
	if got := testutil.ToFloat64(m.SolveOperationsTotal.WithLabelValues("gauss_seidel", "error")); got != 1 {
		t.Errorf("expected empty status to become 'error', got %v", got)
	}
}

func TestRecordCacheAndTraces(t *testing.T) {
	m, _ := NewWithRegistry("test", "cache")

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordTraceStored("jacobi")
	m.RecordComparison(true)
	m.RecordComparison(false)

	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.TracesStoredTotal.WithLabelValues("jacobi")); got != 1 {
		t.Errorf("expected 1 stored trace, got %v", got)
	}
	if got := testutil.ToFloat64(m.MethodDisagreements); got != 1 {
		t.Errorf("expected 1 disagreement, got %v", got)
	}
}

func TestRecordGraphSizeAndServiceInfo(t *testing.T) {
	m, reg := NewWithRegistry("test", "graph")

	m.RecordGraphSize("solve", 4, 5)
	m.SetServiceInfo("1.0.0", "test")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"test_graph_graph_nodes_total", "test_graph_service_info", "test_graph_runtime_goroutines", "test_graph_runtime_heap_inuse_bytes"} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestMetricsHandler(t *testing.T) {
	m, _ := NewWithRegistry("test", "http")
	m.RecordCacheLookup(true)

	srv := httptest.NewServer(NewMetricsServer(0, "", m.Handler()).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), `test_http_cache_lookups_total{result="hit"} 1`) {
		t.Errorf("metrics output missing cache counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestInFlight(t *testing.T) {
	m, _ := NewWithRegistry("test", "inflight")

	done := InFlight(m.GRPCRequestsInFlight)
	if got := testutil.ToFloat64(m.GRPCRequestsInFlight); got != 1 {
		t.Errorf("expected 1 in flight, got %v", got)
	}
	done()
	if got := testutil.ToFloat64(m.GRPCRequestsInFlight); got != 0 {
		t.Errorf("expected 0 in flight, got %v", got)
	}
}

func TestPoolCollector(t *testing.T) {
	c := NewPoolCollector("test", "db", func() PoolStats {
		return PoolStats{Total: 4, Idle: 1, Acquired: 3, AcquireCount: 17, EmptyWaits: 2}
	})

	if n := testutil.CollectAndCount(c); n != 5 {
		t.Fatalf("expected 5 pool metrics, got %d", n)
	}

	want := `
# HELP test_db_db_pool_acquired_connections Connections checked out by queries
# TYPE test_db_db_pool_acquired_connections gauge
test_db_db_pool_acquired_connections 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want), "test_db_db_pool_acquired_connections"); err != nil {
		t.Error(err)
	}
}

func TestRuntimeCollector(t *testing.T) {
	c := NewRuntimeCollector("test", "rt")
	if n := testutil.CollectAndCount(c); n < 6 {
		t.Errorf("expected at least 6 runtime metrics, got %d", n)
	}
}
