// Package main is the entry point for the solver-svc microservice.
//
// solver-svc exposes Bellman-Kalaba value iteration (Gauss-Seidel and Jacobi)
// as a gRPC service. Every solve returns the complete step-by-step trace so a
// client can replay how values and predecessor links evolved.
//
// # Service Overview
//
//	bellman.solver.v1.SolverService/Solve            - one method, full trace + optimal path
//	bellman.solver.v1.SolverService/Compare          - both methods side by side
//	bellman.solver.v1.SolverService/ReconstructPath  - follow a predecessor map
//	bellman.solver.v1.SolverService/GetTrace         - replay a persisted trace
//	bellman.solver.v1.SolverService/ListTraces       - page through persisted traces
//	bellman.solver.v1.SolverService/DeleteTrace      - drop a persisted trace
//	bellman.solver.v1.SolverService/GetMethods       - method catalogue
//
// Messages travel as JSON (content-subtype "json"); the standard gRPC health
// service uses the regular proto codec.
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: BELLMAN_)
//  2. Config files (config.yaml, config/config.yaml, /etc/bellman/config.yaml)
//  3. Default values
//
// Solver specific options:
//
//	BELLMAN_SOLVER_DEFAULT_METHOD  - gauss_seidel or jacobi (default: gauss_seidel)
//	BELLMAN_SOLVER_MAX_NODES       - reject larger graphs (default: 2000)
//	BELLMAN_SOLVER_MAX_EDGES       - reject larger graphs (default: 50000)
//	BELLMAN_SOLVER_TIMEOUT         - per solve timeout (default: 30s)
//	BELLMAN_SOLVER_PERSIST_TRACES  - store every trace, not only on request
//	BELLMAN_DATABASE_ENABLED       - PostgreSQL trace storage instead of memory
//	BELLMAN_CACHE_ENABLED          - result cache (memory or redis)
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM switch health to NOT_SERVING, drain in-flight requests
// (up to 30 seconds), then flush telemetry and close storage.
//
// # API Usage Examples
//
//	grpcurl -plaintext -d '{
//	  "graph": {
//	    "nodes": [{"id": "1"}, {"id": "2"}, {"id": "3"}, {"id": "4"}],
//	    "edges": [
//	      {"id": "e1", "source": "1", "target": "2", "weight": 1},
//	      {"id": "e2", "source": "2", "target": "4", "weight": 1},
//	      {"id": "e3", "source": "1", "target": "3", "weight": 5},
//	      {"id": "e4", "source": "3", "target": "4", "weight": 1}
//	    ]
//	  },
//	  "sourceId": "1", "targetId": "4", "method": "jacobi"
//	}' localhost:50052 bellman.solver.v1.SolverService/Solve
package main

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/cache"
	"bellman/pkg/config"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/pkg/server"
	"bellman/services/solver-svc/internal/repository"
	"bellman/services/solver-svc/internal/service"
)

func main() {
	cfg, err := config.LoadWithServiceDefaults("solver-svc", 50052)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := repository.NewRepositories(ctx, &cfg.Database)
	cancel()
	if err != nil {
		logger.Fatal("failed to init trace storage", "error", err)
	}
	defer repos.Close()

	if repos.Persistent() {
		prometheus.MustRegister(metrics.NewPoolCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, repos.PoolStats))
	}

	// Кэш опционален: без него сервис работает, просто считает заново
	var solverCache *cache.SolverCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			defer baseCache.Close()
			solverCache = cache.NewSolverCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Solver cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	srv, err := server.NewWithOptions(cfg, &server.ServerOptions{Metrics: m})
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	solverService := service.NewSolverService(service.OptionsFromConfig(cfg), repos.Traces, solverCache, m)
	solverv1.RegisterSolverServiceServer(srv.GetEngine(), solverService)

	logger.Info("Starting solver service",
		"port", cfg.GRPC.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"default_method", cfg.Solver.DefaultMethod,
		"cache_enabled", solverCache != nil,
		"persistent_traces", repos.Persistent(),
	)

	if err := srv.Run(); err != nil {
		logger.Log.Error("server failed", "error", err)
	}
}
