// Package main is the entry point for gateway-svc, the browser facing
// ConnectRPC front of solver-svc.
//
// The gateway serves bellman.gateway.v1.GatewayService over HTTP/1.1 and h2c
// with the JSON codec, so a UI can POST plain JSON:
//
//	curl -s localhost:8080/bellman.gateway.v1.GatewayService/Solve \
//	  -H 'Content-Type: application/json' \
//	  -d '{"graph":{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"id":"e","source":"a","target":"b","weight":3}]},
//	       "sourceId":"a","targetId":"b","method":"jacobi"}'
//
// Solve costs one unit of the per-client budget and Compare costs two
// (rate_limit.requests per rate_limit.window).
//
// Plain HTTP endpoints: /health (liveness), /ready (solver-svc reachable),
// /metrics (Prometheus, when metrics are enabled), /docs (Swagger UI over the
// embedded OpenAPI description).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"bellman/gen/openapi"
	"bellman/pkg/api/gatewayv1"
	"bellman/pkg/config"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/pkg/ratelimit"
	"bellman/pkg/swagger"
	"bellman/pkg/telemetry"
	"bellman/services/gateway-svc/internal/clients"
	"bellman/services/gateway-svc/internal/handlers"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
	"bellman/services/gateway-svc/internal/middleware"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadWithServiceDefaults("gateway-svc", 8080)
	if err != nil {
		logger.Init("error")
		logger.Fatal("Failed to load config", "error", err)
	}

	// Инициализируем логгер
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

	logger.Log.Info("Starting Gateway Service (ConnectRPC)",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("Failed to init tracing", "error", err)
	}

	m := gwmetrics.Init()

	// gRPC клиент к solver-svc
	clientManager, err := clients.NewManager(ctx, &clients.Config{
		Solver: cfg.Services.Solver,
		Retry:  cfg.Retry,
	}, m)
	if err != nil {
		logger.Fatal("Failed to initialize clients", "error", err)
	}
	defer clientManager.Close()

	gatewayHandler := handlers.NewGatewayHandler(clientManager, cfg, m)

	// Бюджет решений на клиента
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(ratelimit.FromConfig(&cfg.RateLimit))
		if err != nil {
			logger.Fatal("Failed to create rate limiter", "error", err)
		}
		defer limiter.Close()
		logger.Log.Info("Rate limiting enabled",
			"backend", cfg.RateLimit.Backend,
			"requests", cfg.RateLimit.Requests,
			"window", cfg.RateLimit.Window,
		)
	}

	mux := http.NewServeMux()

	// ConnectRPC handler с interceptors
	mux.Handle(gatewayv1.NewGatewayServiceHandler(gatewayHandler, middleware.Interceptors(m, limiter)))

	// Health endpoints (обычный HTTP для k8s probes)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ready", handleReady(gatewayHandler))

	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", metrics.Handler())
	}

	if cfg.HTTP.Docs.Enabled {
		if err := registerDocs(mux, cfg.HTTP.Docs); err != nil {
			logger.Fatal("Failed to load OpenAPI spec", "error", err)
		}
		logger.Log.Info("API docs enabled", "path", cfg.HTTP.Docs.Path)
	}

	var httpHandler http.Handler = mux
	if cfg.HTTP.CORS.Enabled {
		httpHandler = middleware.CORS(cfg.HTTP.CORS)(mux)
	}

	// HTTP сервер с поддержкой HTTP/2 без TLS
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      h2c.NewHandler(httpHandler, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Log.Info("Gateway listening",
			"port", cfg.HTTP.Port,
			"protocol", "HTTP/1.1 + H2C (ConnectRPC)",
			"solver", cfg.Services.Solver.Address(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Tracer shutdown error", "error", err)
	}

	logger.Log.Info("Server stopped")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Ошибку записи не логируем: ответ уже начат
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleReady(h *handlers.GatewayHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, deps := h.Ready(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ready":        ready,
			"dependencies": deps,
		})
	}
}

func registerDocs(mux *http.ServeMux, cfg config.DocsConfig) error {
	specJSON, err := openapi.GetSpec()
	if err != nil {
		return err
	}
	specYAML, err := openapi.GetSpecYAML()
	if err != nil {
		return err
	}

	docs := swagger.DefaultConfig()
	if cfg.Path != "" {
		docs.BasePath = cfg.Path
	}
	if cfg.Title != "" {
		docs.Title = cfg.Title
	}
	swagger.RegisterRoutes(mux, docs, swagger.Spec{JSON: specJSON, YAML: specYAML})
	return nil
}
