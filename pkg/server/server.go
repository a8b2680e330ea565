package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"bellman/pkg/config"
	"bellman/pkg/interceptors"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/pkg/telemetry"
)

const shutdownTimeout = 30 * time.Second

// GRPCServer обёртка над grpc.Server
type GRPCServer struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	config      *config.Config
	metrics     *metrics.Metrics
	telemetry   *telemetry.Provider
}

// ServerOptions дополнительные опции сервера
type ServerOptions struct {
	// Metrics - nil означает глобальные метрики
	Metrics *metrics.Metrics
	// ExtraInterceptors выполняются после встроенной цепочки
	ExtraInterceptors []grpc.UnaryServerInterceptor
}

// New создаёт новый gRPC сервер
func New(cfg *config.Config) (*GRPCServer, error) {
	return NewWithOptions(cfg, nil)
}

// NewWithOptions создаёт сервер с дополнительными опциями
func NewWithOptions(cfg *config.Config, opts *ServerOptions) (*GRPCServer, error) {
	if opts == nil {
		opts = &ServerOptions{}
	}

	m := opts.Metrics
	if m == nil && cfg.Metrics.Enabled {
		m = metrics.Get()
	}

	chain := interceptors.UnaryServerInterceptors(&interceptors.ServerConfig{
		ServiceName:   cfg.App.Name,
		EnableTracing: cfg.Tracing.Enabled,
		Metrics:       m,
	})
	chain = append(chain, opts.ExtraInterceptors...)

	serverOpts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     cfg.GRPC.KeepAlive.MaxConnectionIdle,
			MaxConnectionAge:      cfg.GRPC.KeepAlive.MaxConnectionAge,
			MaxConnectionAgeGrace: cfg.GRPC.KeepAlive.MaxConnectionAgeGrace,
			Time:                  cfg.GRPC.KeepAlive.Time,
			Timeout:               cfg.GRPC.KeepAlive.Timeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(chain...),
	}
	// Нулевые лимиты оставляют значения grpc по умолчанию
	if cfg.GRPC.MaxRecvMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(cfg.GRPC.MaxRecvMsgSize))
	}
	if cfg.GRPC.MaxSendMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxSendMsgSize(cfg.GRPC.MaxSendMsgSize))
	}
	if cfg.GRPC.MaxConcurrentConn > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentConn)))
	}

	if cfg.GRPC.TLS.Enabled {
		creds, err := credentials.NewServerTLSFromFile(cfg.GRPC.TLS.CertFile, cfg.GRPC.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	s := grpc.NewServer(serverOpts...)

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, h)

	if cfg.IsDevelopment() {
		reflection.Register(s)
		logger.Log.Debug("gRPC reflection enabled")
	}

	return &GRPCServer{
		server:      s,
		health:      h,
		serviceName: cfg.App.Name,
		config:      cfg,
		metrics:     m,
	}, nil
}

// GetEngine возвращает *grpc.Server для регистрации сервисов
func (s *GRPCServer) GetEngine() *grpc.Server {
	return s.server
}

// Run слушает порт из конфигурации и блокируется до SIGINT/SIGTERM
func (s *GRPCServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.config.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(ctx, lis)
}

// Serve обслуживает lis до отмены ctx, затем останавливается gracefully.
// Метрики и телеметрия поднимаются и гасятся вместе с сервером.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	s.initTelemetry(ctx)

	g, gctx := errgroup.WithContext(ctx)

	var metricsSrv *http.Server
	if s.config.Metrics.Enabled && s.metrics != nil {
		metricsSrv = metrics.NewMetricsServer(s.config.Metrics.Port, s.config.Metrics.Path, s.metrics.Handler())
		s.metrics.SetServiceInfo(s.config.App.Version, s.config.App.Environment)

		g.Go(func() error {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		s.health.SetServingStatus(s.serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
		logger.Log.Info("Starting gRPC server",
			"service", s.serviceName,
			"addr", lis.Addr().String(),
			"environment", s.config.App.Environment,
			"version", s.config.App.Version,
		)
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down", "service", s.serviceName)
		s.shutdown(metricsSrv)
		return nil
	})

	return g.Wait()
}

func (s *GRPCServer) initTelemetry(ctx context.Context) {
	if !s.config.Tracing.Enabled {
		return
	}

	serviceName := s.config.Tracing.ServiceName
	if serviceName == "" {
		serviceName = s.serviceName
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     true,
		Endpoint:    s.config.Tracing.Endpoint,
		ServiceName: serviceName,
		Version:     s.config.App.Version,
		Environment: s.config.App.Environment,
		SampleRate:  s.config.Tracing.SampleRate,
	})
	if err != nil {
		logger.Log.Warn("Failed to init telemetry", "error", err)
		return
	}

	s.telemetry = tp
	logger.Log.Info("Telemetry initialized",
		"endpoint", s.config.Tracing.Endpoint,
		"sample_rate", s.config.Tracing.SampleRate,
	)
}

func (s *GRPCServer) shutdown(metricsSrv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.health.SetServingStatus(s.serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("Server stopped gracefully")
	case <-ctx.Done():
		logger.Log.Warn("Forcing server stop")
		s.server.Stop()
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Log.Warn("Failed to shutdown metrics server", "error", err)
		}
	}

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			logger.Log.Warn("Failed to shutdown telemetry", "error", err)
		}
	}
}

// SetServingStatus устанавливает статус сервиса
func (s *GRPCServer) SetServingStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus(s.serviceName, status)
}

// Stop останавливает сервер немедленно
func (s *GRPCServer) Stop() {
	s.server.Stop()
}

// GracefulStop останавливает сервер gracefully
func (s *GRPCServer) GracefulStop() {
	s.server.GracefulStop()
}
