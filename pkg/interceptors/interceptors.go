package interceptors

import (
	"log/slog"

	"google.golang.org/grpc"

	"bellman/pkg/metrics"
	"bellman/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	ServiceName   string
	EnableTracing bool
	// Metrics - nil означает глобальные метрики
	Metrics *metrics.Metrics
	// Logger - nil означает logger.Log
	Logger *slog.Logger
}

// UnaryServerInterceptors возвращает цепочку unary интерсепторов в порядке вызова:
// recovery, request id, tracing, metrics, logging, validation.
func UnaryServerInterceptors(cfg *ServerConfig) []grpc.UnaryServerInterceptor {
	if cfg == nil {
		cfg = &ServerConfig{}
	}

	chain := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		RequestIDInterceptor(),
	}

	if cfg.EnableTracing {
		chain = append(chain, telemetry.UnaryServerInterceptor())
	}

	chain = append(chain,
		MetricsInterceptor(cfg.Metrics),
		LoggingInterceptor(cfg.Logger),
		// Валидация последней, чтобы отказ попал в логи и метрики
		ValidationInterceptor(),
	)

	return chain
}

// ServerOption собирает цепочку в grpc.ServerOption
func ServerOption(cfg *ServerConfig) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(UnaryServerInterceptors(cfg)...)
}
