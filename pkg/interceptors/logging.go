package interceptors

import (
	"context"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"

	"bellman/pkg/logger"
)

// InterceptorLogger адаптирует slog к logging.Logger из go-grpc-middleware.
// nil - глобальный logger.Log на момент вызова.
func InterceptorLogger(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		target := l
		if target == nil {
			target = logger.Log
		}
		target.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// LoggingInterceptor логирует завершение каждого вызова с кодом и длительностью
func LoggingInterceptor(l *slog.Logger) grpc.UnaryServerInterceptor {
	return logging.UnaryServerInterceptor(
		InterceptorLogger(l),
		logging.WithLogOnEvents(logging.FinishCall),
		logging.WithFieldsFromContext(requestIDFields),
	)
}

func requestIDFields(ctx context.Context) logging.Fields {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return logging.Fields{"request_id", id}
	}
	return nil
}
