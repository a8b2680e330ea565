package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"bellman/pkg/logger"
)

// RequestIDHeader - ключ metadata с идентификатором запроса
const RequestIDHeader = "x-request-id"

// RequestIDInterceptor берёт x-request-id из metadata или генерирует новый
// и кладёт его в контекст и в заголовки ответа.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := requestIDFromMetadata(ctx)
		if id == "" {
			id = uuid.NewString()
		}

		ctx = logger.ContextWithRequestID(ctx, id)
		// SetHeader падает вне реального gRPC транспорта, это не ошибка запроса
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		return handler(ctx, req)
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(RequestIDHeader); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
