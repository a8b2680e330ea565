package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"bellman/pkg/logger"
)

// NewLoggingInterceptor присваивает запросу ID и логирует результат
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			requestID := requestIDFrom(req.Header().Get(RequestIDHeader))
			ctx = WithRequestID(ctx, requestID)

			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			logFields := []any{
				"procedure", req.Spec().Procedure,
				"duration_ms", duration.Milliseconds(),
				"peer", req.Peer().Addr,
			}

			if err != nil {
				logFields = append(logFields,
					"code", connect.CodeOf(err).String(),
					"error", err.Error(),
				)
				if connect.CodeOf(err) == connect.CodeInvalidArgument || connect.CodeOf(err) == connect.CodeNotFound {
					logger.WithContext(ctx).Warn("Gateway request rejected", logFields...)
				} else {
					logger.WithContext(ctx).Error("Gateway request failed", logFields...)
				}
				return resp, err
			}

			resp.Header().Set(RequestIDHeader, requestID)
			logger.WithContext(ctx).Info("Gateway request completed", logFields...)
			return resp, nil
		}
	}
}
