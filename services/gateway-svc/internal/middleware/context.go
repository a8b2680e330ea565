package middleware

import (
	"context"

	"github.com/google/uuid"

	"bellman/pkg/logger"
)

// RequestIDHeader заголовок с ID запроса (входящий и исходящий)
const RequestIDHeader = "X-Request-Id"

// GetRequestID извлекает request_id из контекста
func GetRequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// WithRequestID добавляет request_id в контекст; logger.WithContext его подхватит
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return logger.ContextWithRequestID(ctx, requestID)
}

// GenerateRequestID генерирует уникальный ID запроса
func GenerateRequestID() string {
	return uuid.NewString()
}

// requestIDFrom берёт ID из заголовка клиента или генерирует новый.
// Слишком длинные значения не принимаются.
func requestIDFrom(header string) string {
	if header != "" && len(header) <= 128 {
		return header
	}
	return GenerateRequestID()
}
