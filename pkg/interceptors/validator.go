package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"bellman/pkg/apperror"
)

// Validator интерфейс для валидируемых сообщений
type Validator interface {
	Validate() error
}

// ValidationInterceptor валидирует входящие запросы.
// *apperror.Error сохраняет свой gRPC код, прочие ошибки - InvalidArgument.
func ValidationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				var appErr *apperror.Error
				if !errors.As(err, &appErr) {
					err = apperror.Wrap(err, apperror.CodeInvalidArgument, "validation error: "+err.Error())
				}
				return nil, apperror.ToGRPC(err)
			}
		}

		return handler(ctx, req)
	}
}
