package interceptors

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"

	"bellman/pkg/apperror"
	"bellman/pkg/logger"
)

// RecoveryInterceptor превращает панику обработчика в codes.Internal
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return recovery.UnaryServerInterceptor(
		recovery.WithRecoveryHandlerContext(recoverPanic),
	)
}

func recoverPanic(ctx context.Context, p any) error {
	logger.WithContext(ctx).Error("panic recovered",
		"panic", fmt.Sprint(p),
		"stack", string(debug.Stack()),
	)
	return apperror.NewCritical(apperror.CodeInternal, "internal error").GRPCStatus().Err()
}
