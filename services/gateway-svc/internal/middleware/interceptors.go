package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"connectrpc.com/connect"

	"bellman/pkg/apperror"
	"bellman/pkg/ratelimit"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
)

// Validator сообщения с проверкой формы (solverv1 запросы)
type Validator interface {
	Validate() error
}

// Interceptors собирает цепочку в порядке применения: трассировка снаружи,
// затем логирование, метрики, лимит и валидация. limiter может быть nil.
func Interceptors(m *gwmetrics.GatewayMetrics, limiter ratelimit.Limiter) connect.Option {
	chain := []connect.Interceptor{
		NewTracingInterceptor(),
		NewLoggingInterceptor(),
		NewMetricsInterceptor(m),
	}
	if limiter != nil {
		chain = append(chain, NewRateLimitInterceptor(limiter, m))
	}
	chain = append(chain, NewValidationInterceptor())
	return connect.WithInterceptors(chain...)
}

// NewMetricsInterceptor собирает метрики запросов
func NewMetricsInterceptor(m *gwmetrics.GatewayMetrics) connect.UnaryInterceptorFunc {
	if m == nil {
		m = gwmetrics.Get()
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			m.IncActiveRequests()
			defer m.DecActiveRequests()

			start := time.Now()
			resp, err := next(ctx, req)

			status := "ok"
			if err != nil {
				status = connect.CodeOf(err).String()
			}
			m.RecordRequest(req.Spec().Procedure, status, time.Since(start))

			return resp, err
		}
	}
}

// NewValidationInterceptor отклоняет некорректные запросы до обращения к backend
func NewValidationInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if v, ok := req.Any().(Validator); ok {
				if err := v.Validate(); err != nil {
					var appErr *apperror.Error
					if !errors.As(err, &appErr) {
						appErr = apperror.Wrap(err, apperror.CodeInvalidArgument, "validation error: "+err.Error())
					}
					return nil, ToConnectError(appErr)
				}
			}
			return next(ctx, req)
		}
	}
}

// Заголовки connect.Error с деталями прикладной ошибки
const (
	ErrorCodeHeader  = "X-Error-Code"
	ErrorFieldHeader = "X-Error-Field"
)

// ToConnectError переводит ошибку backend в connect.Error.
// Код apperror и поле уходят клиенту в метаданных.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}

	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return connect.NewError(connect.CodeInternal, err)
	}

	cerr = connect.NewError(connect.Code(appErr.GRPCCode()), errors.New(appErr.Message))
	cerr.Meta().Set(ErrorCodeHeader, string(appErr.Code))
	if appErr.Field != "" {
		cerr.Meta().Set(ErrorFieldHeader, appErr.Field)
	}
	return cerr
}

// ErrorCodeOf достаёт код apperror из connect.Error (на стороне клиента)
func ErrorCodeOf(err error) apperror.ErrorCode {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return ""
	}
	return apperror.ErrorCode(strings.TrimSpace(cerr.Meta().Get(ErrorCodeHeader)))
}
