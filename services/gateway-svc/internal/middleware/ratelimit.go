package middleware

import (
	"context"
	"errors"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"

	"bellman/pkg/api/gatewayv1"
	"bellman/pkg/apperror"
	"bellman/pkg/logger"
	"bellman/pkg/ratelimit"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
)

// Заголовки лимита
const (
	RateLimitLimitHeader     = "X-Ratelimit-Limit"
	RateLimitRemainingHeader = "X-Ratelimit-Remaining"
	RetryAfterHeader         = "Retry-After"
)

// ProcedureCost стоимость процедур в единицах лимита.
// Не перечисленные процедуры не лимитируются.
var ProcedureCost = map[string]int{
	gatewayv1.GatewayServiceSolveProcedure:   1,
	gatewayv1.GatewayServiceCompareProcedure: 2,
}

// NewRateLimitInterceptor списывает стоимость решения с бюджета клиента.
// Ошибка хранилища лимита не блокирует запрос.
func NewRateLimitInterceptor(l ratelimit.Limiter, m *gwmetrics.GatewayMetrics) connect.UnaryInterceptorFunc {
	if m == nil {
		m = gwmetrics.Get()
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			cost, limited := ProcedureCost[procedure]
			if !limited {
				return next(ctx, req)
			}

			key := ClientKey(req)
			d, err := l.Allow(ctx, key, cost)
			if err != nil {
				logger.WithContext(ctx).Warn("Rate limit check failed", "error", err, "key", key)
				return next(ctx, req)
			}
			m.RecordRateLimit(procedure, d.Allowed)

			if !d.Allowed {
				logger.WithContext(ctx).Warn("Rate limit exceeded",
					"key", key,
					"procedure", procedure,
					"retry_after", d.RetryAfter,
				)
				cerr := ToConnectError(apperror.Newf(apperror.CodeRateLimited,
					"solve budget exhausted, retry in %s", d.RetryAfter.Round(time.Second)))
				var ce *connect.Error
				if errors.As(cerr, &ce) {
					ce.Meta().Set(RateLimitLimitHeader, strconv.Itoa(d.Limit))
					ce.Meta().Set(RateLimitRemainingHeader, strconv.Itoa(d.Remaining))
					ce.Meta().Set(RetryAfterHeader, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				}
				return nil, cerr
			}

			resp, err := next(ctx, req)
			if err == nil {
				resp.Header().Set(RateLimitLimitHeader, strconv.Itoa(d.Limit))
				resp.Header().Set(RateLimitRemainingHeader, strconv.Itoa(d.Remaining))
			}
			return resp, err
		}
	}
}

// ClientKey определяет клиента: первый X-Forwarded-For, X-Real-Ip, затем адрес соединения
func ClientKey(req connect.AnyRequest) string {
	if xff := req.Header().Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(req.Header().Get("X-Real-Ip")); ip != "" {
		return ip
	}

	addr := req.Peer().Addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}
