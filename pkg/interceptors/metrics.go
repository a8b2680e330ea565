package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"bellman/pkg/metrics"
)

// MetricsInterceptor записывает количество, длительность и in-flight запросов
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		mm := m
		if mm == nil {
			mm = metrics.Get()
		}

		done := metrics.InFlight(mm.GRPCRequestsInFlight)
		defer done()

		start := time.Now()
		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		mm.RecordGRPCRequest(info.FullMethod, st.Code().String(), time.Since(start))

		return resp, err
	}
}
