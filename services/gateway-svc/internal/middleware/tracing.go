package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "gateway-svc"

// NewTracingInterceptor открывает серверный span на каждый вызов.
// Родительский контекст берётся из HTTP заголовков (traceparent).
func NewTracingInterceptor() connect.UnaryInterceptorFunc {
	tracer := otel.Tracer(tracerName)

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header()))

			procedure := req.Spec().Procedure
			ctx, span := tracer.Start(ctx, procedure,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("rpc.system", "connect_rpc"),
				attribute.String("rpc.service", ServiceOf(procedure)),
				attribute.String("rpc.method", MethodOf(procedure)),
			)

			resp, err := next(ctx, req)

			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.String("rpc.connect_rpc.error_code", connect.CodeOf(err).String()))
				if code := ErrorCodeOf(err); code != "" {
					span.SetAttributes(attribute.String("app.error_code", string(code)))
				}
				span.RecordError(err)
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}

// ServiceOf возвращает имя сервиса из "/pkg.Service/Method"
func ServiceOf(procedure string) string {
	procedure = strings.TrimPrefix(procedure, "/")
	if i := strings.LastIndex(procedure, "/"); i >= 0 {
		return procedure[:i]
	}
	return procedure
}

// MethodOf возвращает имя метода из "/pkg.Service/Method"
func MethodOf(procedure string) string {
	if i := strings.LastIndex(procedure, "/"); i >= 0 {
		return procedure[i+1:]
	}
	return procedure
}
