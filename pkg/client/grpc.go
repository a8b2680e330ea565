package client

import (
	"context"
	"fmt"
	"math"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/config"
	"bellman/pkg/telemetry"
)

// ClientConfig параметры gRPC соединения
type ClientConfig struct {
	Address string
	// Timeout на один вызов, 0 - без ограничения
	Timeout time.Duration

	MaxRetries        int
	RetryBackoff      time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	TLS    bool
	CAFile string

	EnableTracing bool
}

// ConfigFromEndpoint собирает ClientConfig из секций services.* и retry
func ConfigFromEndpoint(ep config.ServiceEndpoint, retry config.RetryConfig) ClientConfig {
	cfg := ClientConfig{
		Address:           ep.Address(),
		Timeout:           ep.Timeout,
		MaxRetries:        ep.MaxRetries,
		RetryBackoff:      ep.RetryBackoff,
		MaxBackoff:        retry.MaxBackoff,
		BackoffMultiplier: retry.BackoffMultiplier,
		TLS:               ep.TLS,
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = retry.MaxAttempts
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = retry.InitialBackoff
	}
	return cfg
}

// NewGRPCClient создаёт соединение с retry, JSON кодеком и опциональной трассировкой
func NewGRPCClient(cfg ClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	retryOpts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(backoff(cfg.RetryBackoff, cfg.MaxBackoff, cfg.BackoffMultiplier)),
		grpc_retry.WithCodes(codes.Unavailable, codes.Aborted, codes.ResourceExhausted),
		grpc_retry.WithMax(uint(max(cfg.MaxRetries, 0))),
	}

	unary := []grpc.UnaryClientInterceptor{grpc_retry.UnaryClientInterceptor(retryOpts...)}
	if cfg.EnableTracing {
		unary = append([]grpc.UnaryClientInterceptor{telemetry.UnaryClientInterceptor()}, unary...)
	}

	creds := insecure.NewCredentials()
	if cfg.TLS {
		if cfg.CAFile != "" {
			c, err := credentials.NewClientTLSFromFile(cfg.CAFile, "")
			if err != nil {
				return nil, fmt.Errorf("load CA file: %w", err)
			}
			creds = c
		} else {
			creds = credentials.NewClientTLSFromCert(nil, "")
		}
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(unary...),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(solverv1.CodecName),
			grpc.MaxCallRecvMsgSize(64*1024*1024), // Jacobi таблица растёт как n^2
			grpc.MaxCallSendMsgSize(64*1024*1024),
		),
	}
	dialOpts = append(dialOpts, extra...)

	return grpc.NewClient(cfg.Address, dialOpts...)
}

// backoff - экспоненциальная задержка с потолком
func backoff(initial, ceiling time.Duration, multiplier float64) grpc_retry.BackoffFunc {
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return func(_ context.Context, attempt uint) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt)))
		if ceiling > 0 && d > ceiling {
			return ceiling
		}
		return d
	}
}
