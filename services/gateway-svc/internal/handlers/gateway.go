package handlers

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"bellman/pkg/api/gatewayv1"
	"bellman/pkg/api/solverv1"
	"bellman/pkg/config"
	"bellman/pkg/logger"
	"bellman/services/gateway-svc/internal/clients"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
)

const statusDegraded = "DEGRADED"

// GatewayHandler реализует gatewayv1.GatewayServiceHandler
type GatewayHandler struct {
	gatewayv1.UnimplementedGatewayServiceHandler

	clients   *clients.Manager
	config    *config.Config
	startedAt time.Time

	solver *SolverHandler
}

// NewGatewayHandler создаёт handler
func NewGatewayHandler(cm *clients.Manager, cfg *config.Config, m *gwmetrics.GatewayMetrics) *GatewayHandler {
	return &GatewayHandler{
		clients:   cm,
		config:    cfg,
		startedAt: time.Now(),
		solver:    NewSolverHandler(cm, m),
	}
}

// ==================== Health & Info ====================

func (h *GatewayHandler) Health(
	ctx context.Context,
	_ *connect.Request[gatewayv1.HealthRequest],
) (*connect.Response[gatewayv1.HealthResponse], error) {
	healthResults := h.clients.CheckHealth(ctx)

	services := make(map[string]*gatewayv1.ServiceHealth, len(healthResults))
	allHealthy := true

	for name, health := range healthResults {
		services[name] = &gatewayv1.ServiceHealth{
			Name:      health.Name,
			Status:    health.Status,
			Address:   health.Address,
			LatencyMs: health.LatencyMs,
			Error:     health.Error,
		}
		if health.Status != clients.StatusHealthy {
			allHealthy = false
		}
	}

	status := clients.StatusHealthy
	if !allHealthy {
		status = statusDegraded
	}

	return connect.NewResponse(&gatewayv1.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
	}), nil
}

// Ready сообщает, готовы ли все backend сервисы (для /ready)
func (h *GatewayHandler) Ready(ctx context.Context) (bool, map[string]bool) {
	deps := make(map[string]bool)
	ready := true
	for name, health := range h.clients.CheckHealth(ctx) {
		ok := health.Status == clients.StatusHealthy
		deps[name] = ok
		if !ok {
			ready = false
		}
	}
	return ready, deps
}

func (h *GatewayHandler) Info(
	ctx context.Context,
	_ *connect.Request[gatewayv1.InfoRequest],
) (*connect.Response[gatewayv1.InfoResponse], error) {
	resp := &gatewayv1.InfoResponse{
		Name:          h.config.App.Name,
		Version:       h.config.App.Version,
		Environment:   h.config.App.Environment,
		StartedAt:     h.startedAt.UTC(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		DefaultMethod: h.config.Solver.DefaultMethod,
	}

	// Недоступный backend не ломает Info: методы просто не перечисляются
	methods, err := h.clients.Solver().GetMethods(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to fetch solver methods", "error", err)
		return connect.NewResponse(resp), nil
	}
	for _, m := range methods.Methods {
		resp.Methods = append(resp.Methods, m.Method)
	}
	if methods.DefaultMethod != "" {
		resp.DefaultMethod = methods.DefaultMethod
	}

	return connect.NewResponse(resp), nil
}

// ==================== Solver ====================

func (h *GatewayHandler) Solve(
	ctx context.Context,
	req *connect.Request[solverv1.SolveRequest],
) (*connect.Response[solverv1.SolveResponse], error) {
	return h.solver.Solve(ctx, req)
}

func (h *GatewayHandler) Compare(
	ctx context.Context,
	req *connect.Request[solverv1.CompareRequest],
) (*connect.Response[solverv1.CompareResponse], error) {
	return h.solver.Compare(ctx, req)
}

func (h *GatewayHandler) ReconstructPath(
	ctx context.Context,
	req *connect.Request[solverv1.PathRequest],
) (*connect.Response[solverv1.PathResponse], error) {
	return h.solver.ReconstructPath(ctx, req)
}

func (h *GatewayHandler) GetMethods(
	ctx context.Context,
	req *connect.Request[solverv1.GetMethodsRequest],
) (*connect.Response[solverv1.GetMethodsResponse], error) {
	return h.solver.GetMethods(ctx, req)
}

// ==================== Traces ====================

func (h *GatewayHandler) GetTrace(
	ctx context.Context,
	req *connect.Request[solverv1.GetTraceRequest],
) (*connect.Response[solverv1.SolveResponse], error) {
	return h.solver.GetTrace(ctx, req)
}

func (h *GatewayHandler) ListTraces(
	ctx context.Context,
	req *connect.Request[solverv1.ListTracesRequest],
) (*connect.Response[solverv1.ListTracesResponse], error) {
	return h.solver.ListTraces(ctx, req)
}

func (h *GatewayHandler) DeleteTrace(
	ctx context.Context,
	req *connect.Request[solverv1.DeleteTraceRequest],
) (*connect.Response[solverv1.DeleteTraceResponse], error) {
	return h.solver.DeleteTrace(ctx, req)
}
