package handlers

import (
	"context"

	"connectrpc.com/connect"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/pkg/logger"
	"bellman/services/gateway-svc/internal/clients"
	gwmetrics "bellman/services/gateway-svc/internal/metrics"
	"bellman/services/gateway-svc/internal/middleware"
)

const solverService = "solver"

// SolverHandler проксирует вызовы solver-svc
type SolverHandler struct {
	clients *clients.Manager
	metrics *gwmetrics.GatewayMetrics
}

// NewSolverHandler создаёт handler
func NewSolverHandler(cm *clients.Manager, m *gwmetrics.GatewayMetrics) *SolverHandler {
	if m == nil {
		m = gwmetrics.Get()
	}
	return &SolverHandler{
		clients: cm,
		metrics: m,
	}
}

// fail регистрирует ошибку backend и переводит её в connect.Error
func (h *SolverHandler) fail(ctx context.Context, op string, err error) error {
	code := apperror.Code(err)
	h.metrics.RecordError(string(code), solverService)
	logger.WithContext(ctx).Debug("Solver call failed", "op", op, "code", code, "error", err)
	return middleware.ToConnectError(err)
}

func (h *SolverHandler) recordTrace(result *solverv1.SolveResult) {
	if result != nil {
		h.metrics.RecordTrace(result.Method, len(result.Steps))
	}
}

func (h *SolverHandler) Solve(
	ctx context.Context,
	req *connect.Request[solverv1.SolveRequest],
) (*connect.Response[solverv1.SolveResponse], error) {
	resp, err := h.clients.Solver().Solve(ctx, req.Msg)
	if err != nil {
		return nil, h.fail(ctx, "Solve", err)
	}
	h.recordTrace(resp.Result)

	method := ""
	if resp.Result != nil {
		method = resp.Result.Method
	}
	logger.WithContext(ctx).Info("Solved",
		"method", method,
		"path_found", resp.PathFound,
		"cache_hit", resp.CacheHit,
		"trace_id", resp.TraceId,
	)
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) Compare(
	ctx context.Context,
	req *connect.Request[solverv1.CompareRequest],
) (*connect.Response[solverv1.CompareResponse], error) {
	resp, err := h.clients.Solver().Compare(ctx, req.Msg)
	if err != nil {
		return nil, h.fail(ctx, "Compare", err)
	}
	h.recordTrace(resp.GaussSeidel)
	h.recordTrace(resp.Jacobi)

	if !resp.ValuesAgree || !resp.PredecessorsAgree {
		logger.WithContext(ctx).Warn("Methods disagree",
			"values_agree", resp.ValuesAgree,
			"predecessors_agree", resp.PredecessorsAgree,
			"mismatched", resp.MismatchedNodes,
		)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) ReconstructPath(
	ctx context.Context,
	req *connect.Request[solverv1.PathRequest],
) (*connect.Response[solverv1.PathResponse], error) {
	resp, err := h.clients.Solver().ReconstructPath(ctx, req.Msg)
	if err != nil {
		return nil, h.fail(ctx, "ReconstructPath", err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) GetMethods(
	ctx context.Context,
	_ *connect.Request[solverv1.GetMethodsRequest],
) (*connect.Response[solverv1.GetMethodsResponse], error) {
	resp, err := h.clients.Solver().GetMethods(ctx)
	if err != nil {
		return nil, h.fail(ctx, "GetMethods", err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) GetTrace(
	ctx context.Context,
	req *connect.Request[solverv1.GetTraceRequest],
) (*connect.Response[solverv1.SolveResponse], error) {
	resp, err := h.clients.Solver().GetTrace(ctx, req.Msg.Id)
	if err != nil {
		return nil, h.fail(ctx, "GetTrace", err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) ListTraces(
	ctx context.Context,
	req *connect.Request[solverv1.ListTracesRequest],
) (*connect.Response[solverv1.ListTracesResponse], error) {
	resp, err := h.clients.Solver().ListTraces(ctx, req.Msg)
	if err != nil {
		return nil, h.fail(ctx, "ListTraces", err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) DeleteTrace(
	ctx context.Context,
	req *connect.Request[solverv1.DeleteTraceRequest],
) (*connect.Response[solverv1.DeleteTraceResponse], error) {
	deleted, err := h.clients.Solver().DeleteTrace(ctx, req.Msg.Id)
	if err != nil {
		return nil, h.fail(ctx, "DeleteTrace", err)
	}
	return connect.NewResponse(&solverv1.DeleteTraceResponse{Deleted: deleted}), nil
}
