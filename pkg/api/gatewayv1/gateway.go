// Package gatewayv1 declares bellman.gateway.v1.GatewayService, the browser
// facing Connect API. Solver procedures reuse the solverv1 messages; requests
// and responses travel as JSON through solverv1.Codec.
package gatewayv1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"bellman/pkg/api/solverv1"
)

// GatewayServiceName is the fully-qualified name of the service.
const GatewayServiceName = "bellman.gateway.v1.GatewayService"

// Procedure paths. Connect routes on these exact strings.
const (
	GatewayServiceSolveProcedure           = "/bellman.gateway.v1.GatewayService/Solve"
	GatewayServiceCompareProcedure         = "/bellman.gateway.v1.GatewayService/Compare"
	GatewayServiceReconstructPathProcedure = "/bellman.gateway.v1.GatewayService/ReconstructPath"
	GatewayServiceGetTraceProcedure        = "/bellman.gateway.v1.GatewayService/GetTrace"
	GatewayServiceListTracesProcedure      = "/bellman.gateway.v1.GatewayService/ListTraces"
	GatewayServiceDeleteTraceProcedure     = "/bellman.gateway.v1.GatewayService/DeleteTrace"
	GatewayServiceGetMethodsProcedure      = "/bellman.gateway.v1.GatewayService/GetMethods"
	GatewayServiceHealthProcedure          = "/bellman.gateway.v1.GatewayService/Health"
	GatewayServiceInfoProcedure            = "/bellman.gateway.v1.GatewayService/Info"
)

type HealthRequest struct{}

// ServiceHealth is the state of one backend as seen by the gateway.
type ServiceHealth struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string                    `json:"status"`
	Timestamp time.Time                 `json:"timestamp"`
	Services  map[string]*ServiceHealth `json:"services"`
}

type InfoRequest struct{}

type InfoResponse struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Environment   string    `json:"environment"`
	StartedAt     time.Time `json:"startedAt"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	Methods       []string  `json:"methods"`
	DefaultMethod string    `json:"defaultMethod"`
}

// GatewayServiceHandler is implemented by the gateway.
type GatewayServiceHandler interface {
	Solve(context.Context, *connect.Request[solverv1.SolveRequest]) (*connect.Response[solverv1.SolveResponse], error)
	Compare(context.Context, *connect.Request[solverv1.CompareRequest]) (*connect.Response[solverv1.CompareResponse], error)
	ReconstructPath(context.Context, *connect.Request[solverv1.PathRequest]) (*connect.Response[solverv1.PathResponse], error)
	GetTrace(context.Context, *connect.Request[solverv1.GetTraceRequest]) (*connect.Response[solverv1.SolveResponse], error)
	ListTraces(context.Context, *connect.Request[solverv1.ListTracesRequest]) (*connect.Response[solverv1.ListTracesResponse], error)
	DeleteTrace(context.Context, *connect.Request[solverv1.DeleteTraceRequest]) (*connect.Response[solverv1.DeleteTraceResponse], error)
	GetMethods(context.Context, *connect.Request[solverv1.GetMethodsRequest]) (*connect.Response[solverv1.GetMethodsResponse], error)
	Health(context.Context, *connect.Request[HealthRequest]) (*connect.Response[HealthResponse], error)
	Info(context.Context, *connect.Request[InfoRequest]) (*connect.Response[InfoResponse], error)
}

// NewGatewayServiceHandler builds an HTTP handler for every procedure and
// returns the path prefix to mount it on. The JSON codec is always installed;
// opts are applied after it.
func NewGatewayServiceHandler(svc GatewayServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(solverv1.Codec{})}, opts...)
	o := connect.WithHandlerOptions(opts...)

	routes := map[string]http.Handler{
		GatewayServiceSolveProcedure:           connect.NewUnaryHandler(GatewayServiceSolveProcedure, svc.Solve, o),
		GatewayServiceCompareProcedure:         connect.NewUnaryHandler(GatewayServiceCompareProcedure, svc.Compare, o),
		GatewayServiceReconstructPathProcedure: connect.NewUnaryHandler(GatewayServiceReconstructPathProcedure, svc.ReconstructPath, o),
		GatewayServiceGetTraceProcedure:        connect.NewUnaryHandler(GatewayServiceGetTraceProcedure, svc.GetTrace, o),
		GatewayServiceListTracesProcedure:      connect.NewUnaryHandler(GatewayServiceListTracesProcedure, svc.ListTraces, o),
		GatewayServiceDeleteTraceProcedure:     connect.NewUnaryHandler(GatewayServiceDeleteTraceProcedure, svc.DeleteTrace, o),
		GatewayServiceGetMethodsProcedure:      connect.NewUnaryHandler(GatewayServiceGetMethodsProcedure, svc.GetMethods, o),
		GatewayServiceHealthProcedure:          connect.NewUnaryHandler(GatewayServiceHealthProcedure, svc.Health, o),
		GatewayServiceInfoProcedure:            connect.NewUnaryHandler(GatewayServiceInfoProcedure, svc.Info, o),
	}

	return "/" + GatewayServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// GatewayServiceClient calls the gateway over Connect. Used by tests and Go
// consumers; the browser tool speaks the same JSON protocol.
type GatewayServiceClient struct {
	solve           *connect.Client[solverv1.SolveRequest, solverv1.SolveResponse]
	compare         *connect.Client[solverv1.CompareRequest, solverv1.CompareResponse]
	reconstructPath *connect.Client[solverv1.PathRequest, solverv1.PathResponse]
	getTrace        *connect.Client[solverv1.GetTraceRequest, solverv1.SolveResponse]
	listTraces      *connect.Client[solverv1.ListTracesRequest, solverv1.ListTracesResponse]
	deleteTrace     *connect.Client[solverv1.DeleteTraceRequest, solverv1.DeleteTraceResponse]
	getMethods      *connect.Client[solverv1.GetMethodsRequest, solverv1.GetMethodsResponse]
	health          *connect.Client[HealthRequest, HealthResponse]
	info            *connect.Client[InfoRequest, InfoResponse]
}

// NewGatewayServiceClient creates a client for the gateway at baseURL
// (for example http://localhost:8080).
func NewGatewayServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GatewayServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(solverv1.Codec{})}, opts...)
	o := connect.WithClientOptions(opts...)

	return &GatewayServiceClient{
		solve:           connect.NewClient[solverv1.SolveRequest, solverv1.SolveResponse](httpClient, baseURL+GatewayServiceSolveProcedure, o),
		compare:         connect.NewClient[solverv1.CompareRequest, solverv1.CompareResponse](httpClient, baseURL+GatewayServiceCompareProcedure, o),
		reconstructPath: connect.NewClient[solverv1.PathRequest, solverv1.PathResponse](httpClient, baseURL+GatewayServiceReconstructPathProcedure, o),
		getTrace:        connect.NewClient[solverv1.GetTraceRequest, solverv1.SolveResponse](httpClient, baseURL+GatewayServiceGetTraceProcedure, o),
		listTraces:      connect.NewClient[solverv1.ListTracesRequest, solverv1.ListTracesResponse](httpClient, baseURL+GatewayServiceListTracesProcedure, o),
		deleteTrace:     connect.NewClient[solverv1.DeleteTraceRequest, solverv1.DeleteTraceResponse](httpClient, baseURL+GatewayServiceDeleteTraceProcedure, o),
		getMethods:      connect.NewClient[solverv1.GetMethodsRequest, solverv1.GetMethodsResponse](httpClient, baseURL+GatewayServiceGetMethodsProcedure, o),
		health:          connect.NewClient[HealthRequest, HealthResponse](httpClient, baseURL+GatewayServiceHealthProcedure, o),
		info:            connect.NewClient[InfoRequest, InfoResponse](httpClient, baseURL+GatewayServiceInfoProcedure, o),
	}
}

func (c *GatewayServiceClient) Solve(ctx context.Context, req *connect.Request[solverv1.SolveRequest]) (*connect.Response[solverv1.SolveResponse], error) {
	return c.solve.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) Compare(ctx context.Context, req *connect.Request[solverv1.CompareRequest]) (*connect.Response[solverv1.CompareResponse], error) {
	return c.compare.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) ReconstructPath(ctx context.Context, req *connect.Request[solverv1.PathRequest]) (*connect.Response[solverv1.PathResponse], error) {
	return c.reconstructPath.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) GetTrace(ctx context.Context, req *connect.Request[solverv1.GetTraceRequest]) (*connect.Response[solverv1.SolveResponse], error) {
	return c.getTrace.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) ListTraces(ctx context.Context, req *connect.Request[solverv1.ListTracesRequest]) (*connect.Response[solverv1.ListTracesResponse], error) {
	return c.listTraces.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) DeleteTrace(ctx context.Context, req *connect.Request[solverv1.DeleteTraceRequest]) (*connect.Response[solverv1.DeleteTraceResponse], error) {
	return c.deleteTrace.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) GetMethods(ctx context.Context, req *connect.Request[solverv1.GetMethodsRequest]) (*connect.Response[solverv1.GetMethodsResponse], error) {
	return c.getMethods.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) Health(ctx context.Context, req *connect.Request[HealthRequest]) (*connect.Response[HealthResponse], error) {
	return c.health.CallUnary(ctx, req)
}

func (c *GatewayServiceClient) Info(ctx context.Context, req *connect.Request[InfoRequest]) (*connect.Response[InfoResponse], error) {
	return c.info.CallUnary(ctx, req)
}

// UnimplementedGatewayServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGatewayServiceHandler struct{}

func (UnimplementedGatewayServiceHandler) Solve(context.Context, *connect.Request[solverv1.SolveRequest]) (*connect.Response[solverv1.SolveResponse], error) {
	return nil, unimplemented("Solve")
}

func (UnimplementedGatewayServiceHandler) Compare(context.Context, *connect.Request[solverv1.CompareRequest]) (*connect.Response[solverv1.CompareResponse], error) {
	return nil, unimplemented("Compare")
}

func (UnimplementedGatewayServiceHandler) ReconstructPath(context.Context, *connect.Request[solverv1.PathRequest]) (*connect.Response[solverv1.PathResponse], error) {
	return nil, unimplemented("ReconstructPath")
}

func (UnimplementedGatewayServiceHandler) GetTrace(context.Context, *connect.Request[solverv1.GetTraceRequest]) (*connect.Response[solverv1.SolveResponse], error) {
	return nil, unimplemented("GetTrace")
}

func (UnimplementedGatewayServiceHandler) ListTraces(context.Context, *connect.Request[solverv1.ListTracesRequest]) (*connect.Response[solverv1.ListTracesResponse], error) {
	return nil, unimplemented("ListTraces")
}

func (UnimplementedGatewayServiceHandler) DeleteTrace(context.Context, *connect.Request[solverv1.DeleteTraceRequest]) (*connect.Response[solverv1.DeleteTraceResponse], error) {
	return nil, unimplemented("DeleteTrace")
}

func (UnimplementedGatewayServiceHandler) GetMethods(context.Context, *connect.Request[solverv1.GetMethodsRequest]) (*connect.Response[solverv1.GetMethodsResponse], error) {
	return nil, unimplemented("GetMethods")
}

func (UnimplementedGatewayServiceHandler) Health(context.Context, *connect.Request[HealthRequest]) (*connect.Response[HealthResponse], error) {
	return nil, unimplemented("Health")
}

func (UnimplementedGatewayServiceHandler) Info(context.Context, *connect.Request[InfoRequest]) (*connect.Response[InfoResponse], error) {
	return nil, unimplemented("Info")
}

func unimplemented(method string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(GatewayServiceName+"."+method+" is not implemented"))
}
