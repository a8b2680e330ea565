package solverv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "bellman.solver.v1.SolverService"

const (
	SolverService_Solve_FullMethodName           = "/bellman.solver.v1.SolverService/Solve"
	SolverService_Compare_FullMethodName         = "/bellman.solver.v1.SolverService/Compare"
	SolverService_ReconstructPath_FullMethodName = "/bellman.solver.v1.SolverService/ReconstructPath"
	SolverService_GetTrace_FullMethodName        = "/bellman.solver.v1.SolverService/GetTrace"
	SolverService_ListTraces_FullMethodName      = "/bellman.solver.v1.SolverService/ListTraces"
	SolverService_DeleteTrace_FullMethodName     = "/bellman.solver.v1.SolverService/DeleteTrace"
	SolverService_GetMethods_FullMethodName      = "/bellman.solver.v1.SolverService/GetMethods"
)

// SolverServiceServer is the server API for SolverService.
type SolverServiceServer interface {
	Solve(context.Context, *SolveRequest) (*SolveResponse, error)
	Compare(context.Context, *CompareRequest) (*CompareResponse, error)
	ReconstructPath(context.Context, *PathRequest) (*PathResponse, error)
	GetTrace(context.Context, *GetTraceRequest) (*SolveResponse, error)
	ListTraces(context.Context, *ListTracesRequest) (*ListTracesResponse, error)
	DeleteTrace(context.Context, *DeleteTraceRequest) (*DeleteTraceResponse, error)
	GetMethods(context.Context, *GetMethodsRequest) (*GetMethodsResponse, error)
}

// UnimplementedSolverServiceServer must be embedded by implementations so
// adding methods stays backwards compatible.
type UnimplementedSolverServiceServer struct{}

func (UnimplementedSolverServiceServer) Solve(context.Context, *SolveRequest) (*SolveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Solve not implemented")
}
func (UnimplementedSolverServiceServer) Compare(context.Context, *CompareRequest) (*CompareResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Compare not implemented")
}
func (UnimplementedSolverServiceServer) ReconstructPath(context.Context, *PathRequest) (*PathResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReconstructPath not implemented")
}
func (UnimplementedSolverServiceServer) GetTrace(context.Context, *GetTraceRequest) (*SolveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTrace not implemented")
}
func (UnimplementedSolverServiceServer) ListTraces(context.Context, *ListTracesRequest) (*ListTracesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTraces not implemented")
}
func (UnimplementedSolverServiceServer) DeleteTrace(context.Context, *DeleteTraceRequest) (*DeleteTraceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteTrace not implemented")
}
func (UnimplementedSolverServiceServer) GetMethods(context.Context, *GetMethodsRequest) (*GetMethodsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMethods not implemented")
}

// RegisterSolverServiceServer registers srv on s.
func RegisterSolverServiceServer(s grpc.ServiceRegistrar, srv SolverServiceServer) {
	s.RegisterService(&SolverService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method into a grpc.MethodDesc handler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(SolverServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SolverServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SolverServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SolverService_ServiceDesc is the grpc.ServiceDesc for SolverService.
var SolverService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SolverServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Solve",
			Handler:    unaryHandler(SolverService_Solve_FullMethodName, SolverServiceServer.Solve),
		},
		{
			MethodName: "Compare",
			Handler:    unaryHandler(SolverService_Compare_FullMethodName, SolverServiceServer.Compare),
		},
		{
			MethodName: "ReconstructPath",
			Handler:    unaryHandler(SolverService_ReconstructPath_FullMethodName, SolverServiceServer.ReconstructPath),
		},
		{
			MethodName: "GetTrace",
			Handler:    unaryHandler(SolverService_GetTrace_FullMethodName, SolverServiceServer.GetTrace),
		},
		{
			MethodName: "ListTraces",
			Handler:    unaryHandler(SolverService_ListTraces_FullMethodName, SolverServiceServer.ListTraces),
		},
		{
			MethodName: "DeleteTrace",
			Handler:    unaryHandler(SolverService_DeleteTrace_FullMethodName, SolverServiceServer.DeleteTrace),
		},
		{
			MethodName: "GetMethods",
			Handler:    unaryHandler(SolverService_GetMethods_FullMethodName, SolverServiceServer.GetMethods),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bellman/solver/v1/solver.json",
}

// SolverServiceClient is the client API for SolverService.
type SolverServiceClient interface {
	Solve(ctx context.Context, in *SolveRequest, opts ...grpc.CallOption) (*SolveResponse, error)
	Compare(ctx context.Context, in *CompareRequest, opts ...grpc.CallOption) (*CompareResponse, error)
	ReconstructPath(ctx context.Context, in *PathRequest, opts ...grpc.CallOption) (*PathResponse, error)
	GetTrace(ctx context.Context, in *GetTraceRequest, opts ...grpc.CallOption) (*SolveResponse, error)
	ListTraces(ctx context.Context, in *ListTracesRequest, opts ...grpc.CallOption) (*ListTracesResponse, error)
	DeleteTrace(ctx context.Context, in *DeleteTraceRequest, opts ...grpc.CallOption) (*DeleteTraceResponse, error)
	GetMethods(ctx context.Context, in *GetMethodsRequest, opts ...grpc.CallOption) (*GetMethodsResponse, error)
}

type solverServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSolverServiceClient returns a client that always calls with the JSON codec.
func NewSolverServiceClient(cc grpc.ClientConnInterface) SolverServiceClient {
	return &solverServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *solverServiceClient) Solve(ctx context.Context, in *SolveRequest, opts ...grpc.CallOption) (*SolveResponse, error) {
	return invoke[SolveResponse](ctx, c.cc, SolverService_Solve_FullMethodName, in, opts)
}

func (c *solverServiceClient) Compare(ctx context.Context, in *CompareRequest, opts ...grpc.CallOption) (*CompareResponse, error) {
	return invoke[CompareResponse](ctx, c.cc, SolverService_Compare_FullMethodName, in, opts)
}

func (c *solverServiceClient) ReconstructPath(ctx context.Context, in *PathRequest, opts ...grpc.CallOption) (*PathResponse, error) {
	return invoke[PathResponse](ctx, c.cc, SolverService_ReconstructPath_FullMethodName, in, opts)
}

func (c *solverServiceClient) GetTrace(ctx context.Context, in *GetTraceRequest, opts ...grpc.CallOption) (*SolveResponse, error) {
	return invoke[SolveResponse](ctx, c.cc, SolverService_GetTrace_FullMethodName, in, opts)
}

func (c *solverServiceClient) ListTraces(ctx context.Context, in *ListTracesRequest, opts ...grpc.CallOption) (*ListTracesResponse, error) {
	return invoke[ListTracesResponse](ctx, c.cc, SolverService_ListTraces_FullMethodName, in, opts)
}

func (c *solverServiceClient) DeleteTrace(ctx context.Context, in *DeleteTraceRequest, opts ...grpc.CallOption) (*DeleteTraceResponse, error) {
	return invoke[DeleteTraceResponse](ctx, c.cc, SolverService_DeleteTrace_FullMethodName, in, opts)
}

func (c *solverServiceClient) GetMethods(ctx context.Context, in *GetMethodsRequest, opts ...grpc.CallOption) (*GetMethodsResponse, error) {
	return invoke[GetMethodsResponse](ctx, c.cc, SolverService_GetMethods_FullMethodName, in, opts)
}
