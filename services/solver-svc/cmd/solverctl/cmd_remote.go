package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/health/grpc_health_v1"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/client"
)

// solverClient подмножество client.SolverClient, нужное командам remote
type solverClient interface {
	Solve(ctx context.Context, req *solverv1.SolveRequest) (*solverv1.SolveResponse, error)
	GetTrace(ctx context.Context, id string) (*solverv1.SolveResponse, error)
	ListTraces(ctx context.Context, req *solverv1.ListTracesRequest) (*solverv1.ListTracesResponse, error)
	DeleteTrace(ctx context.Context, id string) (bool, error)
	Health(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error)
	Close() error
}

// dialSolver подменяется в тестах
var dialSolver = func() (solverClient, error) {
	cfg := client.DefaultSolverClientConfig()
	cfg.Address = remoteAddr
	cfg.Timeout = remoteTimeout
	return client.NewSolverClient(cfg)
}

// withClient открывает соединение на время одной команды
func withClient(fn func(solverClient) error) error {
	c, err := dialSolver()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}

func runRemoteSolve(cmd *cobra.Command, args []string) error {
	req, err := solveRequest(args[0])
	if err != nil {
		return err
	}
	req.Persist = remotePersist

	return withClient(func(c solverClient) error {
		resp, err := c.Solve(cmd.Context(), req)
		if err != nil {
			return err
		}
		return render(cmd, resp, printSolve)
	})
}

func runRemoteGet(cmd *cobra.Command, args []string) error {
	return withClient(func(c solverClient) error {
		resp, err := c.GetTrace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, resp, printSolve)
	})
}

func runRemoteList(cmd *cobra.Command, _ []string) error {
	return withClient(func(c solverClient) error {
		resp, err := c.ListTraces(cmd.Context(), &solverv1.ListTracesRequest{
			Limit:  remoteLimit,
			Offset: remoteOffset,
			Method: remoteMethod,
		})
		if err != nil {
			return err
		}
		return render(cmd, resp, printTraces)
	})
}

func runRemoteDelete(cmd *cobra.Command, args []string) error {
	return withClient(func(c solverClient) error {
		deleted, err := c.DeleteTrace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		resp := &solverv1.DeleteTraceResponse{Deleted: deleted}
		return render(cmd, resp, func(w io.Writer, r *solverv1.DeleteTraceResponse) error {
			_, err := fmt.Fprintf(w, "deleted %s: %t\n", args[0], r.Deleted)
			return err
		})
	})
}

func runRemoteHealth(cmd *cobra.Command, _ []string) error {
	return withClient(func(c solverClient) error {
		status, err := c.Health(cmd.Context(), "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), status.String())
		return err
	})
}
