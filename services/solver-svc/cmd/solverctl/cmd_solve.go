package main

import (
	"github.com/spf13/cobra"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	solversvc "bellman/services/solver-svc"
)

// newLocalServer поднимает сервис решателя в процессе.
// Метрики в отдельном реестре: CLI их не публикует.
func newLocalServer() solverv1.SolverServiceServer {
	m, _ := metrics.NewWithRegistry("bellman", "solverctl")
	return solversvc.NewLocalServer(version, m)
}

func solveRequest(path string) (*solverv1.SolveRequest, error) {
	gf, err := loadGraphFile(path)
	if err != nil {
		return nil, err
	}

	source, target := gf.endpoints(solveSource, solveTarget)
	method := solveMethod
	if method == "" {
		method = gf.Method
	}

	return &solverv1.SolveRequest{
		Graph:    &gf.Graph,
		SourceId: source,
		TargetId: target,
		Method:   method,
	}, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	req, err := solveRequest(args[0])
	if err != nil {
		return err
	}
	req.SkipCache = true

	resp, err := newLocalServer().Solve(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Info("solved",
		"method", resp.Result.Method,
		"steps", len(resp.Result.Steps),
		"path_found", resp.PathFound,
	)
	return render(cmd, resp, printSolve)
}

func runCompare(cmd *cobra.Command, args []string) error {
	req, err := solveRequest(args[0])
	if err != nil {
		return err
	}

	resp, err := newLocalServer().Compare(cmd.Context(), &solverv1.CompareRequest{
		Graph:    req.Graph,
		SourceId: req.SourceId,
		TargetId: req.TargetId,
	})
	if err != nil {
		return err
	}

	if !resp.ValuesAgree {
		logger.Warn("disciplines disagree", "nodes", resp.MismatchedNodes)
	}
	return render(cmd, resp, printCompare)
}

func runMethods(cmd *cobra.Command, _ []string) error {
	resp, err := newLocalServer().GetMethods(cmd.Context(), &solverv1.GetMethodsRequest{})
	if err != nil {
		return err
	}
	return render(cmd, resp, printMethods)
}
