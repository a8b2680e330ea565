package main

import (
	"time"

	"github.com/spf13/cobra"

	"bellman/pkg/logger"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// Общие флаги
	logLevel     string
	outputFormat string
	outputPath   string

	// solve / compare
	solveSource string
	solveTarget string
	solveMethod string

	// replay
	replayStep int

	// export
	exportFormat string

	// remote
	remoteAddr    string
	remoteTimeout time.Duration
	remotePersist bool
	remoteLimit   int32
	remoteOffset  int32
	remoteMethod  string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var (
	rootCmd = &cobra.Command{
		Use:   "solverctl",
		Short: "Bellman-Kalaba shortest path solver",
		Long: `solverctl computes shortest distances to a target node with the
Bellman-Kalaba value iteration (Gauss-Seidel or Jacobi) and records every
intermediate step of the computation.

Graph files are YAML or JSON:

  source: "1"
  target: "4"
  nodes: [{id: "1"}, {id: "2"}, {id: "3"}, {id: "4"}]
  edges:
    - {id: e1, source: "1", target: "2", weight: 1}
    - {id: e2, source: "2", target: "4", weight: 1}

When source or target is omitted, nodes with role "start" and "end" are used.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithConfig(logger.Config{Level: logLevel, Format: "text", Output: "stderr"})
		},
	}

	solveCmd = &cobra.Command{
		Use:   "solve GRAPH_FILE",
		Short: "Solve a graph in-process and print the full trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	compareCmd = &cobra.Command{
		Use:   "compare GRAPH_FILE",
		Short: "Run both disciplines on a graph and compare their final states",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompare,
	}

	replayCmd = &cobra.Command{
		Use:   "replay TRACE_FILE",
		Short: "Step through a stored trace",
		Long: `Replay reads a trace written by "solverctl solve" (or fetched from
solver-svc) and prints its snapshots. With --step only that snapshot is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}

	exportCmd = &cobra.Command{
		Use:   "export TRACE_FILE",
		Short: "Export a trace to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	methodsCmd = &cobra.Command{
		Use:   "methods",
		Short: "List the available iteration disciplines",
		Args:  cobra.NoArgs,
		RunE:  runMethods,
	}

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running solver-svc",
	}

	remoteSolveCmd = &cobra.Command{
		Use:   "solve GRAPH_FILE",
		Short: "Solve a graph on the server",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteSolve,
	}

	remoteGetCmd = &cobra.Command{
		Use:   "get TRACE_ID",
		Short: "Fetch a persisted trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteGet,
	}

	remoteListCmd = &cobra.Command{
		Use:   "list",
		Short: "List persisted traces, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRemoteList,
	}

	remoteDeleteCmd = &cobra.Command{
		Use:   "delete TRACE_ID",
		Short: "Delete a persisted trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteDelete,
	}

	remoteHealthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check solver-svc health",
		Args:  cobra.NoArgs,
		RunE:  runRemoteHealth,
	}
)

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&outputPath, "out", "", "Write output to a file instead of stdout")

	rootCmd.AddCommand(solveCmd, compareCmd, replayCmd, exportCmd, methodsCmd, remoteCmd)

	for _, c := range []*cobra.Command{solveCmd, compareCmd, remoteSolveCmd} {
		c.Flags().StringVarP(&solveSource, "source", "s", "", "Source node id (overrides the file)")
		c.Flags().StringVarP(&solveTarget, "target", "t", "", "Target node id (overrides the file)")
	}
	solveCmd.Flags().StringVarP(&solveMethod, "method", "m", "", "Iteration discipline: gauss_seidel or jacobi")
	remoteSolveCmd.Flags().StringVarP(&solveMethod, "method", "m", "", "Iteration discipline: gauss_seidel or jacobi")

	replayCmd.Flags().IntVar(&replayStep, "step", -1, "Show only this snapshot (0-based)")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format: csv or xlsx")

	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "localhost:50052", "solver-svc address")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 30*time.Second, "Per-call timeout")
	remoteCmd.AddCommand(remoteSolveCmd, remoteGetCmd, remoteListCmd, remoteDeleteCmd, remoteHealthCmd)
	remoteSolveCmd.Flags().BoolVar(&remotePersist, "persist", false, "Store the trace on the server")
	remoteListCmd.Flags().Int32Var(&remoteLimit, "limit", 20, "Page size")
	remoteListCmd.Flags().Int32Var(&remoteOffset, "offset", 0, "Page offset")
	remoteListCmd.Flags().StringVar(&remoteMethod, "method", "", "Filter by discipline")
}
