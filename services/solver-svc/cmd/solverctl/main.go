// Command solverctl runs Bellman-Kalaba solves from the command line.
//
// Graphs are read from YAML or JSON files and solved in-process with the same
// service code solver-svc runs, so a trace written by "solverctl solve" is
// byte-compatible with one fetched from the server. Traces can be replayed
// step by step, exported to CSV/XLSX, or sent to a running solver-svc through
// the "remote" subcommands.
//
// Examples:
//
//	solverctl solve graph.yaml --method jacobi -o json --out trace.json
//	solverctl replay trace.json --step 2
//	solverctl export trace.json --format xlsx --out trace.xlsx
//	solverctl remote --addr localhost:50052 solve graph.yaml --persist
package main

import (
	"os"

	"bellman/pkg/logger"
)

// version подставляется через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Debug("command failed", "error", err)
		os.Exit(1)
	}
}
