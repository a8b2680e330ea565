package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bellman/pkg/api/solverv1"
)

const infinity = "∞"

// render пишет v в выбранном формате; text использует переданный printer
func render[T any](cmd *cobra.Command, v T, text func(io.Writer, T) error) (err error) {
	w := cmd.OutOrStdout()
	if outputPath != "" {
		f, ferr := os.Create(outputPath)
		if ferr != nil {
			return fmt.Errorf("create %s: %w", outputPath, ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch strings.ToLower(outputFormat) {
	case "json":
		return encodeJSON(w, v)
	case "yaml", "yml":
		return encodeYAML(w, v)
	case "text", "":
		return text(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}
}

func formatValue(v *int64) string {
	if v == nil {
		return infinity
	}
	return strconv.FormatInt(*v, 10)
}

func formatPred(p string) string {
	if p == "" {
		return "-"
	}
	return p
}

func formatPath(path []string) string {
	if len(path) == 0 {
		return "none"
	}
	return strings.Join(path, " -> ")
}

func printSolve(w io.Writer, resp *solverv1.SolveResponse) error {
	r := resp.Result
	fmt.Fprintf(w, "method:  %s\n", r.Method)
	fmt.Fprintf(w, "route:   %s -> %s\n", r.SourceId, r.TargetId)
	fmt.Fprintf(w, "sweeps:  %d, steps: %d\n", r.Sweeps, len(r.Steps))
	if r.ConvergenceIteration > 0 {
		fmt.Fprintf(w, "converged at iteration %d\n", r.ConvergenceIteration)
	}
	if resp.TraceId != "" {
		fmt.Fprintf(w, "trace:   %s\n", resp.TraceId)
	}
	if resp.CacheHit {
		fmt.Fprintln(w, "cache:   hit")
	}
	fmt.Fprintln(w)

	if err := printSteps(w, r, r.Steps); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if resp.PathFound {
		_, err := fmt.Fprintf(w, "path:    %s (weight %s)\n", formatPath(resp.Path), formatValue(resp.PathWeight))
		return err
	}
	_, err := fmt.Fprintln(w, "path:    none, source cannot reach target")
	return err
}

// printSteps печатает снимки таблицей: значения и предшественники по узлам
func printSteps(w io.Writer, r *solverv1.SolveResult, steps []*solverv1.Step) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"ITER", "DONE"}, r.NodeOrder...)
	header = append(header, "EDGES")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, s := range steps {
		row := []string{strconv.Itoa(int(s.Iteration)), strconv.FormatBool(s.Completed)}
		for _, id := range r.NodeOrder {
			row = append(row, formatValue(s.Values[id])+" ("+formatPred(s.Predecessors[id])+")")
		}
		row = append(row, strings.Join(s.ProcessedEdges, ","))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if len(r.Table) > 0 {
		fmt.Fprintln(tw)
		header := []string{"NODE"}
		for k := range r.Table[0].Values {
			header = append(header, "k="+strconv.Itoa(k+1))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range r.Table {
			cells := []string{row.NodeId}
			for _, v := range row.Values {
				cells = append(cells, formatValue(v))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}

	return tw.Flush()
}

func printCompare(w io.Writer, resp *solverv1.CompareResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tGAUSS_SEIDEL\tJACOBI")
	for _, id := range resp.GaussSeidel.NodeOrder {
		gs := formatValue(resp.GaussSeidel.FinalValues[id]) + " (" + formatPred(resp.GaussSeidel.FinalPredecessors[id]) + ")"
		jac := formatValue(resp.Jacobi.FinalValues[id]) + " (" + formatPred(resp.Jacobi.FinalPredecessors[id]) + ")"
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, gs, jac)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nsteps: gauss_seidel %d, jacobi %d\n", len(resp.GaussSeidel.Steps), len(resp.Jacobi.Steps))
	fmt.Fprintf(w, "values agree: %t, predecessors agree: %t\n", resp.ValuesAgree, resp.PredecessorsAgree)
	if len(resp.MismatchedNodes) > 0 {
		fmt.Fprintf(w, "mismatched: %s\n", strings.Join(resp.MismatchedNodes, ", "))
	}
	_, err := fmt.Fprintf(w, "path: %s\n", formatPath(resp.Path))
	return err
}

func printTraces(w io.Writer, resp *solverv1.ListTracesResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMETHOD\tROUTE\tNODES\tEDGES\tSTEPS\tVALUE\tCREATED")
	for _, t := range resp.Traces {
		fmt.Fprintf(tw, "%s\t%s\t%s->%s\t%d\t%d\t%d\t%s\t%s\n",
			t.Id, t.Method, t.SourceId, t.TargetId, t.NodeCount, t.EdgeCount, t.StepCount,
			formatValue(t.SourceValue), t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d shown, more: %t\n", len(resp.Traces), resp.TotalCount, resp.HasMore)
	return err
}

func printMethods(w io.Writer, resp *solverv1.GetMethodsResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tNAME\tSIGNAL\tTABLE")
	for _, m := range resp.Methods {
		name := m.Method
		if m.Method == resp.DefaultMethod {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", name, m.Name, m.ConvergenceSignal, m.KeepsTable)
	}
	return tw.Flush()
}
