package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/services/solver-svc/internal/converter"
	"bellman/services/solver-svc/internal/export"
)

// replayView снимки трассы, выбранные для показа
type replayView struct {
	Result *solverv1.SolveResult `json:"result" yaml:"result"`
	Steps  []*solverv1.Step      `json:"steps" yaml:"steps"`
	Path   []string              `json:"path" yaml:"path"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	resp, err := loadTraceFile(args[0])
	if err != nil {
		return err
	}

	// Проверяем трассу на целостность перед показом
	res, err := converter.FromSolveResult(resp.Result)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeTraceCorrupted, "trace cannot be replayed")
	}
	wire := converter.ToSolveResult(res)

	steps := wire.Steps
	if replayStep >= 0 {
		if replayStep >= len(steps) {
			return apperror.Newf(apperror.CodeInvalidArgument,
				"step %d out of range, trace has %d steps", replayStep, len(steps)).WithField("step")
		}
		steps = steps[replayStep : replayStep+1]
	}

	view := &replayView{Result: wire, Steps: steps, Path: res.Path()}
	return render(cmd, view, printReplay)
}

func printReplay(w io.Writer, v *replayView) error {
	fmt.Fprintf(w, "%s trace %s -> %s, %d steps\n\n", v.Result.Method, v.Result.SourceId, v.Result.TargetId, len(v.Result.Steps))
	if err := printSteps(w, v.Result, v.Steps); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npath: %s\n", formatPath(v.Path))
	return err
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	resp, err := loadTraceFile(args[0])
	if err != nil {
		return err
	}
	res, err := converter.FromSolveResult(resp.Result)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeTraceCorrupted, "trace cannot be exported")
	}

	exporter, err := export.New(format)
	if err != nil {
		return err
	}
	data, err := exporter.Export(cmd.Context(), res)
	if err != nil {
		return err
	}

	if outputPath == "" {
		if format == export.FormatXLSX {
			return apperror.New(apperror.CodeInvalidArgument, "xlsx export needs --out").WithField("out")
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", outputPath, exporter.ContentType(), len(data))
	return nil
}
