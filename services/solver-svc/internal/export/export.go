// Package export renders solver traces as spreadsheets: the step sequence,
// the predecessor history and, for Jacobi, the full value table.
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bellman/pkg/apperror"
	"bellman/pkg/domain"
	"bellman/services/solver-svc/internal/algorithms"
)

// Format формат выгрузки
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat разбирает формат, пустая строка - CSV
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported export format %q", s), "format")
	}
}

// Exporter интерфейс генератора выгрузки
type Exporter interface {
	Export(ctx context.Context, result *algorithms.Result) ([]byte, error)
	Format() Format
	ContentType() string
}

// New возвращает генератор для формата
func New(f Format) (Exporter, error) {
	switch f {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatXLSX:
		return NewExcelExporter(), nil
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported export format %q", f), "format")
	}
}

// Unreachable в выгрузке пишется текстом, чтобы таблица оставалась читаемой
const unreachableText = "inf"

func formatValue(v domain.Value) string {
	n, ok := v.Int()
	if !ok {
		return unreachableText
	}
	return strconv.FormatInt(n, 10)
}

func formatPred(p string) string {
	if p == domain.NoPredecessor {
		return "-"
	}
	return p
}

func checkResult(result *algorithms.Result) error {
	if result == nil || len(result.Steps) == 0 {
		return apperror.New(apperror.CodeNilInput, "nothing to export: empty trace")
	}
	return nil
}

// summaryRows общие метаданные трассы для всех форматов
func summaryRows(result *algorithms.Result) [][2]string {
	path := result.Path()
	pathText := "-"
	if len(path) > 0 {
		pathText = strings.Join(path, " -> ")
	}

	rows := [][2]string{
		{"Method", result.Method.String()},
		{"Source", result.SourceID},
		{"Target", result.TargetID},
		{"Nodes", strconv.Itoa(len(result.NodeOrder))},
		{"Steps", strconv.Itoa(len(result.Steps))},
		{"Sweeps", strconv.Itoa(result.Sweeps)},
	}
	if result.Method == algorithms.MethodJacobi {
		rows = append(rows, [2]string{"Convergence Iteration", strconv.Itoa(result.ConvergenceIteration)})
	}
	rows = append(rows,
		[2]string{"Source Value", formatValue(result.SourceValue())},
		[2]string{"Path", pathText},
	)
	return rows
}
