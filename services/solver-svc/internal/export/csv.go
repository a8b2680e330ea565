package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"bellman/services/solver-svc/internal/algorithms"
)

// CSVExporter выгрузка трассы в CSV, секции разделены пустой строкой
type CSVExporter struct{}

// NewCSVExporter создаёт новый генератор
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format возвращает формат генератора
func (e *CSVExporter) Format() Format {
	return FormatCSV
}

// ContentType возвращает MIME тип
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Export генерирует CSV
func (e *CSVExporter) Export(ctx context.Context, result *algorithms.Result) ([]byte, error) {
	if err := checkResult(result); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write("# Bellman-Kalaba Trace")
	for _, row := range summaryRows(result) {
		cw.Write(row[0], row[1])
	}
	cw.Write("")

	writeStepValuesCSV(cw, result)
	cw.Write("")
	writeStepPredsCSV(cw, result)

	if result.Method == algorithms.MethodJacobi && len(result.Table) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cw.Write("")
		writeTableCSV(cw, result)
	}

	if err := cw.Flush(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}
	return buf.Bytes(), nil
}

func writeStepValuesCSV(w *csvWriter, result *algorithms.Result) {
	w.Write("Values")
	header := append([]string{"Iteration", "Completed"}, result.NodeOrder...)
	header = append(header, "Processed Edges")
	w.Write(header...)

	for _, step := range result.Steps {
		row := []string{strconv.Itoa(step.Iteration), strconv.FormatBool(step.Completed)}
		for _, id := range result.NodeOrder {
			row = append(row, formatValue(step.Values[id]))
		}
		row = append(row, strings.Join(step.ProcessedEdges, " "))
		w.Write(row...)
	}
}

func writeStepPredsCSV(w *csvWriter, result *algorithms.Result) {
	w.Write("Predecessors")
	w.Write(append([]string{"Iteration", "Completed"}, result.NodeOrder...)...)

	for _, step := range result.Steps {
		row := []string{strconv.Itoa(step.Iteration), strconv.FormatBool(step.Completed)}
		for _, id := range result.NodeOrder {
			row = append(row, formatPred(step.Predecessors[id]))
		}
		w.Write(row...)
	}
}

func writeTableCSV(w *csvWriter, result *algorithms.Result) {
	cols := result.Table.Columns()

	w.Write("Jacobi Table")
	header := []string{"Node"}
	for k := 1; k <= cols; k++ {
		header = append(header, "k="+strconv.Itoa(k))
	}
	w.Write(header...)

	for _, id := range result.NodeOrder {
		row := []string{id}
		for k := 1; k <= cols; k++ {
			row = append(row, formatValue(result.Table.At(id, k)))
		}
		w.Write(row...)
	}
}
