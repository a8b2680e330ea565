package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"bellman/pkg/domain"
	"bellman/services/solver-svc/internal/algorithms"
)

const (
	sheetSummary = "Summary"
	sheetValues  = "Values"
	sheetPreds   = "Predecessors"
	sheetTable   = "Jacobi Table"
)

// ExcelExporter выгрузка трассы в XLSX: сводка, значения по шагам,
// предшественники и таблица Якоби отдельными листами
type ExcelExporter struct{}

// NewExcelExporter создаёт новый генератор
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Format возвращает формат генератора
func (e *ExcelExporter) Format() Format {
	return FormatXLSX
}

// ContentType возвращает MIME тип
func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export генерирует XLSX
func (e *ExcelExporter) Export(ctx context.Context, result *algorithms.Result) ([]byte, error) {
	if err := checkResult(result); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style: %w", err)
	}

	// Первый лист переименовываем вместо удаления
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("excel sheet: %w", err)
	}

	sw := &sheetWriter{f: f, header: headerStyle}
	sw.summary(result)
	sw.values(result)
	sw.preds(result)
	if result.Method == algorithms.MethodJacobi && len(result.Table) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sw.table(result)
	}
	if sw.err != nil {
		return nil, fmt.Errorf("excel write error: %w", sw.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter запоминает первую ошибку excelize
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) set(sheet string, col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, v)
}

func (w *sheetWriter) styleRow(sheet string, row, cols int) {
	if w.err != nil || cols < 1 {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	w.err = w.f.SetCellStyle(sheet, from, to, w.header)
}

func (w *sheetWriter) newSheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

// cellValue числа пишутся числами, Unreachable - текстом
func cellValue(v domain.Value) any {
	if n, ok := v.Int(); ok {
		return n
	}
	return unreachableText
}

func (w *sheetWriter) summary(result *algorithms.Result) {
	w.set(sheetSummary, 1, 1, "Bellman-Kalaba Trace")
	w.styleRow(sheetSummary, 1, 2)
	for i, row := range summaryRows(result) {
		w.set(sheetSummary, 1, i+2, row[0])
		w.set(sheetSummary, 2, i+2, row[1])
	}
}

func (w *sheetWriter) values(result *algorithms.Result) {
	w.newSheet(sheetValues)

	headers := append([]string{"Iteration", "Completed"}, result.NodeOrder...)
	headers = append(headers, "Processed Edges")
	for i, h := range headers {
		w.set(sheetValues, i+1, 1, h)
	}
	w.styleRow(sheetValues, 1, len(headers))

	for r, step := range result.Steps {
		row := r + 2
		w.set(sheetValues, 1, row, step.Iteration)
		w.set(sheetValues, 2, row, step.Completed)
		for c, id := range result.NodeOrder {
			w.set(sheetValues, c+3, row, cellValue(step.Values[id]))
		}
		w.set(sheetValues, len(headers), row, strings.Join(step.ProcessedEdges, " "))
	}
}

func (w *sheetWriter) preds(result *algorithms.Result) {
	w.newSheet(sheetPreds)

	headers := append([]string{"Iteration", "Completed"}, result.NodeOrder...)
	for i, h := range headers {
		w.set(sheetPreds, i+1, 1, h)
	}
	w.styleRow(sheetPreds, 1, len(headers))

	for r, step := range result.Steps {
		row := r + 2
		w.set(sheetPreds, 1, row, step.Iteration)
		w.set(sheetPreds, 2, row, step.Completed)
		for c, id := range result.NodeOrder {
			w.set(sheetPreds, c+3, row, formatPred(step.Predecessors[id]))
		}
	}
}

func (w *sheetWriter) table(result *algorithms.Result) {
	w.newSheet(sheetTable)

	cols := result.Table.Columns()
	w.set(sheetTable, 1, 1, "Node")
	for k := 1; k <= cols; k++ {
		w.set(sheetTable, k+1, 1, fmt.Sprintf("k=%d", k))
	}
	w.styleRow(sheetTable, 1, cols+1)

	for r, id := range result.NodeOrder {
		row := r + 2
		w.set(sheetTable, 1, row, id)
		for k := 1; k <= cols; k++ {
			w.set(sheetTable, k+1, row, cellValue(result.Table.At(id, k)))
		}
	}

	// Столбец сходимости подсвечиваем
	if result.ConvergenceIteration >= 1 && result.ConvergenceIteration <= cols && w.err == nil {
		style, err := w.f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
		})
		if err != nil {
			w.err = err
			return
		}
		from, _ := excelize.CoordinatesToCellName(result.ConvergenceIteration+1, 2)
		to, _ := excelize.CoordinatesToCellName(result.ConvergenceIteration+1, len(result.NodeOrder)+1)
		w.err = w.f.SetCellStyle(sheetTable, from, to, style)
	}
}
