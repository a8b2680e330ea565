package converter

import (
	"fmt"
	"sort"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/domain"
	"bellman/services/solver-svc/internal/algorithms"
)

// ToSolveResult конвертирует результат решателя в wire-формат.
// Строки таблицы идут в порядке узлов графа.
func ToSolveResult(r *algorithms.Result) *solverv1.SolveResult {
	if r == nil {
		return nil
	}

	out := &solverv1.SolveResult{
		Method:               r.Method.String(),
		SourceId:             r.SourceID,
		TargetId:             r.TargetID,
		NodeOrder:            append([]string(nil), r.NodeOrder...),
		Steps:                make([]*solverv1.Step, len(r.Steps)),
		FinalValues:          toWireValues(r.FinalValues),
		FinalPredecessors:    copyPreds(r.FinalPredecessors),
		Table:                toWireTable(r.Table, r.NodeOrder),
		ConvergenceIteration: int32(r.ConvergenceIteration),
		Sweeps:               int32(r.Sweeps),
	}

	for i, s := range r.Steps {
		out.Steps[i] = ToWireStep(s, r.NodeOrder)
	}

	return out
}

// ToWireStep конвертирует один снимок
func ToWireStep(s algorithms.Step, order []string) *solverv1.Step {
	processed := make([]string, len(s.ProcessedEdges))
	copy(processed, s.ProcessedEdges)

	return &solverv1.Step{
		Iteration:      int32(s.Iteration),
		Values:         toWireValues(s.Values),
		Predecessors:   copyPreds(s.Predecessors),
		ProcessedEdges: processed,
		Completed:      s.Completed,
		Table:          toWireTable(s.Table, order),
	}
}

// FromSolveResult восстанавливает результат решателя из wire-формата
// (воспроизведение сохранённой трассы).
func FromSolveResult(w *solverv1.SolveResult) (*algorithms.Result, error) {
	if w == nil {
		return nil, fmt.Errorf("solve result is nil")
	}
	if len(w.Steps) == 0 {
		return nil, fmt.Errorf("trace has no steps")
	}

	method, err := algorithms.ParseMethod(w.Method, "")
	if err != nil {
		return nil, err
	}
	if method == "" {
		return nil, fmt.Errorf("trace has no method")
	}

	out := &algorithms.Result{
		Method:               method,
		SourceID:             w.SourceId,
		TargetID:             w.TargetId,
		NodeOrder:            append([]string(nil), w.NodeOrder...),
		Steps:                make([]algorithms.Step, len(w.Steps)),
		FinalValues:          fromWireValues(w.FinalValues),
		FinalPredecessors:    copyPreds(w.FinalPredecessors),
		Table:                fromWireTable(w.Table),
		ConvergenceIteration: int(w.ConvergenceIteration),
		Sweeps:               int(w.Sweeps),
	}

	for i, s := range w.Steps {
		if s == nil {
			return nil, fmt.Errorf("step %d is null", i)
		}
		out.Steps[i] = algorithms.Step{
			Iteration:      int(s.Iteration),
			Values:         fromWireValues(s.Values),
			Predecessors:   copyPreds(s.Predecessors),
			ProcessedEdges: append([]string{}, s.ProcessedEdges...),
			Completed:      s.Completed,
			Table:          fromWireTable(s.Table),
		}
	}

	if !out.Steps[len(out.Steps)-1].Completed {
		return nil, fmt.Errorf("trace does not end with a completed step")
	}

	return out, nil
}

// ToWireMethods конвертирует каталог методов
func ToWireMethods(list []algorithms.MethodInfo) []*solverv1.MethodInfo {
	out := make([]*solverv1.MethodInfo, len(list))
	for i, m := range list {
		out[i] = &solverv1.MethodInfo{
			Method:            m.Method.String(),
			Name:              m.Name,
			Description:       m.Description,
			ConvergenceSignal: m.ConvergenceSignal,
			KeepsTable:        m.KeepsTable,
		}
	}
	return out
}

func toWireValues(values map[string]domain.Value) map[string]*int64 {
	if values == nil {
		return nil
	}
	out := make(map[string]*int64, len(values))
	for id, v := range values {
		out[id] = ToWireValue(v)
	}
	return out
}

func fromWireValues(values map[string]*int64) map[string]domain.Value {
	if values == nil {
		return nil
	}
	out := make(map[string]domain.Value, len(values))
	for id, v := range values {
		out[id] = FromWireValue(v)
	}
	return out
}

func copyPreds(preds map[string]string) map[string]string {
	if preds == nil {
		return nil
	}
	out := make(map[string]string, len(preds))
	for k, v := range preds {
		out[k] = v
	}
	return out
}

// toWireTable упорядочивает строки по order; узлы вне order идут в конце по ID
func toWireTable(t algorithms.Table, order []string) []*solverv1.TableRow {
	if t == nil {
		return nil
	}

	rows := make([]*solverv1.TableRow, 0, len(t))
	seen := make(map[string]bool, len(t))

	appendRow := func(id string) {
		row, ok := t[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		values := make([]*int64, len(row))
		for i, v := range row {
			values[i] = ToWireValue(v)
		}
		rows = append(rows, &solverv1.TableRow{NodeId: id, Values: values})
	}

	for _, id := range order {
		appendRow(id)
	}

	rest := make([]string, 0)
	for id := range t {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		appendRow(id)
	}

	return rows
}

func fromWireTable(rows []*solverv1.TableRow) algorithms.Table {
	if rows == nil {
		return nil
	}
	out := make(algorithms.Table, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		values := make([]domain.Value, len(row.Values))
		for i, v := range row.Values {
			values[i] = FromWireValue(v)
		}
		out[row.NodeId] = values
	}
	return out
}
