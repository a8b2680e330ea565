package algorithms

import (
	"time"

	"bellman/pkg/domain"
)

// =============================================================================
// Trace Types
// =============================================================================

// Table is the Jacobi value history: Table[node][c] holds the value computed at
// iteration c+1. Every row has the same length.
type Table map[string][]domain.Value

// At returns the value of node at a 1-based iteration, Unreachable when the
// node or the column does not exist.
func (t Table) At(nodeID string, iteration int) domain.Value {
	row, ok := t[nodeID]
	if !ok || iteration < 1 || iteration > len(row) {
		return domain.Unreachable
	}
	return row[iteration-1]
}

// Columns returns the number of iterations stored in the table.
func (t Table) Columns() int {
	for _, row := range t {
		return len(row)
	}
	return 0
}

// Column returns the values of every node at a 1-based iteration.
func (t Table) Column(iteration int) map[string]domain.Value {
	col := make(map[string]domain.Value, len(t))
	for id := range t {
		col[id] = t.At(id, iteration)
	}
	return col
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for id, row := range t {
		cp := make([]domain.Value, len(row))
		copy(cp, row)
		out[id] = cp
	}
	return out
}

// Step is one immutable snapshot of the solver state.
//
// Predecessors maps every node to the next hop towards the target, or
// domain.NoPredecessor. ProcessedEdges lists, in first-contribution order and
// without repetition, the edges that improved a running minimum during the
// sweep. Table is set only for the Jacobi method.
type Step struct {
	Iteration      int
	Values         map[string]domain.Value
	Predecessors   map[string]string
	ProcessedEdges []string
	Completed      bool
	Table          Table
}

// Result is the outcome of one solve: the ordered step sequence (initialization
// first, completed step last) and the final state.
type Result struct {
	Method            Method
	SourceID          string
	TargetID          string
	NodeOrder         []string
	Steps             []Step
	FinalValues       map[string]domain.Value
	FinalPredecessors map[string]string

	// Jacobi only.
	Table                Table
	ConvergenceIteration int

	// Sweeps is the number of value-iteration sweeps actually run.
	Sweeps   int
	Duration time.Duration
}

// FinalStep returns the completed step.
func (r *Result) FinalStep() Step {
	return r.Steps[len(r.Steps)-1]
}

// SourceValue returns the converged distance from source to target.
func (r *Result) SourceValue() domain.Value {
	return r.FinalValues[r.SourceID]
}

// Path reconstructs the optimal route from the final predecessors.
func (r *Result) Path() []string {
	return domain.ReconstructPath(r.FinalPredecessors, r.SourceID, r.TargetID)
}

// =============================================================================
// Working Set
// =============================================================================

// noPred marks an absent predecessor in the index-addressed working set.
const noPred = -1

// workingSet is the mutable, index-addressed solver state. Snapshots copy out
// of it and never alias it.
type workingSet struct {
	idx    *domain.Index
	target int
	values []domain.Value
	preds  []int
}

func newWorkingSet(idx *domain.Index, target int) *workingSet {
	n := idx.Len()
	ws := &workingSet{
		idx:    idx,
		target: target,
		values: make([]domain.Value, n),
		preds:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		ws.values[i] = domain.Unreachable
		ws.preds[i] = noPred
	}
	ws.values[target] = domain.Finite(0)
	return ws
}

func (ws *workingSet) valuesMap() map[string]domain.Value {
	out := make(map[string]domain.Value, len(ws.values))
	for i, v := range ws.values {
		out[ws.idx.ID(i)] = v
	}
	return out
}

func (ws *workingSet) predsMap() map[string]string {
	out := make(map[string]string, len(ws.preds))
	for i, p := range ws.preds {
		if p == noPred {
			out[ws.idx.ID(i)] = domain.NoPredecessor
			continue
		}
		out[ws.idx.ID(i)] = ws.idx.ID(p)
	}
	return out
}

func (ws *workingSet) snapshot(iteration int, processed []string, completed bool) Step {
	if processed == nil {
		processed = []string{}
	}
	return Step{
		Iteration:      iteration,
		Values:         ws.valuesMap(),
		Predecessors:   ws.predsMap(),
		ProcessedEdges: processed,
		Completed:      completed,
	}
}

// tableMap copies an index-addressed table into its public form.
func tableMap(idx *domain.Index, rows [][]domain.Value) Table {
	out := make(Table, len(rows))
	for i, row := range rows {
		cp := make([]domain.Value, len(row))
		copy(cp, row)
		out[idx.ID(i)] = cp
	}
	return out
}

// edgeSet collects edge ids in insertion order without repetition.
type edgeSet struct {
	seen  map[string]struct{}
	order []string
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: make(map[string]struct{})}
}

func (s *edgeSet) add(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *edgeSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
