package algorithms

import (
	"context"
	"time"

	"bellman/pkg/domain"
)

// =============================================================================
// Jacobi Value Iteration
// =============================================================================
//
// Synchronous Bellman-Kalaba iteration: column k of the value table is computed
// strictly from column k-1, so no node observes another node's iteration-k
// value during the same sweep. The whole table is kept for the tabular view.
//
// Convergence signal: a sweep in which no predecessor link was (re)assigned.
// A link is (re)assigned whenever a node's finite candidate differs from its
// previous column, even if it points at the same neighbour as before. Unlike
// Gauss-Seidel the value itself is always overwritten with the candidate.
//
// Time Complexity: O(n * E), at most n-1 sweeps
// Space Complexity: O(n^2) table
// =============================================================================

// SolveJacobi runs Jacobi value iteration without cancellation.
func SolveJacobi(g *domain.Graph, sourceID, targetID string) (*Result, error) {
	return SolveJacobiWithContext(context.Background(), g, sourceID, targetID)
}

// SolveJacobiWithContext runs Jacobi value iteration.
//
// Steps:
//  1. Column 1: target 0, everything else Unreachable; snapshot at iteration 1.
//  2. For k = 2..n: the target's column k is 0. For every other node the
//     running best starts at Unreachable and the first edge giving a strictly
//     smaller weight + table[j][k-1] wins. Column k receives the best
//     candidate, or Unreachable when no successor was finite. If the finite
//     candidate differs from column k-1 the predecessor is (re)assigned.
//  3. Snapshot with the table so far. If no predecessor was (re)assigned the
//     convergence iteration is k and sweeping stops; it defaults to n.
//  4. Columns after the convergence iteration are back-filled up to n with
//     the converged column.
//  5. Completed snapshot at convergence iteration + 1 with the full table.
func SolveJacobiWithContext(ctx context.Context, g *domain.Graph, sourceID, targetID string) (*Result, error) {
	start := time.Now()

	idx, target, err := prepare(g, sourceID, targetID)
	if err != nil {
		return nil, err
	}

	n := idx.Len()
	ws := newWorkingSet(idx, target)
	result := newResult(MethodJacobi, idx, sourceID, targetID)

	table := make([][]domain.Value, n)
	for i := 0; i < n; i++ {
		table[i] = make([]domain.Value, 1, n)
		table[i][0] = ws.values[i]
	}

	first := ws.snapshot(1, nil, false)
	first.Table = tableMap(idx, table)
	result.Steps = append(result.Steps, first)

	convergence := n

	for k := 2; k <= n; k++ {
		if err := ctx.Err(); err != nil {
			return nil, canceled(err, MethodJacobi, k)
		}

		prev := k - 2 // column index of iteration k-1
		processed := newEdgeSet()
		changed := false

		for i := 0; i < n; i++ {
			if i == target {
				table[i] = append(table[i], domain.Finite(0))
				continue
			}

			best := domain.Unreachable
			bestPred := noPred

			for _, arc := range idx.Outgoing(i) {
				next := table[arc.To][prev]
				if next.IsUnreachable() {
					continue
				}
				candidate := domain.Add(arc.Weight, next)
				if candidate.Less(best) {
					best = candidate
					bestPred = arc.To
					processed.add(arc.EdgeID)
				}
			}

			table[i] = append(table[i], best)
			ws.values[i] = best

			if bestPred != noPred && !best.Equal(table[i][prev]) {
				ws.preds[i] = bestPred
				changed = true
			}
		}

		step := ws.snapshot(k, processed.list(), false)
		step.Table = tableMap(idx, table)
		result.Steps = append(result.Steps, step)
		result.Sweeps++

		if !changed {
			convergence = k
			break
		}
	}

	for i := 0; i < n; i++ {
		converged := table[i][convergence-1]
		for len(table[i]) < n {
			table[i] = append(table[i], converged)
		}
		ws.values[i] = converged
	}

	final := ws.snapshot(convergence+1, nil, true)
	final.Table = tableMap(idx, table)
	result.Steps = append(result.Steps, final)

	result.Table = tableMap(idx, table)
	result.ConvergenceIteration = convergence
	result.FinalValues = ws.valuesMap()
	result.FinalPredecessors = ws.predsMap()
	result.Duration = time.Since(start)

	return result, nil
}
