package algorithms

import (
	"context"
	"time"

	"bellman/pkg/domain"
)

// =============================================================================
// Gauss-Seidel Value Iteration
// =============================================================================
//
// Sequential in-place Bellman-Kalaba iteration towards a fixed target. Each
// sweep visits the nodes in graph order and immediately reuses values already
// improved earlier in the same sweep, which usually converges in fewer sweeps
// than the synchronous scheme.
//
// Convergence signal: a sweep in which no value changed.
//
// Time Complexity: O(n * E), at most n-1 sweeps
// Space Complexity: O(n) working set plus one O(n) snapshot per sweep
// =============================================================================

// SolveGaussSeidel runs Gauss-Seidel value iteration without cancellation.
func SolveGaussSeidel(g *domain.Graph, sourceID, targetID string) (*Result, error) {
	return SolveGaussSeidelWithContext(context.Background(), g, sourceID, targetID)
}

// SolveGaussSeidelWithContext runs Gauss-Seidel value iteration.
//
// Steps:
//  1. values[target] = 0, every other value Unreachable, no predecessors;
//     snapshot at iteration 1.
//  2. For k = 2..n sweep all nodes except the target in graph order. A node's
//     candidate is the minimum of weight + values[j] over its outgoing edges,
//     using the current values. The first edge reaching a strictly smaller
//     value than the running best wins. Value and predecessor are replaced
//     only on strict improvement.
//  3. Snapshot after every sweep; stop after the first sweep without change.
//  4. Completed snapshot at the last iteration + 1.
//
// The context is checked between sweeps.
func SolveGaussSeidelWithContext(ctx context.Context, g *domain.Graph, sourceID, targetID string) (*Result, error) {
	start := time.Now()

	idx, target, err := prepare(g, sourceID, targetID)
	if err != nil {
		return nil, err
	}

	n := idx.Len()
	ws := newWorkingSet(idx, target)
	result := newResult(MethodGaussSeidel, idx, sourceID, targetID)

	result.Steps = append(result.Steps, ws.snapshot(1, nil, false))
	last := 1

	for k := 2; k <= n; k++ {
		if err := ctx.Err(); err != nil {
			return nil, canceled(err, MethodGaussSeidel, k)
		}

		processed := newEdgeSet()
		changed := false

		for i := 0; i < n; i++ {
			if i == target {
				continue
			}

			best := ws.values[i]
			bestPred := ws.preds[i]

			for _, arc := range idx.Outgoing(i) {
				next := ws.values[arc.To]
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

			if !best.Equal(ws.values[i]) {
				ws.values[i] = best
				ws.preds[i] = bestPred
				changed = true
			}
		}

		result.Steps = append(result.Steps, ws.snapshot(k, processed.list(), false))
		result.Sweeps++
		last = k

		if !changed {
			break
		}
	}

	result.Steps = append(result.Steps, ws.snapshot(last+1, nil, true))
	result.FinalValues = ws.valuesMap()
	result.FinalPredecessors = ws.predsMap()
	result.Duration = time.Since(start)

	return result, nil
}
