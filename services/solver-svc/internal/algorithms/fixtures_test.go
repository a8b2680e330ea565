package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellman/pkg/domain"
)

var (
	inf = domain.Unreachable
	fin = domain.Finite
)

func buildGraph(order []string, edges ...domain.Edge) *domain.Graph {
	g := domain.NewGraph()
	for _, id := range order {
		g.AddNode(domain.Node{ID: id, Label: "node " + id})
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
	return g
}

func edge(id, from, to string, w int64) domain.Edge {
	return domain.Edge{ID: id, Source: from, Target: to, Weight: w}
}

// diamondGraph: 1->2 (1), 2->4 (1), 1->3 (5), 3->4 (1).
func diamondGraph() *domain.Graph {
	return buildGraph([]string{"1", "2", "3", "4"},
		edge("e1", "1", "2", 1),
		edge("e2", "2", "4", 1),
		edge("e3", "1", "3", 5),
		edge("e4", "3", "4", 1),
	)
}

// chainGraph: 1->2->3->4 with unit weights, nodes listed in the given order.
func chainGraph(order ...string) *domain.Graph {
	return buildGraph(order,
		edge("e1", "1", "2", 1),
		edge("e2", "2", "3", 1),
		edge("e3", "3", "4", 1),
	)
}

// cascadeGraph makes B improve through C after first settling on T, and the
// improvement reach A3 only several sweeps later while every predecessor
// keeps pointing at the same neighbour.
func cascadeGraph() *domain.Graph {
	return buildGraph([]string{"A3", "A2", "A", "B", "C", "T"},
		edge("x1", "A3", "A2", 1),
		edge("x2", "A2", "A", 1),
		edge("x3", "A2", "T", 100),
		edge("x4", "A", "B", 1),
		edge("x5", "B", "T", 10),
		edge("x6", "B", "C", 1),
		edge("x7", "C", "T", 1),
	)
}

type solveFunc func(g *domain.Graph, source, target string) (*Result, error)

var methods = []struct {
	name  string
	solve solveFunc
}{
	{"gauss_seidel", SolveGaussSeidel},
	{"jacobi", SolveJacobi},
}

// assertTraceInvariants checks the properties every trace must satisfy.
func assertTraceInvariants(t *testing.T, g *domain.Graph, r *Result) {
	t.Helper()

	n := g.NodeCount()
	require.NotEmpty(t, r.Steps)
	assert.LessOrEqual(t, len(r.Steps), n+2, "too many steps")

	assert.Equal(t, 1, r.Steps[0].Iteration, "first step must be the initialization")
	for i, step := range r.Steps {
		last := i == len(r.Steps)-1
		assert.Equal(t, last, step.Completed, "only the last step is completed (step %d)", i)
		assert.Equal(t, fin(0), step.Values[r.TargetID], "target value at step %d", i)
		assert.Equal(t, domain.NoPredecessor, step.Predecessors[r.TargetID], "target predecessor at step %d", i)
		assert.Len(t, step.Values, n)
		assert.Len(t, step.Predecessors, n)
		assert.NotNil(t, step.ProcessedEdges)

		if i > 0 {
			assert.Equal(t, r.Steps[i-1].Iteration+1, step.Iteration, "iterations must be consecutive")
			for id, v := range step.Values {
				prev := r.Steps[i-1].Values[id]
				assert.False(t, prev.Less(v), "value of %s increased at step %d: %v -> %v", id, i, prev, v)
			}
		}
	}

	final := r.FinalStep()
	assert.Equal(t, r.FinalValues, final.Values)
	assert.Equal(t, r.FinalPredecessors, final.Predecessors)
	assert.Empty(t, final.ProcessedEdges)
}

// assertOptimalPath checks the reconstructed route against the final values.
func assertOptimalPath(t *testing.T, g *domain.Graph, r *Result) {
	t.Helper()

	path := r.Path()
	if r.SourceValue().IsUnreachable() {
		assert.Empty(t, path)
		return
	}

	require.NotEmpty(t, path)
	assert.Equal(t, r.SourceID, path[0])
	assert.Equal(t, r.TargetID, path[len(path)-1])
	assert.NotNil(t, domain.PathEdges(g, path), "every hop must be an edge")
	assert.Equal(t, r.SourceValue(), domain.PathWeight(g, path))
}
