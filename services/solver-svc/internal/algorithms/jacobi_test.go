package algorithms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellman/pkg/apperror"
	"bellman/pkg/domain"
)

func TestJacobi_Diamond(t *testing.T) {
	g := diamondGraph()

	r, err := SolveJacobi(g, "1", "4")
	require.NoError(t, err)

	assert.Equal(t, MethodJacobi, r.Method)
	assert.Equal(t, map[string]domain.Value{"1": fin(2), "2": fin(1), "3": fin(1), "4": fin(0)}, r.FinalValues)
	assert.Equal(t, map[string]string{"1": "2", "2": "4", "3": "4", "4": ""}, r.FinalPredecessors)
	assert.Equal(t, []string{"1", "2", "4"}, r.Path())
	assert.Equal(t, 4, r.ConvergenceIteration)

	assert.Equal(t, Table{
		"1": {inf, inf, fin(2), fin(2)},
		"2": {inf, fin(1), fin(1), fin(1)},
		"3": {inf, fin(1), fin(1), fin(1)},
		"4": {fin(0), fin(0), fin(0), fin(0)},
	}, r.Table)

	require.Len(t, r.Steps, 5)
	assert.Equal(t, []string{"e2", "e4"}, r.Steps[1].ProcessedEdges)
	// the running best restarts from Unreachable every sweep, so stable
	// nodes report their edges again
	assert.Equal(t, []string{"e1", "e2", "e4"}, r.Steps[2].ProcessedEdges)
	assert.Equal(t, []string{"e1", "e2", "e4"}, r.Steps[3].ProcessedEdges)

	for i, step := range r.Steps[:4] {
		assert.Equal(t, i+1, step.Table.Columns(), "step %d must carry all columns so far", i)
	}
	assert.Equal(t, 5, r.FinalStep().Iteration)
	assert.Equal(t, 4, r.FinalStep().Table.Columns())

	assertTraceInvariants(t, g, r)
	assertOptimalPath(t, g, r)
}

func TestJacobi_ReadsOnlyPreviousColumn(t *testing.T) {
	g := chainGraph("3", "2", "1", "4")

	r, err := SolveJacobi(g, "1", "4")
	require.NoError(t, err)

	require.Len(t, r.Steps, 5)
	assert.Equal(t, map[string]domain.Value{"1": inf, "2": inf, "3": fin(1), "4": fin(0)}, r.Steps[1].Values)
	assert.Equal(t, map[string]domain.Value{"1": inf, "2": fin(2), "3": fin(1), "4": fin(0)}, r.Steps[2].Values)
	assert.Equal(t, map[string]domain.Value{"1": fin(3), "2": fin(2), "3": fin(1), "4": fin(0)}, r.Steps[3].Values)
	assert.Equal(t, 4, r.ConvergenceIteration, "defaults to n when no stable sweep is seen")
	assert.Equal(t, 5, r.FinalStep().Iteration)

	assertTraceInvariants(t, g, r)
	assertOptimalPath(t, g, r)
}

func TestJacobi_BackFillsTable(t *testing.T) {
	// 2 -> 1 is the only edge; everything settles after one sweep, the
	// unrelated nodes only pad n.
	g := buildGraph([]string{"1", "2", "3", "4", "5"}, edge("e", "2", "1", 7))

	r, err := SolveJacobi(g, "2", "1")
	require.NoError(t, err)

	assert.Equal(t, 3, r.ConvergenceIteration)
	require.Len(t, r.Steps, 4)
	assert.Equal(t, 4, r.FinalStep().Iteration)

	assert.Equal(t, 5, r.Table.Columns())
	assert.Equal(t, []domain.Value{inf, fin(7), fin(7), fin(7), fin(7)}, r.Table["2"])
	assert.Equal(t, []domain.Value{inf, inf, inf, inf, inf}, r.Table["3"])
	assert.Equal(t, fin(7), r.Table.At("2", 5))
	assert.Equal(t, inf, r.Table.At("2", 6))
	assert.Equal(t, inf, r.Table.At("missing", 1))

	assert.Equal(t, 3, r.Steps[2].Table.Columns(), "snapshots taken before the back-fill keep their width")
	assert.Equal(t, r.Table, r.FinalStep().Table)
}

func TestJacobi_IsolatedNode(t *testing.T) {
	g := diamondGraph().AddNode(domain.Node{ID: "5"})

	r, err := SolveJacobi(g, "5", "4")
	require.NoError(t, err)

	assert.Equal(t, inf, r.FinalValues["5"])
	assert.Equal(t, domain.NoPredecessor, r.FinalPredecessors["5"])
	assert.Empty(t, r.Path())
	for c := 1; c <= 5; c++ {
		assert.Equal(t, inf, r.Table.At("5", c))
	}

	assertTraceInvariants(t, g, r)
}

func TestJacobi_SingleNode(t *testing.T) {
	r, err := SolveJacobi(buildGraph([]string{"t"}), "t", "t")
	require.NoError(t, err)

	assert.Equal(t, 1, r.ConvergenceIteration)
	require.Len(t, r.Steps, 2)
	assert.Equal(t, 2, r.FinalStep().Iteration)
	assert.Equal(t, Table{"t": {fin(0)}}, r.Table)
}

// A sweep in which values still fall while every predecessor keeps pointing
// at the same neighbour is not a stable sweep: the link is reassigned. Reading
// "predecessor changed" as "points elsewhere" would stop at iteration 5 with
// A3 stuck at 13.
func TestJacobi_ReassignedPredecessorCountsAsChange(t *testing.T) {
	g := cascadeGraph()

	r, err := SolveJacobi(g, "A3", "T")
	require.NoError(t, err)

	it4, it5 := r.Steps[3], r.Steps[4]
	require.Equal(t, 4, it4.Iteration)
	require.Equal(t, 5, it5.Iteration)
	assert.Equal(t, it4.Predecessors, it5.Predecessors, "no predecessor points elsewhere at iteration 5")
	assert.NotEqual(t, it4.Values, it5.Values)
	assert.False(t, it5.Completed)

	assert.Equal(t, 6, r.ConvergenceIteration)
	assert.Equal(t, fin(5), r.FinalValues["A3"])
	assert.Equal(t, []string{"A3", "A2", "A", "B", "C", "T"}, r.Path())

	gs, err := SolveGaussSeidel(g, "A3", "T")
	require.NoError(t, err)
	assert.Equal(t, gs.FinalValues, r.FinalValues)
	assert.Equal(t, gs.FinalPredecessors, r.FinalPredecessors)

	assertTraceInvariants(t, g, r)
	assertOptimalPath(t, g, r)
}

func TestJacobi_SnapshotsAreIndependent(t *testing.T) {
	r, err := SolveJacobi(diamondGraph(), "1", "4")
	require.NoError(t, err)

	assert.Equal(t, Table{"1": {inf}, "2": {inf}, "3": {inf}, "4": {fin(0)}}, r.Steps[0].Table)

	r.Steps[1].Table["2"][1] = fin(-50)
	assert.Equal(t, fin(1), r.Steps[2].Table.At("2", 2))
	assert.Equal(t, fin(1), r.Table.At("2", 2))

	clone := r.Table.Clone()
	clone["1"][0] = fin(9)
	assert.Equal(t, inf, r.Table.At("1", 1))
}

func TestJacobi_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SolveJacobiWithContext(ctx, diamondGraph(), "1", "4")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeTimeout))
}

func TestJacobi_InvalidInput(t *testing.T) {
	_, err := SolveJacobi(diamondGraph(), "1", "nope")
	assert.True(t, apperror.Is(err, apperror.CodeInvalidTarget))

	_, err = SolveJacobi(diamondGraph().AddNode(domain.Node{ID: "1"}), "1", "4")
	assert.True(t, apperror.Is(err, apperror.CodeDuplicateNode))
}
