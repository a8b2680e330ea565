// Package algorithms implements Bellman-Kalaba shortest-path value iteration
// towards a fixed target under two update disciplines: synchronous Jacobi
// and sequential in-place Gauss-Seidel. Both record every intermediate state
// as an immutable Step so a caller can replay the whole run.
//
// # Thread Safety
//
// Solvers are pure functions over their inputs. Each call owns its working
// set and every emitted Step is a deep copy, so concurrent solves on the same
// *domain.Graph are safe as long as nobody mutates the graph meanwhile.
//
// # Determinism
//
// Nodes are swept in graph order and outgoing edges are scanned in edge-list
// order, so equal inputs always produce identical traces.
//
// # Example Usage
//
//	g := domain.NewGraph().
//	    AddNode(domain.Node{ID: "1"}).
//	    AddNode(domain.Node{ID: "2"}).
//	    Connect("1", "2", 3)
//
//	result, err := algorithms.Solve(ctx, g, "1", "2", algorithms.MethodJacobi)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.FinalValues["1"], result.Path())
package algorithms

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bellman/pkg/apperror"
	"bellman/pkg/domain"
)

// =============================================================================
// Methods
// =============================================================================

// Method selects the update discipline.
type Method string

const (
	MethodGaussSeidel Method = "gauss_seidel"
	MethodJacobi      Method = "jacobi"
)

// String returns the wire name of the method.
func (m Method) String() string {
	return string(m)
}

// ParseMethod accepts the wire names plus a few common spellings.
// An empty string yields def.
func ParseMethod(s string, def Method) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "gauss_seidel", "gauss-seidel", "gaussseidel", "seidel", "gs":
		return MethodGaussSeidel, nil
	case "jacobi", "j":
		return MethodJacobi, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidMethod,
			fmt.Sprintf("unknown method %q", s), "method")
	}
}

// MethodInfo describes a method for catalogue endpoints.
type MethodInfo struct {
	Method            Method
	Name              string
	Description       string
	ConvergenceSignal string
	KeepsTable        bool
}

var methodCatalog = map[Method]MethodInfo{
	MethodGaussSeidel: {
		Method:            MethodGaussSeidel,
		Name:              "Gauss-Seidel",
		Description:       "Sequential in-place sweeps; later nodes see values improved earlier in the same sweep",
		ConvergenceSignal: "value",
		KeepsTable:        false,
	},
	MethodJacobi: {
		Method:            MethodJacobi,
		Name:              "Jacobi",
		Description:       "Synchronous sweeps; iteration k reads only iteration k-1, full value table kept",
		ConvergenceSignal: "predecessor",
		KeepsTable:        true,
	},
}

// Methods returns the catalogue sorted by method name.
func Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(methodCatalog))
	for _, info := range methodCatalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}

// GetMethodInfo returns catalogue data for a method.
func GetMethodInfo(m Method) (MethodInfo, bool) {
	info, ok := methodCatalog[m]
	return info, ok
}

// =============================================================================
// Main Solver Entry Point
// =============================================================================

// Solve validates the input and dispatches to the requested method.
func Solve(ctx context.Context, g *domain.Graph, sourceID, targetID string, method Method) (*Result, error) {
	switch method {
	case MethodGaussSeidel:
		return SolveGaussSeidelWithContext(ctx, g, sourceID, targetID)
	case MethodJacobi:
		return SolveJacobiWithContext(ctx, g, sourceID, targetID)
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidMethod,
			fmt.Sprintf("unknown method %q", method), "method")
	}
}

// prepare validates the graph and builds the dense index.
func prepare(g *domain.Graph, sourceID, targetID string) (*domain.Index, int, error) {
	if err := g.Validate(sourceID, targetID); err != nil {
		return nil, 0, err
	}

	idx, err := domain.NewIndex(g)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInvalidGraph, err.Error())
	}

	target, _ := idx.Of(targetID)
	return idx, target, nil
}

func newResult(method Method, idx *domain.Index, sourceID, targetID string) *Result {
	return &Result{
		Method:    method,
		SourceID:  sourceID,
		TargetID:  targetID,
		NodeOrder: idx.IDs(),
		Steps:     make([]Step, 0, idx.Len()+1),
	}
}

func canceled(err error, method Method, iteration int) error {
	return apperror.Wrap(err, apperror.CodeTimeout,
		fmt.Sprintf("%s canceled before iteration %d", method, iteration))
}

// =============================================================================
// Cross-check
// =============================================================================

// Comparison holds both traces for the same input and where they disagree.
type Comparison struct {
	GaussSeidel       *Result
	Jacobi            *Result
	ValuesAgree       bool
	PredecessorsAgree bool
	// MismatchedNodes lists, in graph order, nodes whose final value or
	// predecessor differs between the two methods.
	MismatchedNodes []string
}

// Agree reports whether both methods produced identical final states.
func (c *Comparison) Agree() bool {
	return c.ValuesAgree && c.PredecessorsAgree
}

// CrossCheck solves with both methods and compares the final states. The two
// are expected to agree on graphs without negative cycles.
func CrossCheck(ctx context.Context, g *domain.Graph, sourceID, targetID string) (*Comparison, error) {
	gs, err := SolveGaussSeidelWithContext(ctx, g, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	jac, err := SolveJacobiWithContext(ctx, g, sourceID, targetID)
	if err != nil {
		return nil, err
	}

	return Compare(gs, jac), nil
}

// Compare builds a Comparison from two already computed traces of the same
// input.
func Compare(gs, jac *Result) *Comparison {
	cmp := &Comparison{
		GaussSeidel:       gs,
		Jacobi:            jac,
		ValuesAgree:       true,
		PredecessorsAgree: true,
	}

	for _, id := range gs.NodeOrder {
		valueDiff := !gs.FinalValues[id].Equal(jac.FinalValues[id])
		predDiff := gs.FinalPredecessors[id] != jac.FinalPredecessors[id]
		if valueDiff {
			cmp.ValuesAgree = false
		}
		if predDiff {
			cmp.PredecessorsAgree = false
		}
		if valueDiff || predDiff {
			cmp.MismatchedNodes = append(cmp.MismatchedNodes, id)
		}
	}

	return cmp
}
