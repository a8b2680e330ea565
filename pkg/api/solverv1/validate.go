package solverv1

import (
	"bellman/pkg/apperror"
)

// MaxPageSize caps ListTraces.Limit.
const MaxPageSize = 500

func validateGraphRef(g *Graph, sourceID, targetID string) error {
	if g == nil {
		return apperror.NewWithField(apperror.CodeNilInput, "graph is required", "graph")
	}
	if len(g.Nodes) == 0 {
		return apperror.NewWithField(apperror.CodeEmptyGraph, "graph has no nodes", "graph.nodes")
	}
	for i, n := range g.Nodes {
		if n == nil {
			return apperror.Newf(apperror.CodeInvalidNode, "node %d is null", i).WithField("graph.nodes")
		}
	}
	for i, e := range g.Edges {
		if e == nil {
			return apperror.Newf(apperror.CodeInvalidEdge, "edge %d is null", i).WithField("graph.edges")
		}
	}
	if sourceID == "" {
		return apperror.NewWithField(apperror.CodeInvalidSource, "source id is required", "sourceId")
	}
	if targetID == "" {
		return apperror.NewWithField(apperror.CodeInvalidTarget, "target id is required", "targetId")
	}
	return nil
}

// Validate checks the request shape. Graph semantics are checked by the solver.
func (x *SolveRequest) Validate() error {
	return validateGraphRef(x.Graph, x.SourceId, x.TargetId)
}

func (x *CompareRequest) Validate() error {
	return validateGraphRef(x.Graph, x.SourceId, x.TargetId)
}

func (x *PathRequest) Validate() error {
	if x.SourceId == "" {
		return apperror.NewWithField(apperror.CodeInvalidSource, "source id is required", "sourceId")
	}
	if x.TargetId == "" {
		return apperror.NewWithField(apperror.CodeInvalidTarget, "target id is required", "targetId")
	}
	if x.Graph != nil {
		return validateGraphRef(x.Graph, x.SourceId, x.TargetId)
	}
	return nil
}

func (x *GetTraceRequest) Validate() error {
	if x.Id == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "trace id is required", "id")
	}
	return nil
}

func (x *DeleteTraceRequest) Validate() error {
	if x.Id == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "trace id is required", "id")
	}
	return nil
}

func (x *ListTracesRequest) Validate() error {
	if x.Limit < 0 || x.Limit > MaxPageSize {
		return apperror.Newf(apperror.CodeInvalidPagination, "limit must be between 0 and %d", MaxPageSize).WithField("limit")
	}
	if x.Offset < 0 {
		return apperror.NewWithField(apperror.CodeInvalidPagination, "offset must not be negative", "offset")
	}
	return nil
}
