// Package solverv1 defines the wire contract of bellman.solver.v1.SolverService:
// request/response messages, the JSON codec they travel with, and the gRPC
// service descriptor plus client stub.
//
// Distances are encoded as nullable integers: a nil *int64 (JSON null) means
// the node cannot reach the target.
package solverv1

import "time"

// Graph is the wire form of a directed weighted graph. Node order is the
// sweep order.
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []*Edge `json:"edges" yaml:"edges"`
}

// Node is a graph vertex. X/Y and Role are carried for the UI only.
type Node struct {
	Id    string  `json:"id" yaml:"id"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Role  string  `json:"role,omitempty" yaml:"role,omitempty"`
}

// Edge is a directed weighted edge.
type Edge struct {
	Id     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int64  `json:"weight" yaml:"weight"`
}

// TableRow is one node's Jacobi value history, column i = iteration i+1.
type TableRow struct {
	NodeId string   `json:"nodeId" yaml:"nodeId"`
	Values []*int64 `json:"values" yaml:"values"`
}

// Step is a single trace snapshot.
type Step struct {
	Iteration      int32             `json:"iteration" yaml:"iteration"`
	Values         map[string]*int64 `json:"values" yaml:"values"`
	Predecessors   map[string]string `json:"predecessors" yaml:"predecessors"`
	ProcessedEdges []string          `json:"processedEdges" yaml:"processedEdges"`
	Completed      bool              `json:"completed" yaml:"completed"`
	Table          []*TableRow       `json:"table,omitempty" yaml:"table,omitempty"`
}

// SolveResult is a complete, replayable trace.
type SolveResult struct {
	Method               string            `json:"method" yaml:"method"`
	SourceId             string            `json:"sourceId" yaml:"sourceId"`
	TargetId             string            `json:"targetId" yaml:"targetId"`
	NodeOrder            []string          `json:"nodeOrder" yaml:"nodeOrder"`
	Steps                []*Step           `json:"steps" yaml:"steps"`
	FinalValues          map[string]*int64 `json:"finalValues" yaml:"finalValues"`
	FinalPredecessors    map[string]string `json:"finalPredecessors" yaml:"finalPredecessors"`
	Table                []*TableRow       `json:"table,omitempty" yaml:"table,omitempty"`
	ConvergenceIteration int32             `json:"convergenceIteration,omitempty" yaml:"convergenceIteration,omitempty"`
	Sweeps               int32             `json:"sweeps" yaml:"sweeps"`
}

// SolveMetrics reports how much work a solve took.
type SolveMetrics struct {
	ComputeTimeMs float64 `json:"computeTimeMs" yaml:"computeTimeMs"`
	Sweeps        int32   `json:"sweeps" yaml:"sweeps"`
	Steps         int32   `json:"steps" yaml:"steps"`
	NodeCount     int32   `json:"nodeCount" yaml:"nodeCount"`
	EdgeCount     int32   `json:"edgeCount" yaml:"edgeCount"`
}

type SolveRequest struct {
	Graph    *Graph `json:"graph" yaml:"graph"`
	SourceId string `json:"sourceId" yaml:"sourceId"`
	TargetId string `json:"targetId" yaml:"targetId"`
	// Method is "gauss_seidel" or "jacobi"; empty selects the server default.
	Method    string `json:"method,omitempty" yaml:"method,omitempty"`
	Persist   bool   `json:"persist,omitempty" yaml:"persist,omitempty"`
	SkipCache bool   `json:"skipCache,omitempty" yaml:"skipCache,omitempty"`
}

type SolveResponse struct {
	Result     *SolveResult  `json:"result" yaml:"result"`
	Path       []string      `json:"path" yaml:"path"`
	PathEdges  []string      `json:"pathEdges" yaml:"pathEdges"`
	PathWeight *int64        `json:"pathWeight" yaml:"pathWeight"`
	PathFound  bool          `json:"pathFound" yaml:"pathFound"`
	TraceId    string        `json:"traceId,omitempty" yaml:"traceId,omitempty"`
	CacheHit   bool          `json:"cacheHit" yaml:"cacheHit"`
	Metrics    *SolveMetrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type CompareRequest struct {
	Graph    *Graph `json:"graph" yaml:"graph"`
	SourceId string `json:"sourceId" yaml:"sourceId"`
	TargetId string `json:"targetId" yaml:"targetId"`
}

type CompareResponse struct {
	GaussSeidel       *SolveResult `json:"gaussSeidel" yaml:"gaussSeidel"`
	Jacobi            *SolveResult `json:"jacobi" yaml:"jacobi"`
	ValuesAgree       bool         `json:"valuesAgree" yaml:"valuesAgree"`
	PredecessorsAgree bool         `json:"predecessorsAgree" yaml:"predecessorsAgree"`
	MismatchedNodes   []string     `json:"mismatchedNodes" yaml:"mismatchedNodes"`
	// Path is reconstructed from the Gauss-Seidel predecessors.
	Path []string `json:"path" yaml:"path"`
}

type PathRequest struct {
	Predecessors map[string]string `json:"predecessors" yaml:"predecessors"`
	SourceId     string            `json:"sourceId" yaml:"sourceId"`
	TargetId     string            `json:"targetId" yaml:"targetId"`
	// Graph is optional; when set the response carries weight and edge ids.
	Graph *Graph `json:"graph,omitempty" yaml:"graph,omitempty"`
}

type PathResponse struct {
	Path    []string `json:"path" yaml:"path"`
	Found   bool     `json:"found" yaml:"found"`
	Weight  *int64   `json:"weight" yaml:"weight"`
	EdgeIds []string `json:"edgeIds,omitempty" yaml:"edgeIds,omitempty"`
}

type GetTraceRequest struct {
	Id string `json:"id" yaml:"id"`
}

type ListTracesRequest struct {
	Limit  int32  `json:"limit" yaml:"limit"`
	Offset int32  `json:"offset" yaml:"offset"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

type TraceSummary struct {
	Id          string    `json:"id" yaml:"id"`
	Method      string    `json:"method" yaml:"method"`
	SourceId    string    `json:"sourceId" yaml:"sourceId"`
	TargetId    string    `json:"targetId" yaml:"targetId"`
	GraphHash   string    `json:"graphHash" yaml:"graphHash"`
	NodeCount   int32     `json:"nodeCount" yaml:"nodeCount"`
	EdgeCount   int32     `json:"edgeCount" yaml:"edgeCount"`
	StepCount   int32     `json:"stepCount" yaml:"stepCount"`
	SourceValue *int64    `json:"sourceValue" yaml:"sourceValue"`
	PathFound   bool      `json:"pathFound" yaml:"pathFound"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

type ListTracesResponse struct {
	Traces     []*TraceSummary `json:"traces" yaml:"traces"`
	TotalCount int64           `json:"totalCount" yaml:"totalCount"`
	HasMore    bool            `json:"hasMore" yaml:"hasMore"`
}

type DeleteTraceRequest struct {
	Id string `json:"id" yaml:"id"`
}

type DeleteTraceResponse struct {
	Deleted bool `json:"deleted" yaml:"deleted"`
}

type GetMethodsRequest struct{}

type MethodInfo struct {
	Method            string `json:"method" yaml:"method"`
	Name              string `json:"name" yaml:"name"`
	Description       string `json:"description" yaml:"description"`
	ConvergenceSignal string `json:"convergenceSignal" yaml:"convergenceSignal"`
	KeepsTable        bool   `json:"keepsTable" yaml:"keepsTable"`
}

type GetMethodsResponse struct {
	Methods       []*MethodInfo `json:"methods" yaml:"methods"`
	DefaultMethod string        `json:"defaultMethod" yaml:"defaultMethod"`
}

func (x *SolveRequest) GetGraph() *Graph {
	if x != nil {
		return x.Graph
	}
	return nil
}

func (x *CompareRequest) GetGraph() *Graph {
	if x != nil {
		return x.Graph
	}
	return nil
}

func (x *SolveResponse) GetResult() *SolveResult {
	if x != nil {
		return x.Result
	}
	return nil
}

func (x *Graph) GetNodes() []*Node {
	if x != nil {
		return x.Nodes
	}
	return nil
}

func (x *Graph) GetEdges() []*Edge {
	if x != nil {
		return x.Edges
	}
	return nil
}

// Int64 returns a pointer to v; convenience for building nullable distances.
func Int64(v int64) *int64 {
	return &v
}
