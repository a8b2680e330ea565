package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Ключи атрибутов
const (
	// Граф
	AttrGraphNodes = "graph.nodes"
	AttrGraphEdges = "graph.edges"
	AttrGraphHash  = "graph.hash"

	// Решение
	AttrSolveMethod    = "solve.method"
	AttrSolveSource    = "solve.source_id"
	AttrSolveTarget    = "solve.target_id"
	AttrSolveSweeps    = "solve.sweeps"
	AttrSolveSteps     = "solve.steps"
	AttrSolvePathFound = "solve.path_found"
	AttrSolveAgree     = "solve.methods_agree"

	// Кэш и хранилище
	AttrCacheHit = "cache.hit"
	AttrTraceID  = "trace.record_id"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(nodes, edges int, hash string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
	}
	if hash != "" {
		attrs = append(attrs, attribute.String(AttrGraphHash, hash))
	}
	return attrs
}

// SolveAttributes возвращает атрибуты запроса на решение
func SolveAttributes(method, sourceID, targetID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSolveMethod, method),
		attribute.String(AttrSolveSource, sourceID),
		attribute.String(AttrSolveTarget, targetID),
	}
}

// ResultAttributes возвращает атрибуты результата решения
func ResultAttributes(sweeps, steps int, pathFound bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrSolveSweeps, sweeps),
		attribute.Int(AttrSolveSteps, steps),
		attribute.Bool(AttrSolvePathFound, pathFound),
	}
}
