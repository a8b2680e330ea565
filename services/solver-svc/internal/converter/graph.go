package converter

import (
	"fmt"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/domain"
)

// ToDomainGraph конвертирует wire Graph в domain.Graph с сохранением порядка
func ToDomainGraph(g *solverv1.Graph) (*domain.Graph, error) {
	if g == nil {
		return nil, nil
	}

	out := &domain.Graph{
		Nodes: make([]domain.Node, 0, len(g.Nodes)),
		Edges: make([]domain.Edge, 0, len(g.Edges)),
	}

	for i, n := range g.Nodes {
		if n == nil {
			return nil, fmt.Errorf("node %d is null", i)
		}
		role, err := domain.ParseNodeRole(n.Role)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Id, err)
		}
		out.Nodes = append(out.Nodes, domain.Node{
			ID:       n.Id,
			Label:    n.Label,
			Position: domain.Position{X: n.X, Y: n.Y},
			Role:     role,
		})
	}

	for i, e := range g.Edges {
		if e == nil {
			return nil, fmt.Errorf("edge %d is null", i)
		}
		out.Edges = append(out.Edges, domain.Edge{
			ID:     e.Id,
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		})
	}

	return out, nil
}

// ToWireGraph конвертирует domain.Graph в wire Graph
func ToWireGraph(g *domain.Graph) *solverv1.Graph {
	if g == nil {
		return nil
	}

	out := &solverv1.Graph{
		Nodes: make([]*solverv1.Node, len(g.Nodes)),
		Edges: make([]*solverv1.Edge, len(g.Edges)),
	}

	for i, n := range g.Nodes {
		role := ""
		if n.Role != domain.RoleNone {
			role = n.Role.String()
		}
		out.Nodes[i] = &solverv1.Node{
			Id:    n.ID,
			Label: n.Label,
			X:     n.Position.X,
			Y:     n.Position.Y,
			Role:  role,
		}
	}

	for i, e := range g.Edges {
		out.Edges[i] = &solverv1.Edge{
			Id:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		}
	}

	return out
}

// ToWireValue конвертирует domain.Value в nullable int64
func ToWireValue(v domain.Value) *int64 {
	n, ok := v.Int()
	if !ok {
		return nil
	}
	return &n
}

// FromWireValue конвертирует nullable int64 в domain.Value
func FromWireValue(v *int64) domain.Value {
	if v == nil {
		return domain.Unreachable
	}
	return domain.Finite(*v)
}
