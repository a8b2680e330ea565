package domain

import (
	"fmt"
	"strings"

	"bellman/pkg/apperror"
)

// NodeRole помечает узел как начальный или конечный для интерфейса
type NodeRole int

const (
	RoleNone NodeRole = iota
	RoleStart
	RoleEnd
)

// String возвращает строковое представление роли
func (r NodeRole) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleEnd:
		return "end"
	default:
		return "none"
	}
}

// ParseNodeRole разбирает роль из строки; пустая строка означает RoleNone
func ParseNodeRole(s string) (NodeRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RoleNone, nil
	case "start":
		return RoleStart, nil
	case "end":
		return RoleEnd, nil
	default:
		return RoleNone, fmt.Errorf("unknown node role %q", s)
	}
}

// MarshalText реализует encoding.TextMarshaler (JSON и YAML)
func (r NodeRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (r *NodeRole) UnmarshalText(text []byte) error {
	role, err := ParseNodeRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Position координаты узла на холсте. Решатель их не читает.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node узел графа
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Position Position `json:"position" yaml:"position"`
	Role     NodeRole `json:"role,omitempty" yaml:"role,omitempty"`
}

// DisplayName возвращает метку узла, а при её отсутствии ID
func (n Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge ориентированное взвешенное ребро. Вес может быть любого знака.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int64  `json:"weight" yaml:"weight"`
}

// String возвращает строковое представление ребра
func (e Edge) String() string {
	return fmt.Sprintf("%s(%s->%s, %d)", e.ID, e.Source, e.Target, e.Weight)
}

// Graph упорядоченные списки узлов и рёбер.
// Порядок узлов задаёт порядок обхода в одной итерации и сохраняется как есть.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewGraph создаёт пустой граф
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode добавляет узел в конец списка
func (g *Graph) AddNode(node Node) *Graph {
	g.Nodes = append(g.Nodes, node)
	return g
}

// AddEdge добавляет ребро в конец списка
func (g *Graph) AddEdge(edge Edge) *Graph {
	g.Edges = append(g.Edges, edge)
	return g
}

// Connect добавляет ребро с автоматически сгенерированным ID вида "e<номер>"
func (g *Graph) Connect(source, target string, weight int64) *Graph {
	return g.AddEdge(Edge{
		ID:     fmt.Sprintf("e%d", len(g.Edges)+1),
		Source: source,
		Target: target,
		Weight: weight,
	})
}

// NodeCount возвращает количество узлов
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount возвращает количество рёбер
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// GetNode возвращает узел по ID
func (g *Graph) GetNode(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// GetEdge возвращает ребро по ID
func (g *Graph) GetEdge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// HasNode проверяет наличие узла
func (g *Graph) HasNode(id string) bool {
	_, ok := g.GetNode(id)
	return ok
}

// FindByRole возвращает первый узел с заданной ролью
func (g *Graph) FindByRole(role NodeRole) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Role == role {
			return n, true
		}
	}
	return Node{}, false
}

// Endpoints возвращает ID узлов с ролями start и end.
// Пустые строки, если роль не назначена.
func (g *Graph) Endpoints() (source, target string) {
	if n, ok := g.FindByRole(RoleStart); ok {
		source = n.ID
	}
	if n, ok := g.FindByRole(RoleEnd); ok {
		target = n.ID
	}
	return source, target
}

// Clone создаёт глубокую копию графа
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(clone.Nodes, g.Nodes)
	copy(clone.Edges, g.Edges)
	return clone
}

// ValidateStructure проверяет уникальность ID и концы рёбер.
// Все нарушения собираются в одну ошибку.
func (g *Graph) ValidateStructure() error {
	if g == nil {
		return apperror.ErrNilGraph
	}
	if len(g.Nodes) == 0 {
		return apperror.ErrEmptyGraph
	}

	ve := apperror.NewValidationErrors()

	nodes := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			ve.AddErrorWithField(apperror.CodeInvalidNode,
				fmt.Sprintf("node at position %d has empty id", i), fmt.Sprintf("nodes[%d].id", i))
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			ve.AddErrorWithField(apperror.CodeDuplicateNode,
				fmt.Sprintf("node %q declared more than once", n.ID), fmt.Sprintf("nodes[%d].id", i))
			continue
		}
		nodes[n.ID] = struct{}{}
	}

	edges := make(map[string]struct{}, len(g.Edges))
	for i, e := range g.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if e.ID == "" {
			ve.AddErrorWithField(apperror.CodeInvalidEdge,
				fmt.Sprintf("edge at position %d has empty id", i), field+".id")
		} else if _, dup := edges[e.ID]; dup {
			ve.AddErrorWithField(apperror.CodeDuplicateEdge,
				fmt.Sprintf("edge %q declared more than once", e.ID), field+".id")
		} else {
			edges[e.ID] = struct{}{}
		}
		if _, ok := nodes[e.Source]; !ok {
			ve.AddErrorWithField(apperror.CodeDanglingEdge,
				fmt.Sprintf("edge %q starts at unknown node %q", e.ID, e.Source), field+".source")
		}
		if _, ok := nodes[e.Target]; !ok {
			ve.AddErrorWithField(apperror.CodeDanglingEdge,
				fmt.Sprintf("edge %q ends at unknown node %q", e.ID, e.Target), field+".target")
		}
	}

	return ve.Err()
}

// Validate проверяет граф и пару source/target перед решением
func (g *Graph) Validate(sourceID, targetID string) error {
	if err := g.ValidateStructure(); err != nil {
		return err
	}
	if !g.HasNode(sourceID) {
		return apperror.NewWithField(apperror.CodeInvalidSource,
			fmt.Sprintf("source node %q not found", sourceID), "source_id")
	}
	if !g.HasNode(targetID) {
		return apperror.NewWithField(apperror.CodeInvalidTarget,
			fmt.Sprintf("target node %q not found", targetID), "target_id")
	}
	return nil
}

// HasNegativeWeights проверяет наличие рёбер с отрицательным весом
func (g *Graph) HasNegativeWeights() bool {
	for _, e := range g.Edges {
		if e.Weight < 0 {
			return true
		}
	}
	return false
}
