package domain

import "fmt"

// Arc исходящее ребро в плотной индексации
type Arc struct {
	EdgeID string
	To     int
	Weight int64
}

// Index двунаправленное отображение ID узла <-> плотный индекс
// и списки исходящих рёбер в порядке списка рёбер графа.
// Строится один раз в начале решения.
type Index struct {
	ids      []string
	pos      map[string]int
	outgoing [][]Arc
}

// NewIndex строит индекс. Граф должен пройти ValidateStructure.
func NewIndex(g *Graph) (*Index, error) {
	idx := &Index{
		ids:      make([]string, len(g.Nodes)),
		pos:      make(map[string]int, len(g.Nodes)),
		outgoing: make([][]Arc, len(g.Nodes)),
	}

	for i, n := range g.Nodes {
		if _, dup := idx.pos[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		idx.ids[i] = n.ID
		idx.pos[n.ID] = i
	}

	for _, e := range g.Edges {
		from, ok := idx.pos[e.Source]
		if !ok {
			return nil, fmt.Errorf("edge %q: unknown source %q", e.ID, e.Source)
		}
		to, ok := idx.pos[e.Target]
		if !ok {
			return nil, fmt.Errorf("edge %q: unknown target %q", e.ID, e.Target)
		}
		idx.outgoing[from] = append(idx.outgoing[from], Arc{EdgeID: e.ID, To: to, Weight: e.Weight})
	}

	return idx, nil
}

// Len возвращает количество узлов
func (x *Index) Len() int {
	return len(x.ids)
}

// ID возвращает идентификатор узла по индексу
func (x *Index) ID(i int) string {
	return x.ids[i]
}

// Of возвращает индекс узла по идентификатору
func (x *Index) Of(id string) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// Outgoing возвращает исходящие рёбра узла i
func (x *Index) Outgoing(i int) []Arc {
	return x.outgoing[i]
}

// IDs возвращает идентификаторы в порядке графа
func (x *Index) IDs() []string {
	out := make([]string, len(x.ids))
	copy(out, x.ids)
	return out
}
