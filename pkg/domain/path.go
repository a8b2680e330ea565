package domain

// NoPredecessor обозначает отсутствие предшественника в карте предшественников
const NoPredecessor = ""

// Path оптимальный маршрут и его суммарный вес
type Path struct {
	Nodes  []string `json:"nodes" yaml:"nodes"`
	Weight Value    `json:"weight" yaml:"weight"`
}

// Found проверяет, что маршрут существует
func (p Path) Found() bool {
	return len(p.Nodes) > 0
}

// ReconstructPath проходит по ссылкам на предшественников от source до target.
// Возвращает пустой срез, если target не достигнут. Обход ограничен
// len(predecessors) шагами, поэтому циклическая карта тоже даёт пустой результат.
//
// Карта решателя содержит ровно n узлов, и граница совпадает с n. В неполной
// карте с клиента каждый узел маршрута, кроме target, обязан быть ключом,
// так что маршрут без повторов укладывается в len(predecessors) переходов.
func ReconstructPath(predecessors map[string]string, sourceID, targetID string) []string {
	path := []string{sourceID}
	current := sourceID

	for steps := 0; current != targetID; steps++ {
		if steps >= len(predecessors) {
			return []string{}
		}
		next, ok := predecessors[current]
		if !ok || next == NoPredecessor {
			return []string{}
		}
		path = append(path, next)
		current = next
	}

	return path
}

// PathWeight суммирует веса рёбер маршрута. Между парой узлов может быть
// несколько рёбер, берётся самое лёгкое. Возвращает Unreachable для пустого
// маршрута или если какой-то переход не является ребром графа.
func PathWeight(g *Graph, path []string) Value {
	if len(path) == 0 {
		return Unreachable
	}

	total := Finite(0)
	for i := 0; i+1 < len(path); i++ {
		e, ok := cheapestEdge(g, path[i], path[i+1])
		if !ok {
			return Unreachable
		}
		total = Add(e.Weight, total)
	}
	return total
}

// BuildPath восстанавливает маршрут и считает его вес
func BuildPath(g *Graph, predecessors map[string]string, sourceID, targetID string) Path {
	nodes := ReconstructPath(predecessors, sourceID, targetID)
	if len(nodes) == 0 {
		return Path{Nodes: nodes, Weight: Unreachable}
	}
	return Path{Nodes: nodes, Weight: PathWeight(g, nodes)}
}

// PathEdges возвращает ID самых лёгких рёбер вдоль маршрута,
// nil если какой-то переход не является ребром графа
func PathEdges(g *Graph, path []string) []string {
	ids := make([]string, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		e, ok := cheapestEdge(g, path[i], path[i+1])
		if !ok {
			return nil
		}
		ids = append(ids, e.ID)
	}
	return ids
}

func cheapestEdge(g *Graph, from, to string) (Edge, bool) {
	var (
		best  Edge
		found bool
	)
	for _, e := range g.Edges {
		if e.Source == from && e.Target == to && (!found || e.Weight < best.Weight) {
			best, found = e, true
		}
	}
	return best, found
}
