package graph

import "sort"

// State is the serializable form of a Graph: the node metadata plus both
// adjacency directions. Restoring from State reproduces identical query
// results for every node; edges are restored verbatim rather than
// re-resolved, so the round trip does not depend on insertion order.
type State struct {
	Nodes        map[string]NodeState `json:"nodes"`
	Dependencies map[string][]string  `json:"dependencies"`
	Dependents   map[string][]string  `json:"dependents"`
}

// NodeState is the persisted metadata for one tracked path.
type NodeState struct {
	Imports  []string `json:"imports"`
	Language string   `json:"language"`
}

// ToState serializes the graph.
func (g *Graph) ToState() State {
	s := State{
		Nodes:        make(map[string]NodeState, len(g.nodes)),
		Dependencies: map[string][]string{},
		Dependents:   map[string][]string{},
	}
	for path, node := range g.nodes {
		imports := make([]string, len(node.Imports))
		copy(imports, node.Imports)
		s.Nodes[path] = NodeState{Imports: imports, Language: node.Language}
	}
	for path, targets := range g.deps {
		if len(targets) > 0 {
			s.Dependencies[path] = setToSorted(targets)
		}
	}
	for path, sources := range g.dependents {
		if len(sources) > 0 {
			s.Dependents[path] = setToSorted(sources)
		}
	}
	return s
}

// FromState rebuilds a graph from its serialized form.
func FromState(s State) *Graph {
	g := New()
	for _, path := range sortedNodePaths(s.Nodes) {
		node := s.Nodes[path]
		imports := make([]string, len(node.Imports))
		copy(imports, node.Imports)
		g.order = append(g.order, path)
		g.nodes[path] = &Node{Path: path, Imports: imports, Language: node.Language}
		g.deps[path] = map[string]struct{}{}
	}
	for path, targets := range s.Dependencies {
		if _, ok := g.nodes[path]; !ok {
			continue
		}
		for _, target := range targets {
			if _, ok := g.nodes[target]; ok {
				g.addEdge(path, target)
			}
		}
	}
	return g
}

func sortedNodePaths(nodes map[string]NodeState) []string {
	out := make([]string, 0, len(nodes))
	for path := range nodes {
		out = append(out, path)
	}
	// Insertion order is unrecoverable after a round trip; sorted order is
	// the deterministic stand-in.
	sort.Strings(out)
	return out
}
