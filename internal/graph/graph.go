// Package graph maintains the directed import-dependency graph between
// tracked files: forward and reverse adjacency, memoized import resolution,
// and derived queries (cycles, topological order, transitive closures).
//
// Resolution is closed-world: an import only becomes an edge when its target
// is itself a tracked path. Imports that do not resolve within the tracked
// set are recorded as unresolved, never as dangling edges.
package graph

import (
	"sort"
)

// Node holds the tracked metadata for one file.
type Node struct {
	Path     string
	Imports  []string
	Language string
}

type cacheKey struct {
	source string
	imp    string
}

type cacheEntry struct {
	path string
	ok   bool
}

// Graph is the dependency graph. It is not safe for concurrent mutation;
// the scan orchestrator mutates it only from its serial commit phase.
type Graph struct {
	nodes      map[string]*Node
	order      []string // insertion order, for stable iteration and tie-breaks
	deps       map[string]map[string]struct{}
	dependents map[string]map[string]struct{}
	cache      map[cacheKey]cacheEntry
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes:      map[string]*Node{},
		deps:       map[string]map[string]struct{}{},
		dependents: map[string]map[string]struct{}{},
		cache:      map[cacheKey]cacheEntry{},
	}
}

// AddFile registers (or re-registers) a tracked path with its raw import
// strings, resolves each import under the language's resolution policy, and
// replaces the path's outgoing edges. Reverse edges of both old and new
// targets are updated; incoming edges are untouched.
func (g *Graph) AddFile(path string, imports []string, language string) {
	if _, tracked := g.nodes[path]; !tracked {
		g.order = append(g.order, path)
	}
	imp := make([]string, len(imports))
	copy(imp, imports)
	sort.Strings(imp)
	g.nodes[path] = &Node{Path: path, Imports: imp, Language: language}

	// Drop the old outgoing edges.
	for old := range g.deps[path] {
		delete(g.dependents[old], path)
	}
	g.deps[path] = map[string]struct{}{}

	for _, name := range imp {
		if target, ok := g.resolve(path, name, language); ok {
			g.addEdge(path, target)
		}
	}
}

// RemoveFile deletes a path, every edge referencing it in either direction,
// and all resolution cache entries involving it.
func (g *Graph) RemoveFile(path string) {
	if _, ok := g.nodes[path]; !ok {
		return
	}
	for dep := range g.deps[path] {
		delete(g.dependents[dep], path)
	}
	delete(g.deps, path)

	for dependent := range g.dependents[path] {
		delete(g.deps[dependent], path)
	}
	delete(g.dependents, path)

	delete(g.nodes, path)
	for i, p := range g.order {
		if p == path {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	for key, entry := range g.cache {
		if key.source == path || (entry.ok && entry.path == path) {
			delete(g.cache, key)
		}
	}
}

// RefreshUnresolved retries resolution for every import that currently has
// no edge. Called by the orchestrator after new paths join the tracked set,
// since a previously unresolvable import may now have a target.
func (g *Graph) RefreshUnresolved() {
	for _, path := range g.order {
		node := g.nodes[path]
		for _, name := range node.Imports {
			key := cacheKey{source: path, imp: name}
			if entry, ok := g.cache[key]; ok && !entry.ok {
				delete(g.cache, key)
			}
			if target, ok := g.resolve(path, name, node.Language); ok {
				g.addEdge(path, target)
			}
		}
	}
}

func (g *Graph) addEdge(from, to string) {
	if g.deps[from] == nil {
		g.deps[from] = map[string]struct{}{}
	}
	g.deps[from][to] = struct{}{}
	if g.dependents[to] == nil {
		g.dependents[to] = map[string]struct{}{}
	}
	g.dependents[to][from] = struct{}{}
}

// Has reports whether a path is tracked.
func (g *Graph) Has(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// Node returns the tracked metadata for a path, or nil.
func (g *Graph) Node(path string) *Node {
	return g.nodes[path]
}

// Len returns the number of tracked paths.
func (g *Graph) Len() int { return len(g.nodes) }

// Files returns all tracked paths in insertion order.
func (g *Graph) Files() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the direct dependencies of a path as a sorted
// snapshot.
func (g *Graph) Dependencies(path string) []string {
	return setToSorted(g.deps[path])
}

// Dependents returns the direct dependents of a path as a sorted snapshot.
func (g *Graph) Dependents(path string) []string {
	return setToSorted(g.dependents[path])
}

// TransitiveDependencies returns every path reachable by following import
// edges from the start node, excluding the start node itself.
func (g *Graph) TransitiveDependencies(path string) []string {
	return g.bfs(path, g.deps)
}

// TransitiveDependents returns every path that transitively imports the
// start node, excluding the start node itself.
func (g *Graph) TransitiveDependents(path string) []string {
	return g.bfs(path, g.dependents)
}

func (g *Graph) bfs(start string, adj map[string]map[string]struct{}) []string {
	visited := map[string]struct{}{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		for next := range adj[current] {
			queue = append(queue, next)
		}
	}
	delete(visited, start)
	return setToSorted(visited)
}

// DetectCycles reports circular dependencies. Each back-edge found during the
// depth-first walk yields one cycle (closed by repeating the first node); a
// component with several overlapping cycles is not exhaustively enumerated.
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	visited := map[string]struct{}{}
	onStack := map[string]struct{}{}
	var stack []string

	var dfs func(node string)
	dfs = func(node string) {
		if _, ok := onStack[node]; ok {
			for i, p := range stack {
				if p == node {
					cycle := make([]string, 0, len(stack)-i+1)
					cycle = append(cycle, stack[i:]...)
					cycle = append(cycle, node)
					cycles = append(cycles, cycle)
					break
				}
			}
			return
		}
		if _, ok := visited[node]; ok {
			return
		}
		visited[node] = struct{}{}
		onStack[node] = struct{}{}
		stack = append(stack, node)

		for _, dep := range setToSorted(g.deps[node]) {
			dfs(dep)
		}

		stack = stack[:len(stack)-1]
		delete(onStack, node)
	}

	for _, node := range g.order {
		if _, ok := visited[node]; !ok {
			dfs(node)
		}
	}
	return cycles
}

// TopologicalSort orders files so that dependencies come before dependents
// (Kahn's algorithm; a node's in-degree counts how many tracked files it
// imports). Ties break by insertion order. When the graph has cycles, the
// acyclic prefix comes first, the remaining cyclic nodes are appended in
// insertion order, and acyclic is false.
func (g *Graph) TopologicalSort() (order []string, acyclic bool) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.order {
		inDegree[node] = len(g.deps[node])
	}

	var queue []string
	for _, node := range g.order {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, dependent := range setToSorted(g.dependents[node]) {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) == len(g.nodes) {
		return order, true
	}

	emitted := make(map[string]struct{}, len(order))
	for _, node := range order {
		emitted[node] = struct{}{}
	}
	for _, node := range g.order {
		if _, ok := emitted[node]; !ok {
			order = append(order, node)
		}
	}
	return order, false
}

// IsolatedFiles returns paths with no edges in either direction, sorted.
func (g *Graph) IsolatedFiles() []string {
	var out []string
	for _, path := range g.order {
		if len(g.deps[path]) == 0 && len(g.dependents[path]) == 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// LeafFiles returns paths nothing imports, sorted. These are typically
// entry points or unused files.
func (g *Graph) LeafFiles() []string {
	var out []string
	for _, path := range g.order {
		if len(g.dependents[path]) == 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// RootFiles returns paths that import nothing, sorted.
func (g *Graph) RootFiles() []string {
	var out []string
	for _, path := range g.order {
		if len(g.deps[path]) == 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of resolved dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.deps {
		n += len(targets)
	}
	return n
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
