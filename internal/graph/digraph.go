package graph

import (
	"fmt"
	"sort"
)

// Digraph is a generic directed graph over small integer node IDs, used by
// the reordering dynamic program to validate that a partial order (plus
// any synthetic dominance edges) forms a DAG before the DP walks it.
// TopoSort is provided alongside but the reorderer does not call it.
type Digraph struct {
	nodes map[int]bool
	adj   map[int][]int
}

// NewDigraph creates an empty digraph.
func NewDigraph() *Digraph {
	return &Digraph{nodes: make(map[int]bool), adj: make(map[int][]int)}
}

// AddNode registers n, a no-op if already present.
func (g *Digraph) AddNode(n int) {
	g.nodes[n] = true
}

// AddEdge registers an edge from -> to, adding both endpoints as nodes if
// needed.
func (g *Digraph) AddEdge(from, to int) {
	g.nodes[from] = true
	g.nodes[to] = true
	g.adj[from] = append(g.adj[from], to)
}

// CycleError reports a discovered cycle, naming the nodes in cycle order.
type CycleError struct {
	Cycle []int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %v", e.Cycle)
}

// DetectCycle runs DFS with coloring (white/gray/black) over the graph in
// deterministic sorted order and returns a CycleError naming the first
// cycle found, or nil if the graph is a DAG.
func (g *Digraph) DetectCycle() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int, len(g.nodes))
	var path []int

	var dfs func(n int) error
	dfs = func(n int) error {
		color[n] = gray
		path = append(path, n)

		neighbors := append([]int(nil), g.adj[n]...)
		sort.Ints(neighbors)
		for _, m := range neighbors {
			if color[m] == gray {
				start := 0
				for i, p := range path {
					if p == m {
						start = i
						break
					}
				}
				cycle := append(append([]int(nil), path[start:]...), m)
				return &CycleError{Cycle: cycle}
			}
			if color[m] == white {
				if err := dfs(m); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return nil
	}

	ordered := make([]int, 0, len(g.nodes))
	for n := range g.nodes {
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)

	for _, n := range ordered {
		if color[n] == white {
			if err := dfs(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoSort returns nodes in a topological order (every edge from -> to has
// from before to), breaking ties by node ID for determinism, via Kahn's
// algorithm. Returns a *CycleError if the graph is not a DAG.
func (g *Digraph) TopoSort() ([]int, error) {
	indegree := make(map[int]int, len(g.nodes))
	for n := range g.nodes {
		indegree[n] = 0
	}
	for _, tos := range g.adj {
		for _, to := range tos {
			indegree[to]++
		}
	}

	var ready []int
	for n, d := range indegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Ints(ready)

	var order []int
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		neighbors := append([]int(nil), g.adj[n]...)
		sort.Ints(neighbors)
		for _, m := range neighbors {
			indegree[m]--
			if indegree[m] == 0 {
				ready = append(ready, m)
				sort.Ints(ready)
			}
		}
	}

	if len(order) != len(g.nodes) {
		if err := g.DetectCycle(); err != nil {
			return nil, err
		}
		return nil, &CycleError{}
	}
	return order, nil
}
