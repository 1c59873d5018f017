package graph

import "sync"

// Graph is a mutable collection of nodes and the directed links between
// them. Nodes are keyed by ID, and edges are stored as per-source sets of
// target IDs, so repeated insertions of the same node or link collapse to
// a single entry. All methods are safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]map[string]struct{}),
	}
}

// AddNode inserts a node, keeping the existing entry when the ID is
// already present. Returns true if the node was new.
func (g *Graph) AddNode(n *Node) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	g.nodes[n.ID] = n
	return true
}

// AddEdge records a directed link between two node IDs. Endpoints are not
// required to be present in the node set: a discovered-but-unexpanded
// neighbor may exist only as an edge target until it is visited.
func (g *Graph) AddEdge(fromID, toID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addEdgeLocked(fromID, toID)
}

func (g *Graph) addEdgeLocked(fromID, toID string) {
	targets, ok := g.edges[fromID]
	if !ok {
		targets = make(map[string]struct{})
		g.edges[fromID] = targets
	}
	targets[toID] = struct{}{}
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID is present.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the directed link fromID -> toID is present.
func (g *Graph) HasEdge(fromID, toID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.edges[fromID][toID]
	return ok
}

// Nodes returns all nodes in the graph. Order is not specified.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Neighbors returns the target IDs linked from the given node ID. Order is
// not specified.
func (g *Graph) Neighbors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	targets := g.edges[id]
	if len(targets) == 0 {
		return nil
	}
	neighbors := make([]string, 0, len(targets))
	for to := range targets {
		neighbors = append(neighbors, to)
	}
	return neighbors
}

// Edges returns a snapshot of all directed links as a source-ID to
// target-IDs mapping.
func (g *Graph) Edges() map[string][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		tos := make([]string, 0, len(targets))
		for to := range targets {
			tos = append(tos, to)
		}
		edges[from] = tos
	}
	return edges
}

// Order returns the number of nodes in the graph.
func (g *Graph) Order() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of distinct directed links in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, targets := range g.edges {
		count += len(targets)
	}
	return count
}

// Merge folds other's nodes and edges into g in place, as an ID-keyed
// union. Nodes already present in g are kept; duplicate links collapse.
// Merging the same graph repeatedly, or two graphs in either order, yields
// the same final node and edge sets. Merging a graph into itself is a
// no-op.
func (g *Graph) Merge(other *Graph) {
	if other == nil || other == g {
		return
	}

	other.mu.RLock()
	defer other.mu.RUnlock()
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, n := range other.nodes {
		if _, exists := g.nodes[id]; !exists {
			g.nodes[id] = n
		}
	}
	for from, targets := range other.edges {
		for to := range targets {
			g.addEdgeLocked(from, to)
		}
	}
}
