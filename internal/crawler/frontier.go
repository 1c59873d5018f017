package crawler

import "github.com/alvmarrod/web-atlas/internal/graph"

// frontierEntry pairs a discovered node with its hop distance from the
// seed.
type frontierEntry struct {
	node  *graph.Node
	depth int
}

// frontier is the FIFO queue of discovered-but-unexpanded nodes driving a
// breadth-first traversal. A node ID is accepted at most once per
// traversal, at the first depth it was discovered.
type frontier struct {
	items []frontierEntry
	seen  map[string]bool
}

func newFrontier() *frontier {
	return &frontier{
		seen: make(map[string]bool),
	}
}

// push enqueues a node at the given depth. Returns false if the node ID
// was already seen by this frontier.
func (f *frontier) push(n *graph.Node, depth int) bool {
	if f.seen[n.ID] {
		return false
	}
	f.seen[n.ID] = true
	f.items = append(f.items, frontierEntry{node: n, depth: depth})
	return true
}

// pop removes and returns the oldest entry. The third return value is
// false when the frontier is empty.
func (f *frontier) pop() (*graph.Node, int, bool) {
	if len(f.items) == 0 {
		return nil, 0, false
	}
	entry := f.items[0]
	f.items = f.items[1:]
	return entry.node, entry.depth, true
}

func (f *frontier) len() int {
	return len(f.items)
}
