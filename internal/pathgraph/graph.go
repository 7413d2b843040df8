// Package pathgraph builds a weighted, directed graph of the walkable world and answers shortest-path
// queries against it.
//
// A Graph is one generation: it is built in a single pass from the current tiles and never mutated
// afterwards. The Controller owns the current generation, throws it away whenever the world reports a
// change, and rebuilds it on the next query.
package pathgraph

import (
	"errors"

	"github.com/samdwyer/basebuilder/internal/world"
)

// Errors returned by Build and FindPath. Callers match them with errors.Is.
var (
	// ErrUnreachableStart means the start tile has no node (it is Empty or off the map).
	ErrUnreachableStart = errors.New("pathgraph: start is not part of the graph")
	// ErrNoPathFound means the search was exhausted without reaching the goal.
	ErrNoPathFound = errors.New("pathgraph: no path found")
	// ErrMalformedGrid means the grid broke its contract while a graph was being built.
	ErrMalformedGrid = errors.New("pathgraph: malformed grid")
)

// Edge is a directed connection to a neighbouring node. Cost is the destination tile's movement cost at
// build time.
type Edge struct {
	To   *Node
	Cost float64
}

// Node wraps exactly one non-Empty tile.
type Node struct {
	Tile  *world.Tile
	Edges []Edge
}

// Point returns the coordinates of the wrapped tile.
func (n *Node) Point() world.Point {
	return n.Tile.Point()
}

// Graph is a single immutable generation of the tile graph.
type Graph struct {
	nodes      map[world.Point]*Node
	order      []*Node
	diagonals  bool
	minCost    float64
	edgeCount  int
	generation uint64
}

// Node returns the node for p, or nil if p is not part of the graph.
func (g *Graph) Node(p world.Point) *Node {
	return g.nodes[p]
}

// Nodes returns every node in row-major order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	copy(out, g.order)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Diagonals reports whether the graph was built with diagonal neighbours.
func (g *Graph) Diagonals() bool {
	return g.diagonals
}

// MinCost returns the smallest edge cost in the graph, or 0 if it has no edges.
func (g *Graph) MinCost() float64 {
	return g.minCost
}

// Generation returns the build number assigned by the Controller. Graphs built directly with Build
// report 0.
func (g *Graph) Generation() uint64 {
	return g.generation
}

// Edge returns the edge from a to b, if any.
func (g *Graph) Edge(a, b world.Point) (Edge, bool) {
	n := g.nodes[a]
	if n == nil {
		return Edge{}, false
	}
	for _, e := range n.Edges {
		if e.To.Point() == b {
			return e, true
		}
	}
	return Edge{}, false
}
