package pathgraph

import (
	"container/heap"
	"fmt"
	"slices"

	"github.com/samdwyer/basebuilder/internal/world"
)

// Goal decides which tile ends a search.
type Goal interface {
	Reached(t *world.Tile) bool
}

type cellGoal struct {
	p world.Point
}

func (g cellGoal) Reached(t *world.Tile) bool {
	return t.Point() == g.p
}

type predicateGoal func(t *world.Tile) bool

func (g predicateGoal) Reached(t *world.Tile) bool {
	return g(t)
}

// At returns a goal reached only at p.
func At(p world.Point) Goal {
	return cellGoal{p: p}
}

// Matching returns a goal reached at the first tile for which fn returns true, e.g. any tile holding a
// stockpile. The cheapest matching tile wins.
func Matching(fn func(t *world.Tile) bool) Goal {
	return predicateGoal(fn)
}

// Path is a route from start to goal, both included.
type Path struct {
	Tiles []*world.Tile
	Cost  float64
}

// Len returns the number of tiles on the path.
func (p Path) Len() int {
	return len(p.Tiles)
}

// Points returns the coordinates of the path's tiles in order.
func (p Path) Points() []world.Point {
	out := make([]world.Point, len(p.Tiles))
	for i, t := range p.Tiles {
		out[i] = t.Point()
	}
	return out
}

// End returns the last tile of the path, or nil for an empty path.
func (p Path) End() *world.Tile {
	if len(p.Tiles) == 0 {
		return nil
	}
	return p.Tiles[len(p.Tiles)-1]
}

// FindPath returns the cheapest route through g from start to the first tile satisfying goal.
//
// Edge costs are non-negative, so the search is uniform-cost: the frontier entry with the lowest
// accumulated cost is expanded first. When the goal is a single tile, a Manhattan (or, on diagonal
// graphs, Chebyshev) distance scaled by the cheapest edge in the graph is added as an admissible,
// consistent heuristic. Entries of equal priority are expanded in insertion order.
//
// A start tile without a node fails with ErrUnreachableStart and an exhausted search with
// ErrNoPathFound. A start that already satisfies goal yields a single-tile path of cost 0.
func FindPath(g *Graph, start world.Point, goal Goal) (Path, error) {
	src := g.Node(start)
	if src == nil {
		return Path{}, fmt.Errorf("%w: %v", ErrUnreachableStart, start)
	}
	if cg, ok := goal.(cellGoal); ok && g.Node(cg.p) == nil {
		return Path{}, fmt.Errorf("%w: %v to %v, goal is not part of the graph", ErrNoPathFound, start, cg.p)
	}

	h := heuristic(g, goal)

	var seq uint64
	open := &frontier{}
	heap.Init(open)

	first := &searchItem{node: src, g: 0, f: h(src), seq: seq}
	heap.Push(open, first)

	openSet := map[*Node]*searchItem{src: first}
	closedSet := make(map[*Node]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchItem)
		delete(openSet, current.node)

		if goal.Reached(current.node.Tile) {
			return reconstruct(current), nil
		}
		closedSet[current.node] = true

		for _, edge := range current.node.Edges {
			if closedSet[edge.To] {
				continue
			}

			tentativeG := current.g + edge.Cost

			next, exists := openSet[edge.To]
			if !exists {
				seq++
				next = &searchItem{
					node:   edge.To,
					g:      tentativeG,
					f:      tentativeG + h(edge.To),
					parent: current,
					seq:    seq,
				}
				heap.Push(open, next)
				openSet[edge.To] = next
			} else if tentativeG < next.g {
				// Found a cheaper way to a frontier node.
				next.f += tentativeG - next.g
				next.g = tentativeG
				next.parent = current
				heap.Fix(open, next.index)
			}
		}
	}

	return Path{}, fmt.Errorf("%w: from %v", ErrNoPathFound, start)
}

func reconstruct(end *searchItem) Path {
	var tiles []*world.Tile
	for it := end; it != nil; it = it.parent {
		tiles = append(tiles, it.node.Tile)
	}
	slices.Reverse(tiles)
	return Path{Tiles: tiles, Cost: end.g}
}

func heuristic(g *Graph, goal Goal) func(n *Node) float64 {
	cg, ok := goal.(cellGoal)
	if !ok || g.minCost == 0 {
		return func(*Node) float64 { return 0 }
	}
	scale := g.minCost
	diagonals := g.diagonals
	return func(n *Node) float64 {
		dx, dy := abs(n.Tile.X-cg.p.X), abs(n.Tile.Y-cg.p.Y)
		if diagonals {
			return float64(max(dx, dy)) * scale
		}
		return float64(dx+dy) * scale
	}
}
