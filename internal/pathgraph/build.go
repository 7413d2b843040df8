package pathgraph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/basebuilder/internal/ctxlog"
	"github.com/samdwyer/basebuilder/internal/telemetry"
	"github.com/samdwyer/basebuilder/internal/world"
)

// Grid is the view of the map the builder reads. *world.World implements it.
type Grid interface {
	Width() int
	Height() int
	// TileAt returns nil outside the grid.
	TileAt(x, y int) *world.Tile
	// Neighbours returns one slot per direction, nil where the neighbour is off the grid.
	Neighbours(t *world.Tile, diagonals bool) []*world.Tile
	// MovementCost is the effective cost of entering t; 0 means impassable.
	MovementCost(t *world.Tile) float64
}

// Options controls graph construction.
type Options struct {
	// Diagonals links each tile to its eight surrounding tiles instead of the four orthogonal ones.
	Diagonals bool
}

// Build scans grid and returns a new graph with one node per non-Empty tile and an edge from every node
// to each neighbour whose movement cost is positive, weighted by that cost.
//
// Build is a pure function of the grid at call time. A grid that breaks its contract aborts the build
// with ErrMalformedGrid and no graph is returned.
func Build(ctx context.Context, grid Grid, opts Options) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	tracer := telemetry.Tracer("pathgraph")
	_, span := tracer.Start(ctx, "pathgraph.build")
	defer span.End()

	startTime := time.Now()

	g, err := build(grid, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		logger.Error("pathgraph: build failed", "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("pathgraph.nodes", g.NodeCount()),
		attribute.Int("pathgraph.edges", g.EdgeCount()),
		attribute.Bool("pathgraph.diagonals", opts.Diagonals),
		attribute.Int64("pathgraph.build_ms", time.Since(startTime).Milliseconds()),
	)
	logger.Debug("pathgraph: built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

func build(grid Grid, opts Options) (*Graph, error) {
	g := &Graph{
		nodes:     make(map[world.Point]*Node),
		diagonals: opts.Diagonals,
	}

	// First pass: a node for every tile that is part of the world.
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			t := grid.TileAt(x, y)
			if t == nil {
				return nil, fmt.Errorf("%w: no tile at (%d,%d)", ErrMalformedGrid, x, y)
			}
			if t.X != x || t.Y != y {
				return nil, fmt.Errorf("%w: tile %v returned for (%d,%d)", ErrMalformedGrid, t.Point(), x, y)
			}
			if t.Type == world.TileEmpty {
				continue
			}
			n := &Node{Tile: t}
			g.nodes[t.Point()] = n
			g.order = append(g.order, n)
		}
	}

	// Second pass: edges into every traversable neighbour.
	for _, n := range g.order {
		neighbours := grid.Neighbours(n.Tile, opts.Diagonals)
		edges := make([]Edge, 0, len(neighbours))
		for _, nb := range neighbours {
			if nb == nil {
				continue
			}
			cost := grid.MovementCost(nb)
			if cost <= 0 {
				continue
			}
			if !adjacent(n.Tile, nb, opts.Diagonals) {
				return nil, fmt.Errorf("%w: %v is not adjacent to %v", ErrMalformedGrid, nb.Point(), n.Point())
			}
			to := g.nodes[nb.Point()]
			if to == nil {
				return nil, fmt.Errorf("%w: walkable neighbour %v of %v has no node", ErrMalformedGrid, nb.Point(), n.Point())
			}
			edges = append(edges, Edge{To: to, Cost: cost})
			if g.minCost == 0 || cost < g.minCost {
				g.minCost = cost
			}
		}
		n.Edges = edges
		g.edgeCount += len(edges)
	}

	return g, nil
}

func adjacent(a, b *world.Tile, diagonals bool) bool {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if diagonals {
		return max(dx, dy) == 1
	}
	return dx+dy == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
