package pathgraph

import (
	"testing"

	"github.com/samdwyer/basebuilder/internal/world"
)

var wallProto = &world.Prototype{Type: "Wall", MovementCost: 0, LinksToNeighbour: true}

// parseWorld builds a world from rows of characters:
//
//	' '     empty
//	'.'     floor
//	','     rough
//	'#'     floor with a wall on it
//	'x'     floor with base cost 0
//	'1'-'9' floor with that base cost
func parseWorld(t *testing.T, rows ...string) *world.World {
	t.Helper()
	w := world.NewWorld(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != w.Width() {
			t.Fatalf("row %d has width %d, want %d", y, len(row), w.Width())
		}
		for x := 0; x < len(row); x++ {
			ch := row[x]
			var err error
			switch {
			case ch == ' ':
			case ch == '.':
				err = w.SetTileType(x, y, world.TileFloor)
			case ch == ',':
				err = w.SetTileType(x, y, world.TileRough)
			case ch == '#':
				if err = w.SetTileType(x, y, world.TileFloor); err == nil {
					_, err = w.PlaceFurniture(wallProto, x, y)
				}
			case ch == 'x':
				if err = w.SetTileType(x, y, world.TileFloor); err == nil {
					err = w.SetTileCost(x, y, 0)
				}
			case ch >= '1' && ch <= '9':
				if err = w.SetTileType(x, y, world.TileFloor); err == nil {
					err = w.SetTileCost(x, y, float64(ch-'0'))
				}
			default:
				t.Fatalf("unknown map character %q", ch)
			}
			if err != nil {
				t.Fatalf("parseWorld (%d,%d): %v", x, y, err)
			}
		}
	}
	return w
}

func mustBuild(t *testing.T, g Grid, opts Options) *Graph {
	t.Helper()
	graph, err := Build(t.Context(), g, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return graph
}

// edgeView is a comparable summary of a node's edges.
type edgeView struct {
	To   world.Point
	Cost float64
}

func snapshotGraph(g *Graph) map[world.Point][]edgeView {
	out := make(map[world.Point][]edgeView, g.NodeCount())
	for _, n := range g.Nodes() {
		edges := make([]edgeView, 0, len(n.Edges))
		for _, e := range n.Edges {
			edges = append(edges, edgeView{To: e.To.Point(), Cost: e.Cost})
		}
		out[n.Point()] = edges
	}
	return out
}
