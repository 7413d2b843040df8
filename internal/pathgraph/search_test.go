package pathgraph

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samdwyer/basebuilder/internal/world"
)

func pts(coords ...int) []world.Point {
	out := make([]world.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, world.Pt(coords[i], coords[i+1]))
	}
	return out
}

func TestFindPathCorridor(t *testing.T) {
	g := mustBuild(t, parseWorld(t, "..."), Options{})

	path, err := FindPath(g, world.Pt(0, 0), At(world.Pt(2, 0)))
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if diff := cmp.Diff(pts(0, 0, 1, 0, 2, 0), path.Points()); diff != "" {
		t.Errorf("FindPath() points (-want +got):\n%s", diff)
	}
	if path.Cost != 2 {
		t.Errorf("FindPath().Cost = %v, want 2", path.Cost)
	}
	if path.End().Point() != world.Pt(2, 0) {
		t.Errorf("FindPath().End() = %v, want (2,0)", path.End())
	}
}

func TestFindPathBlocked(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"zero cost tile", ".x."},
		{"wall", ".#."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, parseWorld(t, tt.row), Options{})
			_, err := FindPath(g, world.Pt(0, 0), At(world.Pt(2, 0)))
			if !errors.Is(err, ErrNoPathFound) {
				t.Errorf("FindPath() error = %v, want ErrNoPathFound", err)
			}
		})
	}
}

func TestFindPathUnreachableStart(t *testing.T) {
	g := mustBuild(t, parseWorld(t, " .."), Options{})

	for _, start := range []world.Point{world.Pt(0, 0), world.Pt(-1, 0), world.Pt(5, 5)} {
		_, err := FindPath(g, start, At(world.Pt(2, 0)))
		if !errors.Is(err, ErrUnreachableStart) {
			t.Errorf("FindPath(%v) error = %v, want ErrUnreachableStart", start, err)
		}
	}
}

func TestFindPathGoalOutsideGraph(t *testing.T) {
	g := mustBuild(t, parseWorld(t, ".. "), Options{})

	_, err := FindPath(g, world.Pt(0, 0), At(world.Pt(2, 0)))
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("FindPath() error = %v, want ErrNoPathFound", err)
	}
}

func TestFindPathStartIsGoal(t *testing.T) {
	g := mustBuild(t, parseWorld(t, "..."), Options{})

	path, err := FindPath(g, world.Pt(1, 0), At(world.Pt(1, 0)))
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if path.Len() != 1 || path.Tiles[0].Point() != world.Pt(1, 0) {
		t.Errorf("FindPath() = %v, want just the start tile", path.Points())
	}
	if path.Cost != 0 {
		t.Errorf("FindPath().Cost = %v, want 0", path.Cost)
	}
}

func TestFindPathPrefersCheaperLongerRoute(t *testing.T) {
	g := mustBuild(t, parseWorld(t,
		".9.",
		"...",
	), Options{})

	path, err := FindPath(g, world.Pt(0, 0), At(world.Pt(2, 0)))
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if diff := cmp.Diff(pts(0, 0, 0, 1, 1, 1, 2, 1, 2, 0), path.Points()); diff != "" {
		t.Errorf("FindPath() points (-want +got):\n%s", diff)
	}
	if path.Cost != 4 {
		t.Errorf("FindPath().Cost = %v, want 4", path.Cost)
	}
}

func TestFindPathChargesDestinationCost(t *testing.T) {
	g := mustBuild(t, parseWorld(t, "3,1"), Options{})

	tests := []struct {
		from, to int
		want     float64
	}{
		{0, 2, 3}, // enter rough (2) then 1
		{2, 0, 5}, // enter rough (2) then 3
	}
	for _, tt := range tests {
		path, err := FindPath(g, world.Pt(tt.from, 0), At(world.Pt(tt.to, 0)))
		if err != nil {
			t.Fatalf("FindPath(%d -> %d) error = %v", tt.from, tt.to, err)
		}
		if path.Cost != tt.want {
			t.Errorf("FindPath(%d -> %d).Cost = %v, want %v", tt.from, tt.to, path.Cost, tt.want)
		}
	}
}

func TestFindPathMatchingGoal(t *testing.T) {
	w := parseWorld(t,
		".....",
		".....",
		".....",
	)
	stockpile := &world.Prototype{Type: world.StockpileType, MovementCost: 1}
	for _, p := range []world.Point{world.Pt(4, 0), world.Pt(1, 2)} {
		if _, err := w.PlaceFurniture(stockpile, p.X, p.Y); err != nil {
			t.Fatalf("PlaceFurniture(%v) error = %v", p, err)
		}
	}
	g := mustBuild(t, w, Options{})

	isStockpile := Matching(func(tile *world.Tile) bool {
		f := w.FurnitureAt(tile.Point())
		return f != nil && f.IsStockpile()
	})

	path, err := FindPath(g, world.Pt(0, 0), isStockpile)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if got := path.End().Point(); got != world.Pt(1, 2) {
		t.Errorf("FindPath() ended at %v, want nearest stockpile (1,2)", got)
	}
	if path.Cost != 3 {
		t.Errorf("FindPath().Cost = %v, want 3", path.Cost)
	}

	none := Matching(func(*world.Tile) bool { return false })
	if _, err := FindPath(g, world.Pt(0, 0), none); !errors.Is(err, ErrNoPathFound) {
		t.Errorf("FindPath(unsatisfiable) error = %v, want ErrNoPathFound", err)
	}
}

func TestFindPathDiagonals(t *testing.T) {
	w := parseWorld(t,
		"...",
		"...",
		"...",
	)

	tests := []struct {
		name      string
		diagonals bool
		wantCost  float64
		wantLen   int
	}{
		{"orthogonal", false, 4, 5},
		{"diagonal", true, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, w, Options{Diagonals: tt.diagonals})
			path, err := FindPath(g, world.Pt(0, 0), At(world.Pt(2, 2)))
			if err != nil {
				t.Fatalf("FindPath() error = %v", err)
			}
			if path.Cost != tt.wantCost || path.Len() != tt.wantLen {
				t.Errorf("FindPath() cost=%v len=%d, want cost=%v len=%d", path.Cost, path.Len(), tt.wantCost, tt.wantLen)
			}
		})
	}
}

func TestFindPathIsDeterministic(t *testing.T) {
	g := mustBuild(t, parseWorld(t,
		".....",
		".....",
		".....",
		".....",
	), Options{})

	first, err := FindPath(g, world.Pt(0, 0), At(world.Pt(4, 3)))
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := FindPath(g, world.Pt(0, 0), At(world.Pt(4, 3)))
		if err != nil {
			t.Fatalf("FindPath() error = %v", err)
		}
		if diff := cmp.Diff(first.Points(), again.Points()); diff != "" {
			t.Fatalf("run %d chose a different route (-first +again):\n%s", i, diff)
		}
	}
}

// The heuristic used for single-tile goals must never change the cost of the answer.
func TestFindPathHeuristicKeepsOptimalCost(t *testing.T) {
	for _, diagonals := range []bool{false, true} {
		rng := rand.New(rand.NewSource(42))
		w := world.NewWorld(world.DefaultWidth, world.DefaultHeight)
		world.Generate(t.Context(), w, rng)
		g := mustBuild(t, w, Options{Diagonals: diagonals})

		nodes := g.Nodes()
		for i := 0; i < 50; i++ {
			from := nodes[rng.Intn(len(nodes))].Point()
			to := nodes[rng.Intn(len(nodes))].Point()

			astar, errA := FindPath(g, from, At(to))
			uniform, errU := FindPath(g, from, Matching(func(tile *world.Tile) bool { return tile.Point() == to }))
			if (errA == nil) != (errU == nil) {
				t.Fatalf("diagonals=%v %v -> %v: At error %v, Matching error %v", diagonals, from, to, errA, errU)
			}
			if errA != nil {
				continue
			}
			if astar.Cost != uniform.Cost {
				t.Errorf("diagonals=%v %v -> %v: At cost %v, Matching cost %v", diagonals, from, to, astar.Cost, uniform.Cost)
			}
		}
	}
}
