package world

import (
	"errors"
	"testing"
)

// recorder collects change notifications.
type recorder struct {
	placed  []*Furniture
	removed []*Furniture
	cost    []Point
	loaded  int
}

func (r *recorder) OnObjectPlaced(f *Furniture)  { r.placed = append(r.placed, f) }
func (r *recorder) OnObjectRemoved(f *Furniture) { r.removed = append(r.removed, f) }
func (r *recorder) OnCellCostChanged(t *Tile)    { r.cost = append(r.cost, t.Point()) }
func (r *recorder) OnWorldLoaded()               { r.loaded++ }

// floorWorld returns a w×h world of Floor tiles with a recorder attached after setup.
func floorWorld(t *testing.T, w, h int) (*World, *recorder) {
	t.Helper()
	wd := NewWorld(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := wd.SetTileType(x, y, TileFloor); err != nil {
				t.Fatal(err)
			}
		}
	}
	rec := &recorder{}
	wd.SetListener(rec)
	return wd, rec
}

func TestTileTypeNames(t *testing.T) {
	for _, typ := range []TileType{TileEmpty, TileFloor, TileRough} {
		got, err := ParseTileType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseTileType(%q) = %v, %v; want %v", typ.String(), got, err, typ)
		}
	}
	if _, err := ParseTileType("lava"); err == nil {
		t.Error("ParseTileType(lava) should fail")
	}
	if TileType(7).String() != "unknown" {
		t.Errorf("TileType(7).String() = %q, want unknown", TileType(7).String())
	}
}

func TestNeighbourSlots(t *testing.T) {
	w, _ := floorWorld(t, 3, 3)

	center := w.Neighbours(w.TileAt(1, 1), true)
	want := []Point{{1, 0}, {2, 1}, {1, 2}, {0, 1}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	for i, n := range center {
		if n == nil || n.Point() != want[i] {
			t.Errorf("Neighbours(1,1)[%d] = %v, want %v", i, n, want[i])
		}
	}

	corner := w.Neighbours(w.TileAt(0, 0), false)
	if len(corner) != 4 {
		t.Fatalf("Neighbours(0,0) has %d slots, want 4", len(corner))
	}
	if corner[0] != nil || corner[3] != nil {
		t.Error("Out-of-bounds neighbour slots should be nil")
	}
	if corner[1].Point() != Pt(1, 0) || corner[2].Point() != Pt(0, 1) {
		t.Errorf("Neighbours(0,0) = %v, %v; want (1,0), (0,1)", corner[1], corner[2])
	}
}

func TestMovementCost(t *testing.T) {
	w, _ := floorWorld(t, 5, 1)
	table := &Prototype{Type: "Table", MovementCost: 3, Flammable: true}
	wall := &Prototype{Type: "Wall", MovementCost: 0}

	f, err := w.PlaceFurniture(table, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.PlaceFurniture(wall, 2, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.SetTileCost(3, 0, 4); err != nil {
		t.Fatal(err)
	}
	if err := w.SetTileType(4, 0, TileEmpty); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x    int
		want float64
	}{
		{0, 1},
		{1, 3},
		{2, 0},
		{3, 4},
		{4, 0},
	}
	for _, tt := range tests {
		if got := w.MovementCost(w.TileAt(tt.x, 0)); got != tt.want {
			t.Errorf("MovementCost(%d,0) = %v, want %v", tt.x, got, tt.want)
		}
	}

	if err := w.Ignite(f); err != nil {
		t.Fatal(err)
	}
	if got := w.MovementCost(w.TileAt(1, 0)); got != 3*DefaultFireMultiplier {
		t.Errorf("MovementCost(burning table) = %v, want %v", got, 3*DefaultFireMultiplier)
	}
	if w.MovementCost(nil) != 0 {
		t.Error("MovementCost(nil) should be 0")
	}
	if w.IsPassable(2, 0) || !w.IsPassable(0, 0) || w.IsPassable(-1, 0) {
		t.Error("IsPassable disagrees with MovementCost")
	}
}

func TestTileMutationNotifies(t *testing.T) {
	w, rec := floorWorld(t, 3, 1)

	if err := w.SetTileType(0, 0, TileFloor); err != nil {
		t.Fatal(err)
	}
	if err := w.SetTileCost(1, 0, 1); err != nil {
		t.Fatal(err)
	}
	if len(rec.cost) != 0 {
		t.Errorf("No-op mutations notified %v", rec.cost)
	}

	if err := w.SetTileType(0, 0, TileRough); err != nil {
		t.Fatal(err)
	}
	if err := w.SetTileCost(1, 0, 5); err != nil {
		t.Fatal(err)
	}
	if len(rec.cost) != 2 || rec.cost[0] != Pt(0, 0) || rec.cost[1] != Pt(1, 0) {
		t.Errorf("cost notifications = %v, want [(0,0) (1,0)]", rec.cost)
	}
}

func TestTileMutationErrors(t *testing.T) {
	w, _ := floorWorld(t, 2, 1)
	if _, err := w.PlaceFurniture(&Prototype{Type: "Sofa", MovementCost: 2}, 0, 0); err != nil {
		t.Fatal(err)
	}

	if err := w.SetTileType(5, 0, TileFloor); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetTileType(out of bounds) error = %v, want ErrOutOfBounds", err)
	}
	if err := w.SetTileType(0, 0, TileEmpty); !errors.Is(err, ErrOccupied) {
		t.Errorf("SetTileType(empty under furniture) error = %v, want ErrOccupied", err)
	}
	if err := w.SetTileCost(1, 0, -1); err == nil {
		t.Error("SetTileCost(negative) should fail")
	}
	if err := w.SetTileCost(0, 9, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetTileCost(out of bounds) error = %v, want ErrOutOfBounds", err)
	}
}

func TestTypeCostOverride(t *testing.T) {
	w := NewWorld(2, 1)
	w.SetTypeCost(TileRough, 5)

	if err := w.SetTileType(0, 0, TileRough); err != nil {
		t.Fatal(err)
	}
	if err := w.SetTileType(1, 0, TileFloor); err != nil {
		t.Fatal(err)
	}
	if got := w.TileAt(0, 0).BaseCost(); got != 5 {
		t.Errorf("rough BaseCost() = %v, want 5", got)
	}
	if got := w.TileAt(1, 0).BaseCost(); got != 1 {
		t.Errorf("floor BaseCost() = %v, want 1", got)
	}
}

func TestLoadNotifiesOnce(t *testing.T) {
	w, rec := floorWorld(t, 3, 1)

	err := w.Load(func(w *World) error {
		w.Reset(4, 2)
		for x := 0; x < 4; x++ {
			if err := w.SetTileType(x, 0, TileFloor); err != nil {
				return err
			}
		}
		_, err := w.PlaceFurniture(&Prototype{Type: "Wall"}, 0, 0)
		return err
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if rec.loaded != 1 || len(rec.cost) != 0 || len(rec.placed) != 0 {
		t.Errorf("Load() sent loaded=%d cost=%d placed=%d, want 1, 0, 0", rec.loaded, len(rec.cost), len(rec.placed))
	}
	if w.Width() != 4 || w.Height() != 2 {
		t.Errorf("size = %dx%d, want 4x2", w.Width(), w.Height())
	}

	// Load reports failure but still notifies.
	boom := errors.New("boom")
	if err := w.Load(func(*World) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want boom", err)
	}
	if rec.loaded != 2 {
		t.Errorf("loaded = %d, want 2", rec.loaded)
	}

	w.Reset(1, 1)
	if rec.loaded != 3 {
		t.Errorf("Reset() outside Load should notify, loaded = %d", rec.loaded)
	}
}

func TestLoadPanicRestoresNotifications(t *testing.T) {
	w, rec := floorWorld(t, 2, 1)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Load() swallowed the panic")
			}
		}()
		_ = w.Load(func(*World) error { panic("bad load") })
	}()

	if rec.loaded != 1 {
		t.Errorf("loaded = %d after a panicking Load, want 1", rec.loaded)
	}
	if err := w.SetTileType(1, 0, TileRough); err != nil {
		t.Fatalf("SetTileType() error = %v", err)
	}
	if len(rec.cost) != 1 {
		t.Errorf("cost notifications = %d after Load, want 1", len(rec.cost))
	}
}
