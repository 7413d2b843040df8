package world

import (
	"context"
	"math/rand"
	"testing"
)

func TestGenerateReproducibility(t *testing.T) {
	// Generate two worlds with the same seed
	seed := int64(12345)

	w1 := NewWorld(DefaultWidth, DefaultHeight)
	w2 := NewWorld(DefaultWidth, DefaultHeight)

	ctx := context.Background()
	l1 := Generate(ctx, w1, rand.New(rand.NewSource(seed)))
	l2 := Generate(ctx, w2, rand.New(rand.NewSource(seed)))

	// Verify same number of rooms
	if len(l1.Rooms) != len(l2.Rooms) {
		t.Fatalf("Room count mismatch: %d != %d", len(l1.Rooms), len(l2.Rooms))
	}

	// Verify rooms are in same positions
	for i := range l1.Rooms {
		if l1.Rooms[i] != l2.Rooms[i] {
			t.Errorf("Room %d mismatch: %+v != %+v", i, l1.Rooms[i], l2.Rooms[i])
		}
	}

	// Verify tiles are identical
	for y := 0; y < w1.Height(); y++ {
		for x := 0; x < w1.Width(); x++ {
			if *w1.TileAt(x, y) != *w2.TileAt(x, y) {
				t.Errorf("Tile mismatch at (%d,%d): %v != %v", x, y, w1.TileAt(x, y), w2.TileAt(x, y))
			}
		}
	}

	if len(l1.WallSites) != len(l2.WallSites) {
		t.Errorf("Wall site count mismatch: %d != %d", len(l1.WallSites), len(l2.WallSites))
	}
}

func TestGenerateDifferentSeeds(t *testing.T) {
	// Generate two worlds with different seeds - they should be different
	w1 := NewWorld(DefaultWidth, DefaultHeight)
	w2 := NewWorld(DefaultWidth, DefaultHeight)

	ctx := context.Background()
	l1 := Generate(ctx, w1, rand.New(rand.NewSource(12345)))
	l2 := Generate(ctx, w2, rand.New(rand.NewSource(54321)))

	// With different seeds, at least room positions should differ
	if len(l1.Rooms) == len(l2.Rooms) {
		allSame := true
		for i := range l1.Rooms {
			if l1.Rooms[i] != l2.Rooms[i] {
				allSame = false
				break
			}
		}
		if allSame {
			t.Error("Different seeds produced identical room layouts")
		}
	}
}

func TestGenerateLayout(t *testing.T) {
	w := NewWorld(DefaultWidth, DefaultHeight)
	layout := Generate(context.Background(), w, rand.New(rand.NewSource(42)))

	if len(layout.Rooms) < 2 {
		t.Fatalf("Expected at least 2 rooms, got %d", len(layout.Rooms))
	}

	// Borders stay Empty
	for x := 0; x < w.Width(); x++ {
		for _, y := range []int{0, w.Height() - 1} {
			if w.TileAt(x, y).Type != TileEmpty {
				t.Errorf("Border tile (%d,%d) is %v, want empty", x, y, w.TileAt(x, y).Type)
			}
		}
	}

	// Rooms are walkable
	for i, room := range layout.Rooms {
		cx, cy := room.Center()
		if w.TileAt(cx, cy).Type == TileEmpty {
			t.Errorf("Room %d center (%d,%d) is empty", i, cx, cy)
		}
	}

	rough := 0
	w.ForEachTile(func(tile *Tile) {
		if tile.Type == TileRough {
			rough++
		}
	})
	if rough == 0 {
		t.Error("Expected some rough terrain")
	}

	// Wall sites are floor on a room perimeter and accept a wall
	wall := &Prototype{Type: "Wall"}
	for _, p := range layout.WallSites {
		onPerimeter := false
		for _, room := range layout.Rooms {
			if room.Contains(p.X, p.Y) && !room.Interior(p) {
				onPerimeter = true
				break
			}
		}
		if !onPerimeter {
			t.Errorf("Wall site %v is not on a room perimeter", p)
		}
		if err := w.CanPlace(wall, p.X, p.Y); err != nil {
			t.Errorf("CanPlace(wall, %v) error = %v", p, err)
		}
	}
}

func TestRoomPerimeter(t *testing.T) {
	r := Room{X: 2, Y: 3, Width: 4, Height: 3}
	per := r.Perimeter()

	if len(per) != 10 {
		t.Fatalf("Perimeter() has %d tiles, want 10", len(per))
	}
	seen := make(map[Point]bool)
	for _, p := range per {
		if seen[p] {
			t.Errorf("Perimeter() repeats %v", p)
		}
		seen[p] = true
		if r.Interior(p) || !r.Contains(p.X, p.Y) {
			t.Errorf("Perimeter() tile %v is not on the edge", p)
		}
	}
	if (Room{X: 0, Y: 0, Width: 1, Height: 1}).Perimeter()[0] != Pt(0, 0) {
		t.Error("1x1 room perimeter should be its only tile")
	}
}
