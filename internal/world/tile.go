// Package world provides the colony map: tiles, furniture and map generation.
package world

import "fmt"

// TileType is the terrain kind of a tile.
type TileType int

const (
	// TileEmpty is void space outside any room. Empty tiles are never part of the path graph.
	TileEmpty TileType = iota
	// TileFloor is a constructed floor tile.
	TileFloor
	// TileRough is uneven ground that is slower to cross.
	TileRough
)

// String returns the tile type name.
func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileFloor:
		return "floor"
	case TileRough:
		return "rough"
	default:
		return "unknown"
	}
}

// ParseTileType returns the tile type with the given name.
func ParseTileType(s string) (TileType, error) {
	switch s {
	case "empty":
		return TileEmpty, nil
	case "floor":
		return TileFloor, nil
	case "rough":
		return TileRough, nil
	default:
		return TileEmpty, fmt.Errorf("unknown tile type %q", s)
	}
}

// DefaultCost returns the base movement cost a tile of this type starts with.
func (t TileType) DefaultCost() float64 {
	switch t {
	case TileFloor:
		return 1
	case TileRough:
		return 2
	default:
		return 0
	}
}

// Rune returns the tile's display character.
func (t TileType) Rune() rune {
	switch t {
	case TileFloor:
		return '.'
	case TileRough:
		return ','
	default:
		return ' '
	}
}

// Point is a cell coordinate. It is also the identity of a tile.
type Point struct {
	X, Y int
}

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns the sum of two points.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// String returns "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile is a single grid square. Tiles are owned by a World and handed out by pointer.
type Tile struct {
	X, Y int
	Type TileType

	// cost is the base movement cost. Furniture and fire are folded in by World.MovementCost.
	cost float64
}

// Point returns the tile's coordinates.
func (t *Tile) Point() Point {
	return Point{X: t.X, Y: t.Y}
}

// BaseCost returns the tile's own movement cost, ignoring furniture.
func (t *Tile) BaseCost() float64 {
	if t.Type == TileEmpty {
		return 0
	}
	return t.cost
}

// String returns a debug representation of the tile.
func (t *Tile) String() string {
	return fmt.Sprintf("%s@(%d,%d)", t.Type, t.X, t.Y)
}
