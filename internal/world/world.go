package world

import "fmt"

const (
	// DefaultWidth and DefaultHeight are the default map dimensions.
	DefaultWidth  = 80
	DefaultHeight = 24

	// DefaultFireMultiplier is how much slower a burning tile is to cross.
	DefaultFireMultiplier = 3.0
)

// ChangeListener receives notifications for every mutation that can change walkability or movement cost.
// Mutators call these methods directly; the world holds a single listener.
type ChangeListener interface {
	OnObjectPlaced(f *Furniture)
	OnObjectRemoved(f *Furniture)
	OnCellCostChanged(t *Tile)
	// OnWorldLoaded is sent once after World.Load completes.
	OnWorldLoaded()
}

// World is the colony map. It owns its tiles and its furniture; the association between them is the
// occupancy table keyed by Point.
type World struct {
	width  int
	height int
	tiles  [][]Tile

	occupancy map[Point]*Furniture
	furniture []*Furniture
	index     *footprintIndex

	typeCosts      map[TileType]float64
	fireMultiplier float64
	burnTime       float64

	listener ChangeListener
	loading  bool
}

// NewWorld creates a world of the given size with every tile Empty.
func NewWorld(width, height int) *World {
	w := &World{
		typeCosts:      make(map[TileType]float64),
		fireMultiplier: DefaultFireMultiplier,
		burnTime:       DefaultBurnTime,
	}
	w.allocate(width, height)
	return w
}

func (w *World) allocate(width, height int) {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = Tile{X: x, Y: y, Type: TileEmpty}
		}
	}
	w.width = width
	w.height = height
	w.tiles = tiles
	w.occupancy = make(map[Point]*Furniture)
	w.furniture = nil
	w.index = newFootprintIndex()
}

// Width returns the map width in tiles.
func (w *World) Width() int { return w.width }

// Height returns the map height in tiles.
func (w *World) Height() int { return w.height }

// SetListener registers the receiver of change notifications. A nil listener disables notifications.
func (w *World) SetListener(l ChangeListener) {
	w.listener = l
}

// SetFireMultiplier sets the cost multiplier applied to tiles under burning furniture.
func (w *World) SetFireMultiplier(m float64) {
	w.fireMultiplier = m
}

// FireMultiplier returns the cost multiplier applied to tiles under burning furniture.
func (w *World) FireMultiplier() float64 {
	return w.fireMultiplier
}

// SetBurnTime sets the fuel given to furniture ignited without a fuel parameter.
func (w *World) SetBurnTime(t float64) {
	w.burnTime = t
}

// SetTypeCost overrides the base cost newly typed tiles of t receive.
// Existing tiles keep their cost.
func (w *World) SetTypeCost(t TileType, cost float64) {
	w.typeCosts[t] = cost
}

func (w *World) typeCost(t TileType) float64 {
	if c, ok := w.typeCosts[t]; ok {
		return c
	}
	return t.DefaultCost()
}

// InBounds reports whether (x,y) lies inside the map.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.width && y >= 0 && y < w.height
}

// TileAt returns the tile at the given position, or nil if it is out of bounds.
func (w *World) TileAt(x, y int) *Tile {
	if !w.InBounds(x, y) {
		return nil
	}
	return &w.tiles[y][x]
}

// Tile returns the tile at p, or nil if it is out of bounds.
func (w *World) Tile(p Point) *Tile {
	return w.TileAt(p.X, p.Y)
}

// neighbour offsets in slot order: N, E, S, W, then NE, SE, SW, NW. Y grows downwards.
var neighbourOffsets = [8]Point{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// Neighbours returns the tiles around t, one slot per direction: N, E, S, W and, when diagonals is set,
// NE, SE, SW, NW. Slots outside the map are nil.
func (w *World) Neighbours(t *Tile, diagonals bool) []*Tile {
	n := 4
	if diagonals {
		n = 8
	}
	out := make([]*Tile, n)
	for i := 0; i < n; i++ {
		o := neighbourOffsets[i]
		out[i] = w.TileAt(t.X+o.X, t.Y+o.Y)
	}
	return out
}

// MovementCost returns the effective cost of entering t: the tile's base cost multiplied by the cost of
// any furniture on it, and by the fire multiplier while that furniture burns. Zero means impassable.
func (w *World) MovementCost(t *Tile) float64 {
	if t == nil {
		return 0
	}
	cost := t.BaseCost()
	if cost == 0 {
		return 0
	}
	if f := w.occupancy[t.Point()]; f != nil {
		cost *= f.MovementCost()
		if f.Burning() {
			cost *= w.fireMultiplier
		}
	}
	return cost
}

// IsPassable returns true if the given position can be walked on.
func (w *World) IsPassable(x, y int) bool {
	return w.MovementCost(w.TileAt(x, y)) > 0
}

// SetTileType changes a tile's type and resets its base cost to the type's cost.
func (w *World) SetTileType(x, y int, typ TileType) error {
	t := w.TileAt(x, y)
	if t == nil {
		return fmt.Errorf("set tile type at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if typ == TileEmpty && w.occupancy[t.Point()] != nil {
		return fmt.Errorf("set tile type at (%d,%d): %w", x, y, ErrOccupied)
	}
	before, beforeType := w.MovementCost(t), t.Type
	t.Type = typ
	t.cost = w.typeCost(typ)
	if before != w.MovementCost(t) || beforeType != typ {
		w.notifyCostChanged(t)
	}
	return nil
}

// SetTileCost overrides the base movement cost of a tile. Cost must not be negative.
func (w *World) SetTileCost(x, y int, cost float64) error {
	t := w.TileAt(x, y)
	if t == nil {
		return fmt.Errorf("set tile cost at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if cost < 0 {
		return fmt.Errorf("set tile cost at (%d,%d): negative cost %v", x, y, cost)
	}
	before := w.MovementCost(t)
	t.cost = cost
	if before != w.MovementCost(t) {
		w.notifyCostChanged(t)
	}
	return nil
}

// ForEachTile calls fn for every tile in row-major order.
func (w *World) ForEachTile(fn func(t *Tile)) {
	for y := range w.tiles {
		for x := range w.tiles[y] {
			fn(&w.tiles[y][x])
		}
	}
}

// Load runs fn as a single bulk mutation: per-object notifications are muted while it runs and
// OnWorldLoaded is sent once afterwards, whether fn succeeded, failed or panicked.
func (w *World) Load(fn func(w *World) error) error {
	w.loading = true
	defer func() {
		w.loading = false
		if w.listener != nil {
			w.listener.OnWorldLoaded()
		}
	}()
	return fn(w)
}

// Reset discards all tiles and furniture and reallocates the map at the given size.
func (w *World) Reset(width, height int) {
	w.allocate(width, height)
	if !w.loading && w.listener != nil {
		w.listener.OnWorldLoaded()
	}
}

func (w *World) notifyCostChanged(t *Tile) {
	if w.loading || w.listener == nil {
		return
	}
	w.listener.OnCellCostChanged(t)
}

func (w *World) notifyPlaced(f *Furniture) {
	if w.loading || w.listener == nil {
		return
	}
	w.listener.OnObjectPlaced(f)
}

func (w *World) notifyRemoved(f *Furniture) {
	if w.loading || w.listener == nil {
		return
	}
	w.listener.OnObjectRemoved(f)
}
