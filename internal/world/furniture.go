package world

import (
	"errors"
	"fmt"
	"maps"
)

// Placement and mutation errors.
var (
	ErrOutOfBounds  = errors.New("out of bounds")
	ErrOccupied     = errors.New("tile already occupied")
	ErrInvalidTile  = errors.New("tile type does not accept furniture")
	ErrNotPlaced    = errors.New("furniture is not placed in this world")
	ErrNotFlammable = errors.New("furniture is not flammable")
)

// FuelParam is the furniture parameter that counts down while it burns.
const FuelParam = "fuel"

// DefaultBurnTime is the fuel given to furniture that is ignited without a fuel parameter, unless the
// world is configured otherwise with SetBurnTime.
const DefaultBurnTime = 10.0

// StockpileType is the furniture type agents haul items to.
const StockpileType = "Stockpile"

// PlacementError describes why a prototype could not be placed.
type PlacementError struct {
	Type string
	X, Y int
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s at (%d,%d): %v", e.Type, e.X, e.Y, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// Prototype is the immutable template furniture instances are placed from.
type Prototype struct {
	Type string

	// MovementCost multiplies the cost of the tiles underneath. 0 makes them impassable (e.g. a wall);
	// a value of 2 means moving through at half speed.
	MovementCost float64

	// Footprint size, anchored at the origin (lowest x, lowest y) tile. Zero means 1.
	Width, Height int

	// BuildTime is the seconds of work needed to construct or deconstruct an instance.
	BuildTime float64

	LinksToNeighbour bool
	IsRoomBorder     bool
	Flammable        bool

	// JobSpotOffset is where a worker stands relative to the origin tile.
	JobSpotOffset Point
	// SpawnSpotOffset is where items created by a job appear relative to the origin tile.
	SpawnSpotOffset Point

	// Params holds default parameters copied into every instance.
	Params map[string]float64
}

// Size returns the footprint dimensions, treating zero as 1.
func (p *Prototype) Size() (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return w, h
}

// Furniture is a placed instance of a prototype.
type Furniture struct {
	proto   *Prototype
	origin  Point
	params  map[string]float64
	burning bool
}

// Prototype returns the template this furniture was placed from.
func (f *Furniture) Prototype() *Prototype { return f.proto }

// Type returns the prototype type, e.g. "Wall".
func (f *Furniture) Type() string { return f.proto.Type }

// Origin returns the base tile coordinates of the furniture.
func (f *Furniture) Origin() Point { return f.origin }

// MovementCost returns the prototype's movement cost multiplier.
func (f *Furniture) MovementCost() float64 { return f.proto.MovementCost }

// Burning reports whether the furniture is on fire.
func (f *Furniture) Burning() bool { return f.burning }

// IsStockpile reports whether the furniture is a stockpile.
func (f *Furniture) IsStockpile() bool { return f.proto.Type == StockpileType }

// Footprint returns every tile coordinate the furniture occupies.
func (f *Furniture) Footprint() []Point {
	return footprint(f.proto, f.origin)
}

// Contains reports whether p is inside the footprint.
func (f *Furniture) Contains(p Point) bool {
	w, h := f.proto.Size()
	return p.X >= f.origin.X && p.X < f.origin.X+w && p.Y >= f.origin.Y && p.Y < f.origin.Y+h
}

// Parameter returns a parameter, or def if it has not been set.
func (f *Furniture) Parameter(key string, def float64) float64 {
	v, ok := f.params[key]
	if !ok {
		return def
	}
	return v
}

// SetParameter sets a parameter.
func (f *Furniture) SetParameter(key string, value float64) {
	f.params[key] = value
}

// ChangeParameter adds delta to a parameter, treating an unset one as 0.
func (f *Furniture) ChangeParameter(key string, delta float64) {
	f.params[key] += delta
}

// Parameters returns a copy of all parameters.
func (f *Furniture) Parameters() map[string]float64 {
	return maps.Clone(f.params)
}

func footprint(p *Prototype, origin Point) []Point {
	w, h := p.Size()
	out := make([]Point, 0, w*h)
	for y := origin.Y; y < origin.Y+h; y++ {
		for x := origin.X; x < origin.X+w; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// CanPlace validates placing proto with its origin at (x,y) without changing anything.
// Every footprint tile must be in bounds, Floor and free.
func (w *World) CanPlace(proto *Prototype, x, y int) error {
	fail := func(err error) error {
		return &PlacementError{Type: proto.Type, X: x, Y: y, Err: err}
	}
	for _, p := range footprint(proto, Pt(x, y)) {
		t := w.Tile(p)
		if t == nil {
			return fail(ErrOutOfBounds)
		}
		if t.Type != TileFloor {
			return fail(ErrInvalidTile)
		}
	}
	pw, ph := proto.Size()
	if w.index.overlaps(Pt(x, y), pw, ph) {
		return fail(ErrOccupied)
	}
	return nil
}

// PlaceFurniture validates and then places an instance of proto with its origin at (x,y).
// Nothing is changed when validation fails.
func (w *World) PlaceFurniture(proto *Prototype, x, y int) (*Furniture, error) {
	if err := w.CanPlace(proto, x, y); err != nil {
		return nil, err
	}

	f := &Furniture{
		proto:  proto,
		origin: Pt(x, y),
		params: maps.Clone(proto.Params),
	}
	if f.params == nil {
		f.params = make(map[string]float64)
	}

	for _, p := range f.Footprint() {
		w.occupancy[p] = f
	}
	w.furniture = append(w.furniture, f)
	w.index.insert(f)

	w.notifyPlaced(f)
	return f, nil
}

// FurnitureAt returns the furniture occupying p, or nil.
func (w *World) FurnitureAt(p Point) *Furniture {
	return w.occupancy[p]
}

// Furniture returns all placed furniture in placement order.
func (w *World) Furniture() []*Furniture {
	out := make([]*Furniture, len(w.furniture))
	copy(out, w.furniture)
	return out
}

// FurnitureWithin returns the furniture overlapping the width×height rectangle anchored at min.
func (w *World) FurnitureWithin(min Point, width, height int) []*Furniture {
	return w.index.within(min, width, height)
}

// Deconstruct removes furniture from the world, clearing both the occupancy table and the footprint index.
func (w *World) Deconstruct(f *Furniture) error {
	if w.occupancy[f.origin] != f {
		return fmt.Errorf("deconstruct %s at %v: %w", f.Type(), f.origin, ErrNotPlaced)
	}
	for _, p := range f.Footprint() {
		delete(w.occupancy, p)
	}
	for i, other := range w.furniture {
		if other == f {
			w.furniture = append(w.furniture[:i], w.furniture[i+1:]...)
			break
		}
	}
	w.index.remove(f)
	f.burning = false

	w.notifyRemoved(f)
	return nil
}

// Ignite sets flammable furniture on fire. Furniture without fuel receives the world's burn time.
func (w *World) Ignite(f *Furniture) error {
	if w.occupancy[f.origin] != f {
		return fmt.Errorf("ignite %s at %v: %w", f.Type(), f.origin, ErrNotPlaced)
	}
	if !f.proto.Flammable {
		return fmt.Errorf("ignite %s at %v: %w", f.Type(), f.origin, ErrNotFlammable)
	}
	if f.burning {
		return nil
	}
	if _, ok := f.params[FuelParam]; !ok {
		f.params[FuelParam] = w.burnTime
	}
	w.setBurning(f, true)
	return nil
}

// Extinguish puts out a fire. The remaining fuel is kept.
func (w *World) Extinguish(f *Furniture) error {
	if w.occupancy[f.origin] != f {
		return fmt.Errorf("extinguish %s at %v: %w", f.Type(), f.origin, ErrNotPlaced)
	}
	if f.burning {
		w.setBurning(f, false)
	}
	return nil
}

func (w *World) setBurning(f *Furniture, burning bool) {
	f.burning = burning
	for _, p := range f.Footprint() {
		w.notifyCostChanged(w.Tile(p))
	}
}

// Tick advances furniture by dt seconds. Burning furniture consumes fuel and is deconstructed once it runs
// out; the burnt-out pieces are returned.
func (w *World) Tick(dt float64) []*Furniture {
	var burnt []*Furniture
	for _, f := range w.furniture {
		if !f.burning {
			continue
		}
		f.ChangeParameter(FuelParam, -dt)
		if f.Parameter(FuelParam, 0) <= 0 {
			burnt = append(burnt, f)
		}
	}
	for _, f := range burnt {
		// Cannot fail: f came from w.furniture.
		_ = w.Deconstruct(f)
	}
	return burnt
}

// LinkedNeighbours returns the same-type furniture directly north, east, south and west of f's origin,
// with nil slots where there is none. Only furniture that links to its neighbours reports links.
func (w *World) LinkedNeighbours(f *Furniture) [4]*Furniture {
	var out [4]*Furniture
	if !f.proto.LinksToNeighbour {
		return out
	}
	for i := 0; i < 4; i++ {
		n := w.occupancy[f.origin.Add(neighbourOffsets[i])]
		if n != nil && n != f && n.Type() == f.Type() {
			out[i] = n
		}
	}
	return out
}

// JobSpotTile returns the tile a worker stands on to work f, or nil if it is off the map.
func (w *World) JobSpotTile(f *Furniture) *Tile {
	return w.Tile(f.origin.Add(f.proto.JobSpotOffset))
}

// SpawnSpotTile returns the tile where items produced at f appear, or nil if it is off the map.
func (w *World) SpawnSpotTile(f *Furniture) *Tile {
	return w.Tile(f.origin.Add(f.proto.SpawnSpotOffset))
}
