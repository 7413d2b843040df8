package world

// Room represents a rectangular room carved into the map. Its outermost ring of tiles is the perimeter.
type Room struct {
	X, Y          int // Top-left corner position
	Width, Height int // Dimensions of the room
}

// Center returns the center coordinates of the room.
func (r Room) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains returns true if the given point is inside the room, perimeter included.
func (r Room) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Interior returns true if p is inside the room but not on its perimeter.
func (r Room) Interior(p Point) bool {
	return p.X > r.X && p.X < r.X+r.Width-1 && p.Y > r.Y && p.Y < r.Y+r.Height-1
}

// Intersects returns true if this room overlaps with another room.
func (r Room) Intersects(other Room) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Perimeter returns the outermost ring of tiles, clockwise from the top-left corner.
func (r Room) Perimeter() []Point {
	if r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	var out []Point
	for x := r.X; x < r.X+r.Width; x++ {
		out = append(out, Pt(x, r.Y))
	}
	for y := r.Y + 1; y < r.Y+r.Height; y++ {
		out = append(out, Pt(r.X+r.Width-1, y))
	}
	if r.Height > 1 {
		for x := r.X + r.Width - 2; x >= r.X; x-- {
			out = append(out, Pt(x, r.Y+r.Height-1))
		}
	}
	if r.Width > 1 {
		for y := r.Y + r.Height - 2; y > r.Y; y-- {
			out = append(out, Pt(r.X, y))
		}
	}
	return out
}
