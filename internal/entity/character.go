// Package entity provides the colonists that walk the map and carry out jobs.
package entity

import (
	"github.com/samdwyer/basebuilder/internal/jobs"
	"github.com/samdwyer/basebuilder/internal/world"
)

// DefaultSpeed is how many cost-1 tiles a character crosses per second.
const DefaultSpeed = 4.0

// MoveResult is the outcome of advancing a character along its route.
type MoveResult int

const (
	// Idle means the character has no route.
	Idle MoveResult = iota
	// Moving means the character is still on its way.
	Moving
	// Arrived means the character reached the end of its route during this step.
	Arrived
	// Blocked means the next tile on the route is impassable and a new route is needed.
	Blocked
)

// String returns the result name.
func (r MoveResult) String() string {
	switch r {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Arrived:
		return "arrived"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Character is a colonist.
type Character struct {
	Name   string
	Symbol rune
	X, Y   int // Current tile

	// Job is the work order the character is assigned to, or nil.
	Job *jobs.Job

	speed    float64
	route    []world.Point
	progress float64 // fraction of the way into route[0]
}

// NewCharacter creates a character standing at (x,y). A non-positive speed uses DefaultSpeed.
func NewCharacter(name string, x, y int, speed float64) *Character {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Character{
		Name:   name,
		Symbol: '@',
		X:      x,
		Y:      y,
		speed:  speed,
	}
}

// Position returns the current tile coordinates.
func (c *Character) Position() world.Point {
	return world.Pt(c.X, c.Y)
}

// Speed returns how many cost-1 tiles the character crosses per second.
func (c *Character) Speed() float64 {
	return c.speed
}

// SetRoute replaces the route. A leading point equal to the current position is dropped,
// so a path returned by a search can be passed in directly.
func (c *Character) SetRoute(points []world.Point) {
	if len(points) > 0 && points[0] == c.Position() {
		points = points[1:]
	}
	c.route = append(c.route[:0], points...)
	c.progress = 0
}

// ClearRoute stops the character where it stands.
func (c *Character) ClearRoute() {
	c.route = c.route[:0]
	c.progress = 0
}

// HasRoute reports whether the character has tiles left to walk.
func (c *Character) HasRoute() bool {
	return len(c.route) > 0
}

// Route returns the remaining tiles, next tile first.
func (c *Character) Route() []world.Point {
	out := make([]world.Point, len(c.route))
	copy(out, c.route)
	return out
}

// Destination returns the last tile of the route, or the current position if there is none.
func (c *Character) Destination() world.Point {
	if len(c.route) == 0 {
		return c.Position()
	}
	return c.route[len(c.route)-1]
}

// Advance walks the route for dt seconds. Entering a tile takes cost/speed seconds, where cost is the
// tile's current movement cost; leftover time carries into the next tile. If the next tile's cost is 0
// the character stops in place and reports Blocked, keeping its route.
func (c *Character) Advance(dt float64, cost func(world.Point) float64) MoveResult {
	if len(c.route) == 0 {
		return Idle
	}
	remaining := dt
	for len(c.route) > 0 {
		next := c.route[0]
		tc := cost(next)
		if tc <= 0 {
			c.progress = 0
			return Blocked
		}
		need := (1 - c.progress) * tc / c.speed
		if remaining < need {
			c.progress += remaining * c.speed / tc
			return Moving
		}
		remaining -= need
		c.X, c.Y = next.X, next.Y
		c.route = c.route[1:]
		c.progress = 0
	}
	return Arrived
}
