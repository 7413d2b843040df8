// Package jobs holds the colony's work orders and the queue characters take them from.
package jobs

import (
	"fmt"

	"github.com/samdwyer/basebuilder/internal/world"
)

// Kind is what a job does when its work is finished.
type Kind int

const (
	// Build places the job's prototype at its origin.
	Build Kind = iota
	// Deconstruct removes the job's furniture.
	Deconstruct
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Build:
		return "build"
	case Deconstruct:
		return "deconstruct"
	default:
		return "unknown"
	}
}

// Job is a unit of work at a location.
type Job struct {
	ID   int
	Kind Kind

	// Origin is where Build places the prototype, or the origin of the furniture being removed.
	Origin    world.Point
	Prototype *world.Prototype
	Furniture *world.Furniture

	// WorkLeft is the seconds of work remaining.
	WorkLeft float64
	// Attempts counts how many times a character failed to reach the job.
	Attempts int
}

// NewBuild returns a job that places proto with its origin at p.
func NewBuild(proto *world.Prototype, p world.Point) *Job {
	return &Job{
		Kind:      Build,
		Origin:    p,
		Prototype: proto,
		WorkLeft:  proto.BuildTime,
	}
}

// NewDeconstruct returns a job that removes f.
func NewDeconstruct(f *world.Furniture) *Job {
	return &Job{
		Kind:      Deconstruct,
		Origin:    f.Origin(),
		Prototype: f.Prototype(),
		Furniture: f,
		WorkLeft:  f.Prototype().BuildTime,
	}
}

// Spot returns the tile a worker should stand on: the prototype's job spot offset from the origin.
func (j *Job) Spot() world.Point {
	return j.Origin.Add(j.Prototype.JobSpotOffset)
}

// InReach reports whether a worker standing at p can work the job: on the job spot or orthogonally
// next to it. The second case lets walls be worked from outside.
func (j *Job) InReach(p world.Point) bool {
	s := j.Spot()
	return abs(p.X-s.X)+abs(p.Y-s.Y) <= 1
}

// Work applies dt seconds of work and reports whether the job is finished.
func (j *Job) Work(dt float64) bool {
	j.WorkLeft -= dt
	return j.WorkLeft <= 0
}

// Covers reports whether the job's footprint includes p.
func (j *Job) Covers(p world.Point) bool {
	w, h := j.Prototype.Size()
	return p.X >= j.Origin.X && p.X < j.Origin.X+w && p.Y >= j.Origin.Y && p.Y < j.Origin.Y+h
}

func (j *Job) String() string {
	return fmt.Sprintf("job %d: %s %s at %v", j.ID, j.Kind, j.Prototype.Type, j.Origin)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
