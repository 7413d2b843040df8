package entity

import "github.com/samdwyer/basebuilder/internal/world"

// Crew is the player's colonists, in the order they were added.
type Crew struct {
	members []*Character
}

// NewCrew creates an empty crew.
func NewCrew() *Crew {
	return &Crew{}
}

// Add appends a character.
func (c *Crew) Add(ch *Character) {
	c.members = append(c.members, ch)
}

// All returns the characters in order.
func (c *Crew) All() []*Character {
	return c.members
}

// Len returns the number of characters.
func (c *Crew) Len() int {
	return len(c.members)
}

// At returns the first character standing at p, or nil.
func (c *Crew) At(p world.Point) *Character {
	for _, ch := range c.members {
		if ch.Position() == p {
			return ch
		}
	}
	return nil
}

// Idle returns the characters without a job.
func (c *Crew) Idle() []*Character {
	var out []*Character
	for _, ch := range c.members {
		if ch.Job == nil {
			out = append(out, ch)
		}
	}
	return out
}

// Reset removes every character.
func (c *Crew) Reset() {
	c.members = nil
}
