// Package game provides the main game loop and state management.
package game

// State represents the current game state.
type State int

const (
	// StateRunning is the default mode where the simulation advances on every tick.
	StateRunning State = iota
	// StatePaused stops the simulation; the player can still queue jobs and inspect the map.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Toggle switches between running and paused.
func (s State) Toggle() State {
	if s == StatePaused {
		return StateRunning
	}
	return StatePaused
}
