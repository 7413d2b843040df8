package gamedata

import (
	"errors"
	"fmt"

	"github.com/samdwyer/basebuilder/internal/world"
)

// FurnitureRegistry holds loaded furniture definitions and the prototypes built from them.
// Prototypes are created once so every placed instance of a type shares the same template.
type FurnitureRegistry struct {
	defs   map[string]*FurnitureDef
	protos map[string]*world.Prototype
	all    []FurnitureDef
}

// NewFurnitureRegistry creates a registry from loaded furniture definitions.
func NewFurnitureRegistry(defs []FurnitureDef) *FurnitureRegistry {
	registry := &FurnitureRegistry{
		defs:   make(map[string]*FurnitureDef, len(defs)),
		protos: make(map[string]*world.Prototype, len(defs)),
		all:    defs,
	}
	for i := range defs {
		registry.defs[defs[i].ID] = &defs[i]
		registry.protos[defs[i].ID] = defs[i].Prototype()
	}
	return registry
}

// LoadFurnitureRegistry loads and creates a registry from the embedded furniture.json.
func LoadFurnitureRegistry() (*FurnitureRegistry, error) {
	defs, err := LoadFurniture()
	if err != nil {
		return nil, err
	}
	if err := checkDefs(defs); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", furnitureFile, err)
	}
	return NewFurnitureRegistry(defs), nil
}

// checkDefs catches what the schema cannot: duplicate IDs and unreadable colors.
func checkDefs(defs []FurnitureDef) error {
	if len(defs) == 0 {
		return errors.New("no furniture defined")
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return fmt.Errorf("duplicate furniture id %q", d.ID)
		}
		seen[d.ID] = true
		if _, err := parseColor(d.Color); err != nil {
			return fmt.Errorf("furniture %q: %w", d.ID, err)
		}
	}
	return nil
}

// MustLoadFurnitureRegistry loads a registry, panicking on error.
func MustLoadFurnitureRegistry() *FurnitureRegistry {
	registry, err := LoadFurnitureRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the furniture definition with the given ID, or nil if not found.
func (r *FurnitureRegistry) GetByID(id string) *FurnitureDef {
	return r.defs[id]
}

// Prototype returns the shared prototype for id, or nil if not found.
func (r *FurnitureRegistry) Prototype(id string) *world.Prototype {
	return r.protos[id]
}

// Prototypes returns the prototypes keyed by type.
func (r *FurnitureRegistry) Prototypes() map[string]*world.Prototype {
	out := make(map[string]*world.Prototype, len(r.protos))
	for id, p := range r.protos {
		out[id] = p
	}
	return out
}

// All returns all furniture definitions in file order.
func (r *FurnitureRegistry) All() []FurnitureDef {
	return r.all
}

// Count returns the number of furniture types in the registry.
func (r *FurnitureRegistry) Count() int {
	return len(r.all)
}
