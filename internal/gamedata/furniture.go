package gamedata

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/basebuilder/internal/world"
)

const (
	furnitureFile   = "furniture.json"
	furnitureSchema = "furniture.schema.json"
)

// Offset is a tile offset relative to a furniture origin.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FurnitureDef defines a furniture prototype loaded from JSON.
type FurnitureDef struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Glyph            string             `json:"glyph"`
	Color            string             `json:"color"`
	MovementCost     float64            `json:"movementCost"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	LinksToNeighbour bool               `json:"linksToNeighbour"`
	IsRoomBorder     bool               `json:"isRoomBorder"`
	Flammable        bool               `json:"flammable"`
	BuildTime        float64            `json:"buildTime"`
	JobSpotOffset    Offset             `json:"jobSpotOffset"`
	SpawnSpotOffset  Offset             `json:"spawnSpotOffset"`
	Params           map[string]float64 `json:"params"`
}

// FurnitureFile is the top-level structure of furniture.json.
type FurnitureFile struct {
	Furniture []FurnitureDef `json:"furniture"`
}

// LoadFurniture loads and validates all furniture definitions from the embedded furniture.json.
func LoadFurniture() ([]FurnitureDef, error) {
	file, err := LoadValidated[FurnitureFile](furnitureFile, furnitureSchema)
	if err != nil {
		return nil, err
	}
	return file.Furniture, nil
}

// Prototype converts the definition into the template the world places furniture from.
func (d *FurnitureDef) Prototype() *world.Prototype {
	return &world.Prototype{
		Type:             d.ID,
		MovementCost:     d.MovementCost,
		Width:            d.Width,
		Height:           d.Height,
		BuildTime:        d.BuildTime,
		LinksToNeighbour: d.LinksToNeighbour,
		IsRoomBorder:     d.IsRoomBorder,
		Flammable:        d.Flammable,
		JobSpotOffset:    world.Pt(d.JobSpotOffset.X, d.JobSpotOffset.Y),
		SpawnSpotOffset:  world.Pt(d.SpawnSpotOffset.X, d.SpawnSpotOffset.Y),
		Params:           maps.Clone(d.Params),
	}
}

// GlyphRune returns the first rune of the glyph string.
func (d *FurnitureDef) GlyphRune() rune {
	for _, r := range d.Glyph {
		return r
	}
	return '?'
}

// TCellColor returns the color as a tcell.Color. Furniture without a usable color draws white.
func (d *FurnitureDef) TCellColor() tcell.Color {
	if d.Color == "" {
		return tcell.ColorWhite
	}
	color, err := parseColor(d.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// parseColor reads a "#RRGGBB" or "RRGGBB" color. An empty string is the terminal default.
func parseColor(s string) (tcell.Color, error) {
	if s == "" {
		return tcell.ColorDefault, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("color %q: %w", s, err)
	}
	return tcell.NewHexColor(int32(rgb)), nil
}
