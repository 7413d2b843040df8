package gamedata

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/basebuilder/internal/world"
)

func TestLoadFurniture(t *testing.T) {
	defs, err := LoadFurniture()
	if err != nil {
		t.Fatalf("Failed to load furniture: %v", err)
	}

	if len(defs) != 6 {
		t.Errorf("Expected 6 furniture types, got %d", len(defs))
	}

	expectedIDs := map[string]bool{"Wall": false, "Door": false, "Table": false, "Sofa": false, "Workbench": false, world.StockpileType: false}
	for _, d := range defs {
		if _, ok := expectedIDs[d.ID]; ok {
			expectedIDs[d.ID] = true
		}
	}

	for id, found := range expectedIDs {
		if !found {
			t.Errorf("Expected furniture %q not found", id)
		}
	}
}

func TestFurnitureRegistry(t *testing.T) {
	registry, err := LoadFurnitureRegistry()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	if registry.Count() != 6 {
		t.Errorf("Expected 6 furniture types, got %d", registry.Count())
	}

	wall := registry.Prototype("Wall")
	if wall == nil {
		t.Fatal("Wall prototype not found")
	}
	if wall.MovementCost != 0 || !wall.LinksToNeighbour {
		t.Errorf("Wall prototype = %+v, want impassable and linking", wall)
	}
	if registry.Prototype("Wall") != wall {
		t.Error("Prototype returned a different template on the second call")
	}

	bench := registry.Prototype("Workbench")
	if bench == nil {
		t.Fatal("Workbench prototype not found")
	}
	if w, h := bench.Size(); w != 2 || h != 2 {
		t.Errorf("Workbench size = %dx%d, want 2x2", w, h)
	}
	if bench.JobSpotOffset != world.Pt(0, -1) {
		t.Errorf("Workbench job spot = %v, want (0,-1)", bench.JobSpotOffset)
	}

	if registry.GetByID("Throne") != nil {
		t.Error("GetByID returned a definition for an unknown ID")
	}
	if len(registry.Prototypes()) != registry.Count() {
		t.Errorf("Prototypes() has %d entries, want %d", len(registry.Prototypes()), registry.Count())
	}
}

func TestFurniturePrototypeCopiesParams(t *testing.T) {
	def := FurnitureDef{ID: "Door", MovementCost: 2, Flammable: true, Params: map[string]float64{world.FuelParam: 6}}

	proto := def.Prototype()
	proto.Params[world.FuelParam] = 1

	if def.Params[world.FuelParam] != 6 {
		t.Errorf("Prototype() shares params with the definition: fuel = %v", def.Params[world.FuelParam])
	}
}

func TestValidateRejectsBadFurniture(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative cost", `{"furniture":[{"id":"X","name":"X","glyph":"x","movementCost":-1}]}`},
		{"missing glyph", `{"furniture":[{"id":"X","name":"X","movementCost":1}]}`},
		{"unknown field", `{"furniture":[{"id":"X","name":"X","glyph":"x","movementCost":1,"hp":3}]}`},
		{"empty list", `{"furniture":[]}`},
		{"zero width", `{"furniture":[{"id":"X","name":"X","glyph":"x","movementCost":1,"width":0}]}`},
	}

	for _, tt := range tests {
		if err := Validate([]byte(tt.doc), furnitureSchema); err == nil {
			t.Errorf("Validate(%s) should fail, got no error", tt.name)
		}
	}

	ok := `{"furniture":[{"id":"X","name":"X","glyph":"x","movementCost":1.5,"params":{"fuel":3}}]}`
	if err := Validate([]byte(ok), furnitureSchema); err != nil {
		t.Errorf("Validate(valid) error = %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  tcell.Color
		valid bool
	}{
		{"#FF0000", tcell.NewRGBColor(255, 0, 0), true},
		{"8D6E63", tcell.NewRGBColor(0x8D, 0x6E, 0x63), true},
		{"", tcell.ColorDefault, true},
		{"invalid", tcell.ColorDefault, false},
		{"#FFF", tcell.ColorDefault, false}, // Too short
		{"#GG0000", tcell.ColorDefault, false},
	}

	for _, tt := range tests {
		got, err := parseColor(tt.input)
		if tt.valid && err != nil {
			t.Errorf("parseColor(%q) should be valid, got error: %v", tt.input, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("parseColor(%q) should be invalid, got no error", tt.input)
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCheckDefs(t *testing.T) {
	tests := []struct {
		name string
		defs []FurnitureDef
	}{
		{"empty", nil},
		{"duplicate id", []FurnitureDef{{ID: "Wall"}, {ID: "Wall"}}},
		{"bad color", []FurnitureDef{{ID: "Wall", Color: "#12345"}}},
	}
	for _, tt := range tests {
		if err := checkDefs(tt.defs); err == nil {
			t.Errorf("checkDefs(%s) should fail, got no error", tt.name)
		}
	}

	if err := checkDefs(MustLoadFurnitureRegistry().All()); err != nil {
		t.Errorf("checkDefs(embedded) error = %v", err)
	}
}

func TestFurnitureDefMethods(t *testing.T) {
	def := FurnitureDef{
		ID:    "test",
		Name:  "Test",
		Glyph: "T",
		Color: "#FF0000",
	}

	if def.GlyphRune() != 'T' {
		t.Errorf("Expected glyph 'T', got %c", def.GlyphRune())
	}

	if got := def.TCellColor(); got != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("TCellColor() = %v, want red", got)
	}
	def.Color = "nope"
	if got := def.TCellColor(); got != tcell.ColorWhite {
		t.Errorf("TCellColor() with a bad color = %v, want white", got)
	}
}
