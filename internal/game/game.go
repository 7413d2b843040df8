package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/basebuilder/internal/config"
	"github.com/samdwyer/basebuilder/internal/ctxlog"
	"github.com/samdwyer/basebuilder/internal/entity"
	"github.com/samdwyer/basebuilder/internal/gamedata"
	"github.com/samdwyer/basebuilder/internal/pathgraph"
	"github.com/samdwyer/basebuilder/internal/sim"
	"github.com/samdwyer/basebuilder/internal/snapshot"
	"github.com/samdwyer/basebuilder/internal/telemetry"
	"github.com/samdwyer/basebuilder/internal/ui"
	"github.com/samdwyer/basebuilder/internal/world"
)

const helpText = "arrows move  tab/1-9 select  b build  d deconstruct  x cancel  f fire  r rough  e floor  " +
	"p path  c colonist  s save  l load  space pause  q quit"

var crewNames = []string{"Ada", "Bo", "Cyd", "Dee", "Eli", "Fox", "Gus", "Hal"}

// Game holds the entire game state.
type Game struct {
	cfg      config.Config
	screen   *ui.Screen
	renderer *ui.Renderer
	registry *gamedata.FurnitureRegistry
	protos   []*world.Prototype // selectable, in registry order

	seed  int64
	world *world.World
	sim   *sim.Simulation

	state     State
	running   bool
	selected  int
	cursor    world.Point
	pathStart *world.Point
	preview   []world.Point
	message   string
}

// New creates a new game instance.
func New(cfg config.Config) (*Game, error) {
	registry, err := gamedata.LoadFurnitureRegistry()
	if err != nil {
		return nil, fmt.Errorf("load furniture: %w", err)
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	g := newGame(cfg, registry)
	g.screen = screen
	g.renderer = ui.NewRenderer(screen, glyphs(registry))
	return g, nil
}

func newGame(cfg config.Config, registry *gamedata.FurnitureRegistry) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:      cfg,
		registry: registry,
		seed:     seed,
		state:    StateRunning,
		running:  true,
	}
	for _, def := range registry.All() {
		g.protos = append(g.protos, registry.Prototype(def.ID))
	}
	return g
}

func glyphs(registry *gamedata.FurnitureRegistry) map[string]ui.Glyph {
	out := make(map[string]ui.Glyph, registry.Count())
	for _, def := range registry.All() {
		out[def.ID] = ui.Glyph{Rune: def.GlyphRune(), Color: def.TCellColor()}
	}
	return out
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	g.init(ctx)

	done := make(chan struct{})
	defer close(done)
	go g.ticker(done)

	// Main game loop
	for g.running {
		// Render current state
		g.render()

		// Handle input (blocking)
		g.handleEvent(ctx, g.screen.PollEvent())
	}

	// Cleanup
	g.screen.Close()
	return nil
}

// ticker wakes the event loop once per tick interval until done is closed.
func (g *Game) ticker(done <-chan struct{}) {
	t := time.NewTicker(g.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			// A full event queue drops the tick; the next one catches up.
			_ = g.screen.Interrupt(nil)
		}
	}
}

// init generates the world, walls in the rooms and puts the crew in the first room.
func (g *Game) init(ctx context.Context) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.init")
	defer span.End()

	rng := rand.New(rand.NewSource(g.seed))
	g.world = world.NewWorld(g.cfg.Width, g.cfg.Height)
	g.cfg.Apply(g.world)
	layout := world.Generate(ctx, g.world, rng)

	walls := 0
	if wall := g.registry.Prototype("Wall"); wall != nil {
		for _, p := range layout.WallSites {
			if _, err := g.world.PlaceFurniture(wall, p.X, p.Y); err == nil {
				walls++
			}
		}
	}

	g.sim = sim.New(g.world, sim.Options{Diagonals: g.cfg.Diagonals, MaxJobAttempts: g.cfg.MaxJobAttempts})

	if len(layout.Rooms) > 0 {
		room := layout.Rooms[0]
		startX, startY := room.Center()
		g.cursor = world.Pt(startX, startY)
		if stock := g.registry.Prototype(world.StockpileType); stock != nil {
			// Best effort; the centre may be rough.
			_, _ = g.world.PlaceFurniture(stock, startX, startY)
		}
		g.spawnCrew(room)

		span.SetAttributes(
			attribute.Int("world.rooms", len(layout.Rooms)),
			attribute.Int("world.walls", walls),
			attribute.Int("crew.size", g.sim.Crew().Len()),
			attribute.Int("crew.start_x", startX),
			attribute.Int("crew.start_y", startY),
		)
	} else {
		// Fallback: cursor in center of map, nobody spawned
		g.cursor = world.Pt(g.world.Width()/2, g.world.Height()/2)
		span.SetAttributes(
			attribute.Int("world.rooms", 0),
			attribute.String("warning", "no rooms generated, crew not spawned"),
		)
	}

	ctxlog.FromContext(ctx).Info("game: world ready",
		"seed", g.seed,
		"rooms", len(layout.Rooms),
		"walls", walls,
		"crew", g.sim.Crew().Len(),
	)
}

// spawnCrew places characters on the first free walkable interior tiles of room, row by row.
func (g *Game) spawnCrew(room world.Room) {
	for y := room.Y + 1; y < room.Y+room.Height-1; y++ {
		for x := room.X + 1; x < room.X+room.Width-1; x++ {
			if g.sim.Crew().Len() >= g.cfg.Characters {
				return
			}
			p := world.Pt(x, y)
			if !g.world.IsPassable(x, y) || g.world.FurnitureAt(p) != nil || g.sim.Crew().At(p) != nil {
				continue
			}
			g.addCharacter(p)
		}
	}
}

func (g *Game) addCharacter(p world.Point) *entity.Character {
	n := g.sim.Crew().Len()
	name := crewNames[n%len(crewNames)]
	if n >= len(crewNames) {
		name = fmt.Sprintf("%s%d", name, n/len(crewNames)+1)
	}
	ch := entity.NewCharacter(name, p.X, p.Y, g.cfg.CharacterSpeed)
	g.sim.AddCharacter(ch)
	return ch
}

// render draws the current frame.
func (g *Game) render() {
	g.renderer.Render(ui.Frame{
		World:  g.world,
		Crew:   g.sim.Crew().All(),
		Jobs:   g.sim.Jobs(),
		Path:   g.preview,
		Cursor: g.cursor,
		Status: g.statusLine(),
		Help:   helpText,
	})
}

func (g *Game) statusLine() string {
	parts := []string{
		g.state.String(),
		"build: " + g.selectedPrototype().Type,
		fmt.Sprintf("tick %d", g.sim.Ticks()),
		fmt.Sprintf("jobs %d", len(g.sim.Jobs())),
		fmt.Sprintf("graph %s/%d", g.sim.Paths().State(), g.sim.Paths().Generation()),
	}
	if g.message != "" {
		parts = append(parts, g.message)
	}
	return strings.Join(parts, " | ")
}

func (g *Game) selectedPrototype() *world.Prototype {
	return g.protos[g.selected]
}

// handleEvent processes a single input event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		g.step(ctx)
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// step advances the simulation by one tick unless paused.
func (g *Game) step(ctx context.Context) {
	if g.state != StateRunning {
		return
	}
	report := g.sim.Tick(ctx, g.cfg.TickInterval.Seconds())
	switch {
	case len(report.Burnt) > 0:
		g.message = fmt.Sprintf("%s burnt down", report.Burnt[0].Type())
	case len(report.Abandoned) > 0:
		g.message = fmt.Sprintf("gave up on %v", report.Abandoned[0])
	case len(report.Completed) > 0:
		j := report.Completed[0]
		g.message = fmt.Sprintf("%s %s done", j.Kind, j.Prototype.Type)
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false

	case tcell.KeyUp:
		g.moveCursor(0, -1)
	case tcell.KeyDown:
		g.moveCursor(0, 1)
	case tcell.KeyLeft:
		g.moveCursor(-1, 0)
	case tcell.KeyRight:
		g.moveCursor(1, 0)
	case tcell.KeyTab:
		g.selected = (g.selected + 1) % len(g.protos)

	case tcell.KeyRune:
		g.handleRune(ctx, ev.Rune())
	}
}

func (g *Game) handleRune(ctx context.Context, r rune) {
	if r >= '1' && r <= '9' {
		if i := int(r - '1'); i < len(g.protos) {
			g.selected = i
		}
		return
	}

	switch r {
	case 'q', 'Q':
		g.running = false
	case ' ':
		g.state = g.state.Toggle()
	case 'b':
		g.build()
	case 'd':
		g.deconstruct()
	case 'x':
		g.cancelJob()
	case 'f':
		g.toggleFire()
	case 'r':
		g.toggleTile(world.TileFloor, world.TileRough)
	case 'e':
		g.toggleTile(world.TileEmpty, world.TileFloor)
	case 'p':
		g.previewPath(ctx)
	case 'c':
		g.spawnAtCursor()
	case 's':
		g.save()
	case 'l':
		g.load(ctx)
	}
}

// moveCursor moves the cursor by the given delta, staying on the map.
func (g *Game) moveCursor(dx, dy int) {
	p := g.cursor.Add(world.Pt(dx, dy))
	if g.world.InBounds(p.X, p.Y) {
		g.cursor = p
	}
}

func (g *Game) build() {
	proto := g.selectedPrototype()
	if _, err := g.sim.RequestBuild(proto, g.cursor); err != nil {
		g.message = err.Error()
		return
	}
	g.message = fmt.Sprintf("queued %s at %v", proto.Type, g.cursor)
}

func (g *Game) deconstruct() {
	f := g.world.FurnitureAt(g.cursor)
	if f == nil {
		g.message = "nothing to deconstruct"
		return
	}
	if _, err := g.sim.RequestDeconstruct(f); err != nil {
		g.message = err.Error()
		return
	}
	g.message = fmt.Sprintf("queued removal of %s", f.Type())
}

func (g *Game) cancelJob() {
	j := g.sim.Queue().At(g.cursor)
	if j == nil || !g.sim.Queue().Remove(j) {
		g.message = "no queued job here"
		return
	}
	g.message = fmt.Sprintf("cancelled %v", j)
}

func (g *Game) toggleFire() {
	f := g.world.FurnitureAt(g.cursor)
	if f == nil {
		g.message = "nothing to burn"
		return
	}
	var err error
	if f.Burning() {
		err = g.world.Extinguish(f)
	} else {
		err = g.world.Ignite(f)
	}
	if err != nil {
		g.message = err.Error()
	}
}

// toggleTile flips the tile under the cursor between two types.
func (g *Game) toggleTile(a, b world.TileType) {
	t := g.world.Tile(g.cursor)
	if t == nil {
		g.message = "cursor is off the map"
		return
	}
	next := a
	switch t.Type {
	case a:
		next = b
	case b:
		next = a
	default:
		g.message = fmt.Sprintf("%s tile cannot become %s", t.Type, b)
		return
	}
	if err := g.world.SetTileType(t.X, t.Y, next); err != nil {
		g.message = err.Error()
	}
}

// previewPath marks the start on the first press, shows the cheapest route to the cursor on the second
// and clears the preview on the third.
func (g *Game) previewPath(ctx context.Context) {
	switch {
	case g.preview != nil:
		g.preview = nil
		g.pathStart = nil
		g.message = ""
	case g.pathStart == nil:
		start := g.cursor
		g.pathStart = &start
		g.message = fmt.Sprintf("path from %v", start)
	default:
		path, err := g.sim.Paths().FindPath(ctx, *g.pathStart, pathgraph.At(g.cursor))
		if err != nil {
			g.pathStart = nil
			g.message = err.Error()
			return
		}
		g.preview = path.Points()
		g.message = fmt.Sprintf("path cost %.1f over %d tiles", path.Cost, path.Len())
	}
}

func (g *Game) spawnAtCursor() {
	if !g.world.IsPassable(g.cursor.X, g.cursor.Y) {
		g.message = "colonists need walkable ground"
		return
	}
	ch := g.addCharacter(g.cursor)
	g.message = ch.Name + " arrived"
}

func (g *Game) save() {
	snap := snapshot.Capture(g.world, g.seed, g.sim.Ticks(), g.sim.Crew().All(), g.sim.Jobs())
	if err := snapshot.WriteFile(g.cfg.SnapshotPath, snap); err != nil {
		g.message = "save failed: " + err.Error()
		return
	}
	g.message = "saved to " + g.cfg.SnapshotPath
}

func (g *Game) load(ctx context.Context) {
	defer g.clampCursor()

	snap, err := snapshot.ReadFile(g.cfg.SnapshotPath)
	if err != nil {
		g.message = "load failed: " + err.Error()
		return
	}
	protos := g.registry.Prototypes()
	if err := snapshot.Restore(g.world, snap, protos); err != nil {
		g.message = "load failed: " + err.Error()
		return
	}
	open, err := snap.OpenJobs(g.world, protos)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("game: dropped saved jobs", "error", err)
		open = nil
	}
	g.sim.Replace(snap.Crew(g.cfg.CharacterSpeed), open)
	g.seed = snap.Seed
	g.preview, g.pathStart = nil, nil
	g.message = "loaded " + g.cfg.SnapshotPath
}

// clampCursor pulls the cursor back onto the map after its size changed.
func (g *Game) clampCursor() {
	g.cursor.X = max(0, min(g.cursor.X, g.world.Width()-1))
	g.cursor.Y = max(0, min(g.cursor.Y, g.world.Height()-1))
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
