package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/basebuilder/internal/entity"
	"github.com/samdwyer/basebuilder/internal/jobs"
	"github.com/samdwyer/basebuilder/internal/world"
)

// Glyph is how a furniture type is drawn.
type Glyph struct {
	Rune  rune
	Color tcell.Color
}

// Frame is everything drawn in one pass.
type Frame struct {
	World  *world.World
	Crew   []*entity.Character
	Jobs   []*jobs.Job
	Path   []world.Point // path preview, drawn under characters
	Cursor world.Point
	Status string
	Help   string
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
	glyphs map[string]Glyph
}

// NewRenderer creates a new renderer for the given screen. glyphs maps furniture types to their look.
func NewRenderer(screen *Screen, glyphs map[string]Glyph) *Renderer {
	return &Renderer{screen: screen, glyphs: glyphs}
}

// Render draws the frame to the screen and moves the cursor.
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()
	r.Draw(r.screen, f)
	r.screen.ShowCursor(f.Cursor.X, f.Cursor.Y)
	r.screen.Show()
}

// Draw paints the frame onto c: tiles, furniture, jobs, the path preview, characters and two text lines
// under the map.
func (r *Renderer) Draw(c Canvas, f Frame) {
	w := f.World
	cw, ch := c.Size()
	vw, vh := min(w.Width(), cw), min(w.Height(), ch)

	// Draw tiles
	for y := 0; y < vh; y++ {
		for x := 0; x < vw; x++ {
			tile := w.TileAt(x, y)
			c.SetContent(x, y, tile.Type.Rune(), tileStyle(tile.Type))
		}
	}

	for _, j := range f.Jobs {
		r.drawJob(c, w, j, vw, vh)
	}

	for _, fu := range w.FurnitureWithin(world.Pt(0, 0), vw, vh) {
		r.drawFurniture(c, w, fu, f.Jobs, vw, vh)
	}

	pathStyle := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	for _, p := range f.Path {
		if p.X < vw && p.Y < vh && w.FurnitureAt(p) == nil {
			c.SetContent(p.X, p.Y, '*', pathStyle)
		}
	}

	// Draw characters on top
	charStyle := tcell.StyleDefault.
		Foreground(tcell.ColorYellow).
		Bold(true)
	for _, m := range f.Crew {
		if m.X < vw && m.Y < vh {
			c.SetContent(m.X, m.Y, m.Symbol, charStyle)
		}
	}

	drawText(c, 0, vh, f.Status, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	drawText(c, 0, vh+1, f.Help, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// drawJob shows a pending build as a dim ghost of the furniture it will become.
func (r *Renderer) drawJob(c Canvas, w *world.World, j *jobs.Job, vw, vh int) {
	if j.Kind != jobs.Build {
		return
	}
	g := r.glyph(j.Prototype.Type)
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen).Dim(true)
	pw, ph := j.Prototype.Size()
	for y := j.Origin.Y; y < j.Origin.Y+ph; y++ {
		for x := j.Origin.X; x < j.Origin.X+pw; x++ {
			if x < vw && y < vh && w.FurnitureAt(world.Pt(x, y)) == nil {
				c.SetContent(x, y, g.Rune, style)
			}
		}
	}
}

func (r *Renderer) drawFurniture(c Canvas, w *world.World, fu *world.Furniture, pending []*jobs.Job, vw, vh int) {
	g := r.glyph(fu.Type())
	style := tcell.StyleDefault.Foreground(g.Color)
	if fu.Burning() {
		style = style.Foreground(tcell.ColorRed).Bold(true)
	}
	for _, j := range pending {
		if j.Kind == jobs.Deconstruct && j.Furniture == fu {
			style = style.Background(tcell.ColorMaroon)
			break
		}
	}

	ru := g.Rune
	if fu.Prototype().LinksToNeighbour {
		ru = linkRune(w.LinkedNeighbours(fu), g.Rune)
	}
	for _, p := range fu.Footprint() {
		if p.X < vw && p.Y < vh {
			c.SetContent(p.X, p.Y, ru, style)
		}
	}
}

func (r *Renderer) glyph(typ string) Glyph {
	if g, ok := r.glyphs[typ]; ok {
		return g
	}
	return Glyph{Rune: '?', Color: tcell.ColorWhite}
}

// linkRunes is indexed by a mask of linked sides: N=1, E=2, S=4, W=8.
var linkRunes = [16]rune{
	0, '│', '─', '└',
	'│', '│', '┌', '├',
	'─', '┘', '─', '┴',
	'┐', '┤', '┬', '┼',
}

// linkRune picks a line-drawing rune that joins furniture to its linked neighbours.
// Unlinked furniture keeps its own glyph.
func linkRune(links [4]*world.Furniture, own rune) rune {
	mask := 0
	for i, n := range links {
		if n != nil {
			mask |= 1 << i
		}
	}
	if mask == 0 {
		return own
	}
	return linkRunes[mask]
}

// tileStyle returns the appropriate style for a tile type.
func tileStyle(t world.TileType) tcell.Style {
	switch t {
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileRough:
		return tcell.StyleDefault.Foreground(tcell.ColorOlive)
	default:
		return tcell.StyleDefault
	}
}

func drawText(c Canvas, x, y int, msg string, style tcell.Style) {
	w, h := c.Size()
	if y >= h {
		return
	}
	for _, ch := range msg {
		if x >= w {
			return
		}
		c.SetContent(x, y, ch, style)
		x++
	}
}
