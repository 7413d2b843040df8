package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/basebuilder/internal/telemetry"
)

const (
	// BSP parameters
	minRoomSize = 6  // Minimum room dimension, walls included
	maxRoomSize = 14 // Maximum room dimension
	minLeafSize = 9  // Minimum BSP leaf size before stopping split

	// roughPermille is the chance per interior tile of being rough terrain.
	roughPermille = 80
)

// Layout describes what Generate carved.
type Layout struct {
	Rooms []Room
	// WallSites are room perimeter tiles not crossed by a corridor. Callers place walls there.
	WallSites []Point
}

// generator holds the state of a single Generate call.
type generator struct {
	w        *World
	rng      *rand.Rand
	rooms    []Room
	corridor map[Point]bool
}

// Generate carves rooms and corridors of Floor into w using binary space partitioning, sprinkles rough
// terrain inside rooms and reports the room layout. Tiles outside rooms and corridors are left Empty.
func Generate(ctx context.Context, w *World, rng *rand.Rand) Layout {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "world.generate")
	defer span.End()

	startTime := time.Now()

	g := &generator{
		w:        w,
		rng:      rng,
		corridor: make(map[Point]bool),
	}

	root := &bspNode{
		x:      1,
		y:      1,
		width:  w.Width() - 2,
		height: w.Height() - 2,
	}

	g.splitNode(root)
	g.createRooms(root)
	g.connectRooms(root)
	g.roughen()

	layout := Layout{Rooms: g.rooms, WallSites: g.wallSites()}

	span.SetAttributes(
		attribute.Int("world.width", w.Width()),
		attribute.Int("world.height", w.Height()),
		attribute.Int("world.room_count", len(layout.Rooms)),
		attribute.Int("world.wall_sites", len(layout.WallSites)),
		attribute.Int64("world.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return layout
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Room
}

func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (g *generator) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	if node.width > node.height && node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else if node.height >= minLeafSize*2 {
		splitHorizontally = true
	} else if node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else {
		return
	}

	extent := node.width
	if splitHorizontally {
		extent = node.height
	}
	lo, hi := minLeafSize, extent-minLeafSize
	if hi <= lo {
		return
	}
	splitPos := lo + g.rng.Intn(hi-lo+1)

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	g.splitNode(node.left)
	g.splitNode(node.right)
}

// createRooms creates rooms in leaf nodes of the BSP tree.
func (g *generator) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		g.createRooms(node.left)
		g.createRooms(node.right)
		return
	}

	roomWidth := minRoomSize + g.rng.Intn(max(1, min(maxRoomSize-minRoomSize+1, node.width-minRoomSize+1)))
	roomHeight := minRoomSize + g.rng.Intn(max(1, min(maxRoomSize-minRoomSize+1, node.height-minRoomSize+1)))
	roomWidth = min(roomWidth, node.width-2)
	roomHeight = min(roomHeight, node.height-2)
	if roomWidth < minRoomSize || roomHeight < minRoomSize {
		return
	}

	room := Room{
		X:      node.x + 1 + g.rng.Intn(max(1, node.width-roomWidth-1)),
		Y:      node.y + 1 + g.rng.Intn(max(1, node.height-roomHeight-1)),
		Width:  roomWidth,
		Height: roomHeight,
	}
	node.room = &room
	g.rooms = append(g.rooms, room)

	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			g.carve(x, y)
		}
	}
}

// connectRooms joins sibling subtrees with L-shaped corridors.
func (g *generator) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}

	g.connectRooms(node.left)
	g.connectRooms(node.right)

	leftRoom := roomOf(node.left)
	rightRoom := roomOf(node.right)
	if leftRoom == nil || rightRoom == nil {
		return
	}

	x1, y1 := leftRoom.Center()
	x2, y2 := rightRoom.Center()
	if g.rng.Intn(2) == 0 {
		g.tunnelX(x1, x2, y1)
		g.tunnelY(y1, y2, x2)
	} else {
		g.tunnelY(y1, y2, x1)
		g.tunnelX(x1, x2, y2)
	}
}

// roomOf returns a room from a subtree (any room will do).
func roomOf(node *bspNode) *Room {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := roomOf(node.left); room != nil {
		return room
	}
	return roomOf(node.right)
}

func (g *generator) tunnelX(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if g.carve(x, y) {
			g.corridor[Pt(x, y)] = true
		}
	}
}

func (g *generator) tunnelY(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if g.carve(x, y) {
			g.corridor[Pt(x, y)] = true
		}
	}
}

// carve turns a tile into Floor, keeping a one tile margin around the map.
func (g *generator) carve(x, y int) bool {
	if x <= 0 || x >= g.w.Width()-1 || y <= 0 || y >= g.w.Height()-1 {
		return false
	}
	_ = g.w.SetTileType(x, y, TileFloor)
	return true
}

// roughen turns a few room interior tiles into rough terrain.
func (g *generator) roughen() {
	for _, room := range g.rooms {
		for y := room.Y + 1; y < room.Y+room.Height-1; y++ {
			for x := room.X + 1; x < room.X+room.Width-1; x++ {
				if g.rng.Intn(1000) < roughPermille {
					_ = g.w.SetTileType(x, y, TileRough)
				}
			}
		}
	}
}

// wallSites lists perimeter tiles of every room that no corridor runs through, row-major and deduplicated.
func (g *generator) wallSites() []Point {
	seen := make(map[Point]bool)
	var sites []Point
	for _, room := range g.rooms {
		for _, p := range room.Perimeter() {
			if seen[p] || g.corridor[p] || g.insideAnotherRoom(p, room) {
				continue
			}
			seen[p] = true
			sites = append(sites, p)
		}
	}
	return sites
}

func (g *generator) insideAnotherRoom(p Point, self Room) bool {
	for _, r := range g.rooms {
		if r != self && r.Interior(p) {
			return true
		}
	}
	return false
}
