// Package snapshot saves and restores a colony as zstd-compressed JSON.
//
// The stream holds a one-line JSON header followed by the JSON body, so a reader can learn the version
// and map size before decoding the rest.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/samdwyer/basebuilder/internal/entity"
	"github.com/samdwyer/basebuilder/internal/jobs"
	"github.com/samdwyer/basebuilder/internal/world"
)

// Version is the snapshot format written by Encode.
const Version = 1

// Snapshot errors.
var (
	ErrVersion       = errors.New("unsupported snapshot version")
	ErrUnknownType   = errors.New("unknown furniture type")
	ErrCorruptLayout = errors.New("tile data does not match map size")
)

// Header is the first line of a snapshot stream, readable without decoding the body.
type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// Snapshot is a saved world with its crew and open jobs.
type Snapshot struct {
	Header Header `json:"header"`

	Seed       int64         `json:"seed"`
	Tiles      []TileV1      `json:"tiles"` // row-major
	Furniture  []FurnitureV1 `json:"furniture,omitempty"`
	Characters []CharacterV1 `json:"characters,omitempty"`
	Jobs       []JobV1       `json:"jobs,omitempty"`
}

// TileV1 is one saved tile: its type name and base cost.
type TileV1 struct {
	Type string  `json:"type"`
	Cost float64 `json:"cost"`
}

// FurnitureV1 is placed furniture keyed by its origin tile.
type FurnitureV1 struct {
	Type    string             `json:"type"`
	X       int                `json:"x"`
	Y       int                `json:"y"`
	Params  map[string]float64 `json:"params,omitempty"`
	Burning bool               `json:"burning,omitempty"`
}

// CharacterV1 is a saved character position. Routes and assignments are not kept.
type CharacterV1 struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// JobV1 is an open job with its remaining work.
type JobV1 struct {
	Kind     string  `json:"kind"`
	Type     string  `json:"type"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	WorkLeft float64 `json:"work_left"`
	Attempts int     `json:"attempts,omitempty"`
}

// Capture records the world, characters and open jobs.
func Capture(w *world.World, seed int64, tick uint64, chars []*entity.Character, open []*jobs.Job) Snapshot {
	snap := Snapshot{
		Header: Header{Version: Version, Tick: tick, Width: w.Width(), Height: w.Height()},
		Seed:   seed,
		Tiles:  make([]TileV1, 0, w.Width()*w.Height()),
	}
	w.ForEachTile(func(t *world.Tile) {
		snap.Tiles = append(snap.Tiles, TileV1{Type: t.Type.String(), Cost: t.BaseCost()})
	})
	for _, f := range w.Furniture() {
		o := f.Origin()
		snap.Furniture = append(snap.Furniture, FurnitureV1{
			Type:    f.Type(),
			X:       o.X,
			Y:       o.Y,
			Params:  f.Parameters(),
			Burning: f.Burning(),
		})
	}
	for _, ch := range chars {
		snap.Characters = append(snap.Characters, CharacterV1{Name: ch.Name, X: ch.X, Y: ch.Y})
	}
	for _, j := range open {
		snap.Jobs = append(snap.Jobs, JobV1{
			Kind:     j.Kind.String(),
			Type:     j.Prototype.Type,
			X:        j.Origin.X,
			Y:        j.Origin.Y,
			WorkLeft: j.WorkLeft,
			Attempts: j.Attempts,
		})
	}
	return snap
}

// Restore replaces the contents of w with the snapshot as one bulk load, so the world's listener
// sees a single OnWorldLoaded. The snapshot is first rebuilt into a scratch world; if that fails w is
// left untouched and no notification is sent.
func Restore(w *world.World, snap Snapshot, protos map[string]*world.Prototype) error {
	if snap.Header.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, snap.Header.Version)
	}
	width, height := snap.Header.Width, snap.Header.Height
	if width <= 0 || height <= 0 || len(snap.Tiles) != width*height {
		return fmt.Errorf("%w: %dx%d with %d tiles", ErrCorruptLayout, width, height, len(snap.Tiles))
	}
	apply := func(w *world.World) error {
		w.Reset(width, height)
		for i, t := range snap.Tiles {
			typ, err := world.ParseTileType(t.Type)
			if err != nil {
				return err
			}
			x, y := i%width, i/width
			if err := w.SetTileType(x, y, typ); err != nil {
				return err
			}
			if err := w.SetTileCost(x, y, t.Cost); err != nil {
				return err
			}
		}
		for _, fs := range snap.Furniture {
			proto := protos[fs.Type]
			if proto == nil {
				return fmt.Errorf("%w: %q", ErrUnknownType, fs.Type)
			}
			f, err := w.PlaceFurniture(proto, fs.X, fs.Y)
			if err != nil {
				return err
			}
			for k, v := range fs.Params {
				f.SetParameter(k, v)
			}
			if fs.Burning {
				if err := w.Ignite(f); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := apply(world.NewWorld(width, height)); err != nil {
		return err
	}
	return w.Load(apply)
}

// Crew recreates the saved characters moving at speed.
func (s Snapshot) Crew(speed float64) []*entity.Character {
	out := make([]*entity.Character, 0, len(s.Characters))
	for _, c := range s.Characters {
		out = append(out, entity.NewCharacter(c.Name, c.X, c.Y, speed))
	}
	return out
}

// OpenJobs recreates the saved jobs against a restored world.
func (s Snapshot) OpenJobs(w *world.World, protos map[string]*world.Prototype) ([]*jobs.Job, error) {
	out := make([]*jobs.Job, 0, len(s.Jobs))
	for _, js := range s.Jobs {
		var j *jobs.Job
		switch js.Kind {
		case jobs.Build.String():
			proto := protos[js.Type]
			if proto == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownType, js.Type)
			}
			j = jobs.NewBuild(proto, world.Pt(js.X, js.Y))
		case jobs.Deconstruct.String():
			f := w.FurnitureAt(world.Pt(js.X, js.Y))
			if f == nil || f.Origin() != world.Pt(js.X, js.Y) {
				return nil, fmt.Errorf("deconstruct job at (%d,%d): %w", js.X, js.Y, world.ErrNotPlaced)
			}
			j = jobs.NewDeconstruct(f)
		default:
			return nil, fmt.Errorf("unknown job kind %q", js.Kind)
		}
		j.WorkLeft = js.WorkLeft
		j.Attempts = js.Attempts
		out = append(out, j)
	}
	return out, nil
}

// Encode writes the snapshot to out as a zstd stream.
func Encode(out io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a snapshot written by Encode.
func Decode(in io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec, err := zstd.NewReader(in)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("parse header: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	return snap, nil
}

// WriteFile saves the snapshot to path, creating parent directories.
func WriteFile(path string, snap Snapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Decode(f)
}
