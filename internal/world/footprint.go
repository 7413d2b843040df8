package world

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// inset shrinks query rectangles so that footprints sharing only an edge never count as overlapping.
const inset = 0.25

// footprintEntry wraps placed furniture for R-tree storage.
type footprintEntry struct {
	f    *Furniture
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *footprintEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// footprintIndex answers rectangle queries over furniture footprints.
type footprintIndex struct {
	tree    *rtreego.Rtree
	entries map[*Furniture]*footprintEntry
}

func newFootprintIndex() *footprintIndex {
	return &footprintIndex{
		tree:    rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		entries: make(map[*Furniture]*footprintEntry),
	}
}

func (ix *footprintIndex) insert(f *Furniture) {
	w, h := f.proto.Size()
	bbox, err := cellRect(f.origin, w, h, 0)
	if err != nil {
		return
	}
	e := &footprintEntry{f: f, bbox: bbox}
	ix.entries[f] = e
	ix.tree.Insert(e)
}

func (ix *footprintIndex) remove(f *Furniture) {
	e, ok := ix.entries[f]
	if !ok {
		return
	}
	ix.tree.Delete(e)
	delete(ix.entries, f)
}

func (ix *footprintIndex) search(min Point, width, height int) []rtreego.Spatial {
	if width <= 0 || height <= 0 {
		return nil
	}
	bbox, err := cellRect(min, width, height, inset)
	if err != nil {
		return nil
	}
	return ix.tree.SearchIntersect(bbox)
}

func (ix *footprintIndex) overlaps(min Point, width, height int) bool {
	return len(ix.search(min, width, height)) > 0
}

// within returns the furniture overlapping the rectangle, ordered by origin (row-major).
func (ix *footprintIndex) within(min Point, width, height int) []*Furniture {
	results := ix.search(min, width, height)
	out := make([]*Furniture, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*footprintEntry).f)
	}
	slices.SortFunc(out, compareOrigin)
	return out
}

func (ix *footprintIndex) size() int {
	return ix.tree.Size()
}

// cellRect returns the rectangle covering width×height cells starting at min, shrunk by pad on all sides.
func cellRect(min Point, width, height int, pad float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{float64(min.X) + pad, float64(min.Y) + pad},
		[]float64{float64(width) - 2*pad, float64(height) - 2*pad},
	)
}

func compareOrigin(a, b *Furniture) int {
	if c := cmp.Compare(a.origin.Y, b.origin.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.origin.X, b.origin.X)
}
