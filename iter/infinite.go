// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package iter

import (
	"image"

	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// InfiniteIter reads a plane as if it were tiled endlessly in both
// directions. It walks a target rectangle of any position and size; the
// source cursor wraps back to the first tile column or row instead of
// running off the plane edge.
type InfiniteIter struct {
	mgr     *tile.Manager
	r       image.Rectangle
	x, y    int
	row     Cursor
	cur     Cursor
	started bool
	index   int
	t       *tile.Tile
	zero    []quantum.Quantum
}

// Infinite returns a read-only iterator over target rectangle r. Pixel
// (x, y) of r maps to plane pixel (x mod width, y mod height). An empty
// plane yields nothing.
func Infinite(mgr *tile.Manager, r image.Rectangle) *InfiniteIter {
	it := &InfiniteIter{
		mgr:   mgr,
		r:     r.Canon(),
		index: -1,
		zero:  make([]quantum.Quantum, mgr.Depth()),
	}
	it.x, it.y = it.r.Min.X, it.r.Min.Y
	if mgr.Width() == 0 {
		it.r = image.Rectangle{}
		return it
	}
	it.row = NewCursor(mgr, wrap(it.x, mgr.Width()), wrap(it.y, mgr.Height()))
	it.cur = it.row
	return it
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Next advances across the target rectangle row by row.
func (it *InfiniteIter) Next() bool {
	if it.r.Empty() {
		return false
	}
	if !it.started {
		it.started = true
		return true
	}
	if it.y >= it.r.Max.Y {
		return false
	}
	it.x++
	it.cur.Inc()
	if it.cur.X() >= it.mgr.Width() {
		it.cur = NewCursor(it.mgr, 0, it.cur.Y())
	}
	if it.x < it.r.Max.X {
		return true
	}

	it.x = it.r.Min.X
	it.y++
	it.row.IncRow()
	if it.row.Y() >= it.mgr.Height() {
		it.row = NewCursor(it.mgr, it.row.X(), 0)
	}
	it.cur = it.row
	return it.y < it.r.Max.Y
}

// X returns the target column.
func (it *InfiniteIter) X() int { return it.x }

// Y returns the target row.
func (it *InfiniteIter) Y() int { return it.y }

// Source returns the plane position being read.
func (it *InfiniteIter) Source() Cursor { return it.cur }

// Pixel returns the source pixel. The slice must not be modified.
func (it *InfiniteIter) Pixel() []quantum.Quantum {
	idx := it.cur.Index()
	if idx != it.index || it.t == nil {
		it.t = it.mgr.TileAt(idx, tile.Read)
		it.index = idx
	}
	if !it.t.Allocated() {
		clear(it.zero)
		return it.zero
	}
	xoff, yoff := it.cur.Offset()
	return it.t.Pixel(xoff, yoff)
}

// Quantum returns channel ch of the source pixel.
func (it *InfiniteIter) Quantum(ch int) quantum.Quantum {
	return it.Pixel()[ch]
}
