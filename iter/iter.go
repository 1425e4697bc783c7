// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package iter

import (
	"image"

	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// Option configures an iterator.
type Option func(*config)

type config struct {
	mode tile.Mode
	mem  *tile.Memento
}

// WithMode sets the tile access mode. The default is tile.Read; iterators
// that write must be created with tile.Write or tile.RW.
func WithMode(mode tile.Mode) Option {
	return func(c *config) {
		c.mode = mode
	}
}

// WithMemento attaches a memento. OldPixel reads from it, and the first
// write to each tile saves that tile into it even after Finish.
func WithMemento(mem *tile.Memento) Option {
	return func(c *config) {
		c.mem = mem
	}
}

// Iterator holds the position and tile state shared by the line and
// rectangle iterators.
type Iterator struct {
	mgr   *tile.Manager
	mode  tile.Mode
	mem   *tile.Memento
	cur   Cursor
	begin Cursor
	end   Cursor

	started bool
	index   int
	t       *tile.Tile
	zero    []quantum.Quantum
}

func newIterator(mgr *tile.Manager, opts []Option) Iterator {
	cfg := config{mode: tile.Read}
	for _, opt := range opts {
		opt(&cfg)
	}
	return Iterator{
		mgr:   mgr,
		mode:  cfg.mode,
		mem:   cfg.mem,
		index: -1,
		zero:  make([]quantum.Quantum, mgr.Depth()),
	}
}

func (it *Iterator) reset(begin, end Cursor) {
	it.begin = begin
	it.end = end
	it.cur = begin
	it.started = false
}

// X returns the current plane column.
func (it *Iterator) X() int { return it.cur.X() }

// Y returns the current plane row.
func (it *Iterator) Y() int { return it.cur.Y() }

// Pos returns the current position.
func (it *Iterator) Pos() Cursor { return it.cur }

// Begin returns the first position of the walk.
func (it *Iterator) Begin() Cursor { return it.begin }

// End returns the position one past the last pixel of the walk.
func (it *Iterator) End() Cursor { return it.end }

// Done reports whether the walk has passed its last pixel.
func (it *Iterator) Done() bool { return it.started && it.cur.Equal(it.end) }

// fetch resolves the tile under the cursor, going through the manager
// only when the cursor crossed into another tile. The iterator holds a
// reference on the cached tile, and a write handle when it writes.
func (it *Iterator) fetch() *tile.Tile {
	idx := it.cur.Index()
	if idx < 0 {
		panic("iter: position outside the plane")
	}
	if idx == it.index && it.t != nil {
		return it.t
	}
	it.Close()
	if it.mode&tile.Write != 0 {
		if it.mem != nil {
			it.mem.Save(idx)
		}
		it.t = it.mgr.TileAt(idx, it.mode)
		it.t.WriteRef()
		it.t.ResetHints(0, it.t.Height()-1)
	} else {
		it.t = it.mgr.TileAt(idx, tile.Read)
	}
	it.t.Ref()
	it.index = idx
	return it.t
}

// Close drops the tile handle the iterator holds. Next calls it when the
// walk ends; callers that stop early should call it themselves. Until then
// the tile under a writing iterator is copied, not shared, by Duplicate
// and mementos.
func (it *Iterator) Close() {
	if it.t == nil {
		return
	}
	if it.mode&tile.Write != 0 {
		it.t.WriteRelease()
	}
	it.t.Deref()
	it.t = nil
	it.index = -1
}

// more reports whether the cursor is still inside the walk, releasing the
// tile handle once it is not.
func (it *Iterator) more() bool {
	if it.cur.Equal(it.end) {
		it.Close()
		return false
	}
	return true
}

// Pixel returns the current pixel. The slice aliases the tile for writing
// iterators; a read-only iterator over an unallocated tile returns zeros
// without allocating.
func (it *Iterator) Pixel() []quantum.Quantum {
	t := it.fetch()
	if it.mode&tile.Write == 0 && !t.Allocated() {
		clear(it.zero)
		return it.zero
	}
	xoff, yoff := it.cur.Offset()
	return t.Pixel(xoff, yoff)
}

// Quantum returns channel ch of the current pixel.
func (it *Iterator) Quantum(ch int) quantum.Quantum {
	return it.Pixel()[ch]
}

// SetPixel copies p into the current pixel.
func (it *Iterator) SetPixel(p []quantum.Quantum) {
	it.mustWrite()
	copy(it.Pixel(), p)
}

// SetQuantum sets channel ch of the current pixel.
func (it *Iterator) SetQuantum(ch int, v quantum.Quantum) {
	it.mustWrite()
	it.Pixel()[ch] = v
}

func (it *Iterator) mustWrite() {
	if it.mode&tile.Write == 0 {
		panic("iter: write through a read-only iterator")
	}
}

// OldPixel returns the current pixel as recorded by the attached memento,
// or the current pixel when there is none. The slice must not be modified.
func (it *Iterator) OldPixel() []quantum.Quantum {
	if it.mem == nil {
		return it.Pixel()
	}
	return it.mem.OldPixel(it.cur.X(), it.cur.Y())
}

// OldQuantum returns channel ch of OldPixel.
func (it *Iterator) OldQuantum(ch int) quantum.Quantum {
	return it.OldPixel()[ch]
}

// HLineIter walks one row from x1 to x2 inclusive.
type HLineIter struct {
	Iterator
	x1, x2 int
}

// HLine returns an iterator over row y from x1 to x2 inclusive, clipped to
// the plane.
func HLine(mgr *tile.Manager, x1, x2, y int, opts ...Option) *HLineIter {
	it := &HLineIter{Iterator: newIterator(mgr, opts)}
	it.x1 = max(x1, 0)
	it.x2 = min(x2, mgr.Width()-1)
	it.seek(y)
	return it
}

func (it *HLineIter) seek(y int) {
	begin := NewCursor(it.mgr, it.x1, y)
	end := NewCursor(it.mgr, it.x2+1, y)
	if it.x1 > it.x2 || y < 0 || y >= it.mgr.Height() {
		end = begin
	}
	it.reset(begin, end)
}

// Next advances to the next pixel. The first call positions the iterator on
// the first pixel. It returns false once the row is exhausted.
func (it *HLineIter) Next() bool {
	if !it.started {
		it.started = true
	} else if !it.cur.Equal(it.end) {
		it.cur.Inc()
	}
	return it.more()
}

// NextRow restarts the walk on the row below. It returns false when that
// row is outside the plane.
func (it *HLineIter) NextRow() bool {
	y := it.begin.Y() + 1
	it.seek(y)
	return y < it.mgr.Height()
}

// VLineIter walks one column from y1 to y2 inclusive.
type VLineIter struct {
	Iterator
	y1, y2 int
}

// VLine returns an iterator over column x from y1 to y2 inclusive, clipped
// to the plane.
func VLine(mgr *tile.Manager, x, y1, y2 int, opts ...Option) *VLineIter {
	it := &VLineIter{Iterator: newIterator(mgr, opts)}
	it.y1 = max(y1, 0)
	it.y2 = min(y2, mgr.Height()-1)
	it.seek(x)
	return it
}

func (it *VLineIter) seek(x int) {
	begin := NewCursor(it.mgr, x, it.y1)
	end := NewCursor(it.mgr, x, it.y2+1)
	if it.y1 > it.y2 || x < 0 || x >= it.mgr.Width() {
		end = begin
	}
	it.reset(begin, end)
}

// Next advances to the next pixel down the column.
func (it *VLineIter) Next() bool {
	if !it.started {
		it.started = true
	} else if !it.cur.Equal(it.end) {
		it.cur.IncRow()
	}
	return it.more()
}

// NextCol restarts the walk on the column to the right. It returns false
// when that column is outside the plane.
func (it *VLineIter) NextCol() bool {
	x := it.begin.X() + 1
	it.seek(x)
	return x < it.mgr.Width()
}

// RectIter walks a rectangle row by row.
type RectIter struct {
	Iterator
	r image.Rectangle
}

// Rect returns an iterator over r clipped to the plane.
func Rect(mgr *tile.Manager, r image.Rectangle, opts ...Option) *RectIter {
	it := &RectIter{Iterator: newIterator(mgr, opts)}
	it.r = r.Intersect(mgr.Bounds())
	begin := NewCursor(mgr, it.r.Min.X, it.r.Min.Y)
	end := NewCursor(mgr, it.r.Min.X, it.r.Max.Y)
	if it.r.Empty() {
		end = begin
	}
	it.reset(begin, end)
	return it
}

// Bounds returns the clipped rectangle being walked.
func (it *RectIter) Bounds() image.Rectangle { return it.r }

// Next advances to the next pixel, wrapping to the start of the next row at
// the right edge.
func (it *RectIter) Next() bool {
	switch {
	case !it.started:
		it.started = true
	case it.cur.Equal(it.end):
	default:
		it.cur.Inc()
		if it.cur.X() >= it.r.Max.X {
			it.cur = NewCursor(it.mgr, it.r.Min.X, it.cur.Y()+1)
		}
	}
	return it.more()
}
