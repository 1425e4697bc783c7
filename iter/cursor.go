// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package iter walks the pixels of a tile.Manager without exposing tile
// boundaries.
//
// All iterators are built from a Cursor, which tracks the tile column,
// row and in-tile offset of a plane position and rolls over tile edges,
// including the narrower edge tiles. Iterators hand out slices that alias
// tile buffers; dereferencing past the end is a programming error.
package iter

import (
	"github.com/gogpu/paintcore/tile"
)

// Cursor is a plane position expressed as tile and in-tile offset.
type Cursor struct {
	mgr        *tile.Manager
	x, y       int
	tx, ty     int
	xoff, yoff int
	tw, th     int
}

// NewCursor returns a cursor at plane position (x, y). The position may lie
// outside the plane; such a cursor has Index -1.
func NewCursor(mgr *tile.Manager, x, y int) Cursor {
	c := Cursor{mgr: mgr, x: x, y: y}
	c.tx, c.xoff = split(x, tile.Width)
	c.ty, c.yoff = split(y, tile.Height)
	c.tw = c.tileWidth(c.tx)
	c.th = c.tileHeight(c.ty)
	return c
}

// split divides v by n rounding towards negative infinity.
func split(v, n int) (q, r int) {
	q, r = v/n, v%n
	if r < 0 {
		q--
		r += n
	}
	return q, r
}

func (c *Cursor) tileWidth(tx int) int {
	if w := c.mgr.Width() - tx*tile.Width; w < tile.Width && w > 0 {
		return w
	}
	return tile.Width
}

func (c *Cursor) tileHeight(ty int) int {
	if h := c.mgr.Height() - ty*tile.Height; h < tile.Height && h > 0 {
		return h
	}
	return tile.Height
}

// X returns the plane column.
func (c Cursor) X() int { return c.x }

// Y returns the plane row.
func (c Cursor) Y() int { return c.y }

// Offset returns the position inside the current tile.
func (c Cursor) Offset() (xoff, yoff int) { return c.xoff, c.yoff }

// Index returns the grid index of the current tile, or -1 outside the
// plane.
func (c Cursor) Index() int {
	if c.x < 0 || c.y < 0 || c.x >= c.mgr.Width() || c.y >= c.mgr.Height() {
		return -1
	}
	return c.ty*c.mgr.TilesX() + c.tx
}

// Equal reports whether both cursors address the same position.
func (c Cursor) Equal(o Cursor) bool {
	return c.x == o.x && c.y == o.y
}

// Inc moves one pixel right.
func (c *Cursor) Inc() {
	c.x++
	c.xoff++
	if c.xoff >= c.tw {
		c.tx++
		c.xoff = 0
		c.tw = c.tileWidth(c.tx)
	}
}

// Dec moves one pixel left.
func (c *Cursor) Dec() {
	c.x--
	c.xoff--
	if c.xoff < 0 {
		c.tx--
		c.tw = c.tileWidth(c.tx)
		c.xoff = c.tw - 1
	}
}

// IncRow moves one pixel down.
func (c *Cursor) IncRow() {
	c.y++
	c.yoff++
	if c.yoff >= c.th {
		c.ty++
		c.yoff = 0
		c.th = c.tileHeight(c.ty)
	}
}

// DecRow moves one pixel up.
func (c *Cursor) DecRow() {
	c.y--
	c.yoff--
	if c.yoff < 0 {
		c.ty--
		c.th = c.tileHeight(c.ty)
		c.yoff = c.th - 1
	}
}
