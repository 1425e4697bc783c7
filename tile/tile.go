// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tile implements the tiled pixel store behind every paint device.
//
// A plane of width × height pixels at a given channel depth is divided into
// 64x64 tiles. Tiles on the right and bottom edges are narrower or shorter
// when the plane is not evenly divisible. Key features:
//
//   - Lazy allocation of both the tile grid and each tile's buffer
//   - Copy-on-write sharing of tiles between managers
//   - Region checkout (PixelData) that aliases a tile when it can and
//     copies through a temporary buffer when it cannot
//   - Mementos that capture pre-write tiles for undo
//
// The single invariant everything else rests on: a tile whose share count
// is greater than one is never written in place. Manager clones it before a
// write handle is returned.
package tile

import (
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/paintcore/quantum"
)

// Tile size constants.
const (
	// Width is the width of a full tile in pixels.
	Width = 64

	// Height is the height of a full tile in pixels.
	Height = 64

	// Pixels is the number of pixels in a full tile.
	Pixels = Width * Height
)

// RowHint records what is known about one row of a tile.
type RowHint uint8

const (
	// HintUnknown means the row may contain anything.
	HintUnknown RowHint = iota

	// HintTransparent means every pixel of the row is fully transparent.
	HintTransparent

	// HintOpaque means every pixel of the row is fully opaque.
	HintOpaque
)

// String returns the name of the hint.
func (h RowHint) String() string {
	switch h {
	case HintTransparent:
		return "Transparent"
	case HintOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Tile holds one rectangular block of channel data plus its sharing and
// validity metadata.
//
// The buffer holds width*height*depth quanta in row-major pixel order and
// is allocated on first access.
type Tile struct {
	width  int
	height int
	depth  int
	data   []quantum.Quantum

	refs   atomic.Int32
	shares atomic.Int32
	writes atomic.Int32

	valid atomic.Bool
	dirty atomic.Bool

	hints []RowHint
}

// New creates a tile of the given size. The data buffer is not allocated.
// Panics if any dimension is not positive or exceeds the full tile size.
func New(width, height, depth int) *Tile {
	if width <= 0 || height <= 0 || depth <= 0 || width > Width || height > Height {
		panic("tile: invalid tile dimensions")
	}
	t := &Tile{
		width:  width,
		height: height,
		depth:  depth,
		hints:  make([]RowHint, height),
	}
	return t
}

// Width returns the tile width in pixels.
func (t *Tile) Width() int { return t.width }

// Height returns the tile height in pixels.
func (t *Tile) Height() int { return t.height }

// Depth returns the number of channels per pixel.
func (t *Tile) Depth() int { return t.depth }

// Stride returns the number of quanta in one row.
func (t *Tile) Stride() int { return t.width * t.depth }

// Size returns the number of quanta in the buffer.
func (t *Tile) Size() int { return t.width * t.height * t.depth }

// Allocated reports whether the buffer exists.
func (t *Tile) Allocated() bool { return t.data != nil }

// Allocate creates the zeroed buffer if it does not exist yet.
func (t *Tile) Allocate() {
	if t.data == nil {
		t.data = make([]quantum.Quantum, t.Size())
	}
}

// Data returns the buffer starting at the pixel (xoff, yoff), allocating
// it first if needed. The returned slice runs to the end of the tile.
// Panics if the offset is outside the tile.
func (t *Tile) Data(xoff, yoff int) []quantum.Quantum {
	if xoff < 0 || xoff >= t.width || yoff < 0 || yoff >= t.height {
		panic("tile: offset out of bounds")
	}
	t.Allocate()
	return t.data[(yoff*t.width+xoff)*t.depth:]
}

// Pixel returns the depth-long slice for pixel (x, y).
func (t *Tile) Pixel(x, y int) []quantum.Quantum {
	return t.Data(x, y)[:t.depth:t.depth]
}

// Row returns the quanta of row y.
func (t *Tile) Row(y int) []quantum.Quantum {
	return t.Data(0, y)[:t.Stride()]
}

// Duplicate copies the contents of other into t. When the dimensions differ
// only the overlapping rows and columns are copied; the rest of t keeps
// what it had. Both tiles must have the same depth.
func (t *Tile) Duplicate(other *Tile) {
	if other.depth != t.depth {
		panic("tile: depth mismatch in Duplicate")
	}
	t.Allocate()
	rows := min(t.height, other.height)
	n := min(t.width, other.width) * t.depth
	for y := range rows {
		dst := t.data[y*t.Stride() : y*t.Stride()+n]
		if other.Allocated() {
			copy(dst, other.data[y*other.Stride():])
		} else {
			clear(dst)
		}
		if t.width == other.width {
			t.hints[y] = other.hints[y]
		} else {
			t.hints[y] = HintUnknown
		}
	}
}

// Clone returns a deep copy of t with fresh counters. The clone is dirty
// and invalid.
func (t *Tile) Clone() *Tile {
	c := New(t.width, t.height, t.depth)
	if t.Allocated() {
		c.data = make([]quantum.Quantum, len(t.data))
		copy(c.data, t.data)
	}
	copy(c.hints, t.hints)
	c.dirty.Store(true)
	return c
}

// Ref increments the count of open views on the tile and returns the new
// value. Iterators and aliasing pixel data hold one reference each.
func (t *Tile) Ref() int32 { return t.refs.Add(1) }

// Deref decrements the reference count and returns the new value.
func (t *Tile) Deref() int32 { return t.refs.Add(-1) }

// Refs returns the reference count.
func (t *Tile) Refs() int32 { return t.refs.Load() }

// ShareRef records one more owner of the tile.
func (t *Tile) ShareRef() int32 { return t.shares.Add(1) }

// ShareRelease drops one owner of the tile.
func (t *Tile) ShareRelease() int32 {
	n := t.shares.Add(-1)
	if n < 0 {
		panic("tile: share count underflow")
	}
	return n
}

// ShareCount returns the number of owners.
func (t *Tile) ShareCount() int32 { return t.shares.Load() }

// Shared reports whether more than one owner holds the tile. A shared tile
// is read-only until its owner clones it.
func (t *Tile) Shared() bool { return t.shares.Load() > 1 }

// WriteRef records an outstanding write handle.
func (t *Tile) WriteRef() int32 { return t.writes.Add(1) }

// WriteRelease drops an outstanding write handle.
func (t *Tile) WriteRelease() int32 { return t.writes.Add(-1) }

// Writers returns the number of outstanding write handles.
func (t *Tile) Writers() int32 { return t.writes.Load() }

// Valid reports whether cached renderings of the tile are current.
func (t *Tile) Valid() bool { return t.valid.Load() }

// SetValid marks cached renderings as current or stale.
func (t *Tile) SetValid(v bool) { t.valid.Store(v) }

// Dirty reports whether the tile changed since the dirty flag was cleared.
func (t *Tile) Dirty() bool { return t.dirty.Load() }

// SetDirty sets the dirty flag.
func (t *Tile) SetDirty(v bool) { t.dirty.Store(v) }

// RowHint returns the drawing hint of row y.
func (t *Tile) RowHint(y int) RowHint { return t.hints[y] }

// SetRowHint sets the drawing hint of row y.
func (t *Tile) SetRowHint(y int, h RowHint) { t.hints[y] = h }

// ResetHints marks rows y0 through y1 (inclusive) as unknown.
func (t *Tile) ResetHints(y0, y1 int) {
	y0 = max(y0, 0)
	y1 = min(y1, t.height-1)
	for y := y0; y <= y1; y++ {
		t.hints[y] = HintUnknown
	}
}

// ComputeHints scans every row and records whether channel alpha holds
// transparent in every pixel, or the inverse of transparent in every
// pixel. Models that store coverage rather than opacity pass Max as
// transparent. Unallocated tiles read as all zero.
func (t *Tile) ComputeHints(alpha int, transparent quantum.Quantum) {
	if alpha < 0 || alpha >= t.depth {
		return
	}
	opaque := quantum.Inv(transparent)
	if !t.Allocated() {
		h := HintUnknown
		switch {
		case transparent == 0:
			h = HintTransparent
		case opaque == 0:
			h = HintOpaque
		}
		for y := range t.hints {
			t.hints[y] = h
		}
		return
	}
	for y := range t.height {
		row := t.data[y*t.Stride() : (y+1)*t.Stride()]
		empty, solid := true, true
		for i := alpha; i < len(row); i += t.depth {
			a := row[i]
			if a != transparent {
				empty = false
			}
			if a != opaque {
				solid = false
			}
			if !empty && !solid {
				break
			}
		}
		switch {
		case empty:
			t.hints[y] = HintTransparent
		case solid:
			t.hints[y] = HintOpaque
		default:
			t.hints[y] = HintUnknown
		}
	}
}

// ConvertToImage renders the tile into dst with its top-left corner at
// origin, converting each pixel with toNRGBA. Pixels whose converted alpha
// is zero are written as transparent black, and rows hinted transparent
// skip the conversion entirely. Hints are ignored while a write handle is
// open on the tile. An unallocated tile is filled with the conversion of
// the zero pixel.
func (t *Tile) ConvertToImage(dst *image.NRGBA, origin image.Point, toNRGBA func([]quantum.Quantum) color.NRGBA) {
	b := dst.Bounds()
	var blank color.NRGBA
	if !t.Allocated() {
		blank = visible(toNRGBA(make([]quantum.Quantum, t.depth)))
	}
	hinted := t.Writers() == 0
	for y := range t.height {
		py := origin.Y + y
		if py < b.Min.Y || py >= b.Max.Y {
			continue
		}
		for x := range t.width {
			px := origin.X + x
			if px < b.Min.X || px >= b.Max.X {
				continue
			}
			switch {
			case !t.Allocated():
				dst.SetNRGBA(px, py, blank)
			case hinted && t.hints[y] == HintTransparent:
				dst.SetNRGBA(px, py, color.NRGBA{})
			default:
				dst.SetNRGBA(px, py, visible(toNRGBA(t.Pixel(x, y))))
			}
		}
	}
}

func visible(c color.NRGBA) color.NRGBA {
	if c.A == 0 {
		return color.NRGBA{}
	}
	return c
}
