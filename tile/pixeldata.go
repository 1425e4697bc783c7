// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"image"

	"github.com/gogpu/paintcore/quantum"
)

// PixelData is a transient view over a rectangle of a plane.
//
// When the rectangle is exactly one tile's extent the view aliases the
// tile buffer. Otherwise the view owns a buffer that is filled from the
// plane on checkout (Read) and scattered back on release (Write).
type PixelData struct {
	// X1, Y1, X2, Y2 are the inclusive corners in plane coordinates.
	X1, Y1, X2, Y2 int

	// Width and Height are the rectangle size in pixels.
	Width, Height int

	// Depth is the number of channels per pixel.
	Depth int

	// Stride is the number of quanta between the starts of two rows.
	Stride int

	// Data holds the pixels, Height rows of Width*Depth quanta each,
	// starting every Stride quanta.
	Data []quantum.Quantum

	// Mode is the access the view was checked out with.
	Mode Mode

	mgr      *Manager
	tile     *Tile
	released bool
}

// Owned reports whether the view holds its own buffer rather than
// aliasing a tile.
func (pd *PixelData) Owned() bool { return pd.tile == nil }

// Rect returns the rectangle as a half-open image.Rectangle.
func (pd *PixelData) Rect() image.Rectangle {
	return image.Rect(pd.X1, pd.Y1, pd.X2+1, pd.Y2+1)
}

// Pixel returns pixel (x, y) relative to the rectangle origin.
func (pd *PixelData) Pixel(x, y int) []quantum.Quantum {
	off := y*pd.Stride + x*pd.Depth
	return pd.Data[off : off+pd.Depth : off+pd.Depth]
}

// Row returns row y relative to the rectangle origin.
func (pd *PixelData) Row(y int) []quantum.Quantum {
	off := y * pd.Stride
	return pd.Data[off : off+pd.Width*pd.Depth]
}

// PixelData checks out the inclusive rectangle (x1, y1)-(x2, y2).
// Returns nil if the rectangle is not entirely inside the plane. The view
// must be handed back with ReleasePixelData.
func (m *Manager) PixelData(x1, y1, x2, y2 int, mode Mode) *PixelData {
	if m.checkRect(x1, y1, x2, y2) != nil {
		return nil
	}
	pd := &PixelData{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		Width:  x2 - x1 + 1,
		Height: y2 - y1 + 1,
		Depth:  m.depth,
		Mode:   mode,
		mgr:    m,
	}

	if idx, ok := m.alignedTile(x1, y1, x2, y2); ok {
		m.mu.Lock()
		t := m.tileLocked(idx, mode)
		m.mu.Unlock()

		if mode&Write != 0 {
			t.WriteRef()
			t.ResetHints(0, t.height-1)
		}
		t.Ref()
		pd.tile = t
		pd.Stride = t.Stride()
		pd.Data = t.Data(0, 0)
		return pd
	}

	pd.Stride = pd.Width * m.depth
	pd.Data = make([]quantum.Quantum, pd.Stride*pd.Height)
	if mode&Read != 0 {
		// The rectangle was validated above, so the read cannot fail.
		_ = m.ReadPixelData(x1, y1, x2, y2, pd.Data, pd.Stride)
	}
	return pd
}

// alignedTile reports whether the rectangle is exactly one tile.
func (m *Manager) alignedTile(x1, y1, x2, y2 int) (int, bool) {
	if x1%Width != 0 || y1%Height != 0 {
		return 0, false
	}
	tx, ty := x1/Width, y1/Height
	w, h := m.tileSize(tx, ty)
	if x2-x1+1 != w || y2-y1+1 != h {
		return 0, false
	}
	return ty*m.tilesX + tx, true
}

// ReleasePixelData hands a view back. An owned view checked out with Write
// is written back to the plane. Releasing nil or releasing twice is a
// no-op.
func (m *Manager) ReleasePixelData(pd *PixelData) error {
	if pd == nil || pd.released {
		return nil
	}
	if pd.mgr != m {
		panic("tile: PixelData released to the wrong manager")
	}
	pd.released = true
	if t := pd.tile; t != nil {
		if pd.Mode&Write != 0 {
			t.WriteRelease()
			t.SetDirty(true)
		}
		t.Deref()
		return nil
	}
	if pd.Mode&Write != 0 {
		return m.WritePixelData(pd.X1, pd.Y1, pd.X2, pd.Y2, pd.Data, pd.Stride)
	}
	return nil
}
