// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/paintcore/quantum"
)

// pattern returns a deterministic quantum value for channel c of pixel (x, y).
func pattern(x, y, c int) quantum.Quantum {
	return quantum.Quantum((x*131 + y*977 + c*31 + 1) & 0xFFFF)
}

// fill writes pattern over the whole plane.
func fill(t *testing.T, m *Manager) {
	t.Helper()
	w, h, d := m.Width(), m.Height(), m.Depth()
	buf := make([]quantum.Quantum, w*h*d)
	for y := range h {
		for x := range w {
			for c := range d {
				buf[(y*w+x)*d+c] = pattern(x, y, c)
			}
		}
	}
	if err := m.WritePixelData(0, 0, w-1, h-1, buf, w*d); err != nil {
		t.Fatalf("WritePixelData: %v", err)
	}
}

// =============================================================================
// Grid
// =============================================================================

func TestManager_GridCoverage(t *testing.T) {
	tests := []struct {
		w, h int
	}{
		{200, 150},
		{128, 128},
		{64, 64},
		{1, 1},
		{65, 129},
		{63, 200},
	}

	for _, tt := range tests {
		m := NewManager(tt.w, tt.h, 4)
		wantX := (tt.w + 63) / 64
		wantY := (tt.h + 63) / 64
		if m.TileCount() != wantX*wantY {
			t.Errorf("%dx%d: TileCount = %d, want %d", tt.w, tt.h, m.TileCount(), wantX*wantY)
			continue
		}
		for i := range m.TileCount() {
			tl := m.TileAt(i, Read)
			tx, ty := i%wantX, i/wantX
			ww, wh := 64, 64
			if tx == wantX-1 && tt.w%64 != 0 {
				ww = tt.w % 64
			}
			if ty == wantY-1 && tt.h%64 != 0 {
				wh = tt.h % 64
			}
			if tl.Width() != ww || tl.Height() != wh {
				t.Errorf("%dx%d tile %d: %dx%d, want %dx%d", tt.w, tt.h, i, tl.Width(), tl.Height(), ww, wh)
			}
			if r := m.TileRect(i); r.Dx() != ww || r.Dy() != wh || r.Min.X != tx*64 || r.Min.Y != ty*64 {
				t.Errorf("%dx%d TileRect(%d) = %v", tt.w, tt.h, i, r)
			}
		}
	}
}

func TestManager_EmptyPlane(t *testing.T) {
	m := NewManager(0, 10, 4)
	if m.TileCount() != 0 {
		t.Errorf("TileCount = %d, want 0", m.TileCount())
	}
	if m.Tile(0, 0, Read) != nil {
		t.Error("Tile on empty plane is not nil")
	}
	if m.PixelData(0, 0, 0, 0, Read) != nil {
		t.Error("PixelData on empty plane is not nil")
	}
}

func TestManager_GridIsLazy(t *testing.T) {
	m := NewManager(200, 200, 4)
	if m.Mediator().Len() != 0 {
		t.Errorf("mediator holds %d tiles before first access", m.Mediator().Len())
	}
	m.Tile(0, 0, Read)
	if m.Mediator().Len() != m.TileCount() {
		t.Errorf("mediator holds %d tiles, want %d", m.Mediator().Len(), m.TileCount())
	}
	if m.MemSize() != 0 {
		t.Errorf("MemSize = %d before any write, want 0", m.MemSize())
	}
}

func TestManager_Boundary(t *testing.T) {
	m := NewManager(200, 150, 4)

	if m.Tile(199, 149, Read) == nil {
		t.Error("Tile(width-1, height-1) = nil")
	}
	if m.Tile(200, 150, Read) != nil {
		t.Error("Tile(width, height) != nil")
	}
	if m.Tile(-1, 0, Read) != nil {
		t.Error("Tile(-1, 0) != nil")
	}
	if m.TileAt(m.TileCount(), Read) != nil {
		t.Error("TileAt(TileCount) != nil")
	}
	if pd := m.PixelData(199, 149, 199, 149, Read); pd == nil {
		t.Error("PixelData at (width-1, height-1) = nil")
	}
	if pd := m.PixelData(200, 150, 200, 150, Read); pd != nil {
		t.Error("PixelData at (width, height) != nil")
	}
}

// =============================================================================
// Copy-on-write
// =============================================================================

func TestManager_CopyOnWrite(t *testing.T) {
	m := NewManager(128, 128, 4)
	fill(t, m)
	d := m.Duplicate()

	orig := m.Tile(0, 0, Read)
	clone := d.Tile(0, 0, Read)
	if orig != clone {
		t.Fatal("duplicate does not share tiles")
	}
	if orig.ShareCount() != 2 {
		t.Fatalf("ShareCount = %d, want 2", orig.ShareCount())
	}

	w := m.Tile(0, 0, Write)
	if w == clone {
		t.Fatal("write access returned the shared tile")
	}
	if w.ShareCount() != 1 {
		t.Errorf("written tile ShareCount = %d, want 1", w.ShareCount())
	}
	if clone.ShareCount() != 1 {
		t.Errorf("clone's tile ShareCount = %d, want 1", clone.ShareCount())
	}
	if !w.Dirty() {
		t.Error("cloned tile is not dirty")
	}

	w.Pixel(5, 5)[0] = pattern(5, 5, 0) + 1
	if got := d.Tile(5, 5, Read).Pixel(5, 5)[0]; got != pattern(5, 5, 0) {
		t.Errorf("duplicate sees %d after write through original, want %d", got, pattern(5, 5, 0))
	}

	// A second write fetch must not clone again.
	if again := m.Tile(0, 0, Write); again != w {
		t.Error("second write fetch cloned an unshared tile")
	}
}

func TestManager_CopyOnWriteThroughWritePixelData(t *testing.T) {
	m := NewManager(128, 128, 2)
	fill(t, m)
	d := m.Duplicate()

	buf := []quantum.Quantum{1, 2}
	if err := d.WritePixelData(100, 100, 100, 100, buf, 2); err != nil {
		t.Fatal(err)
	}
	if got := m.Tile(100, 100, Read).Pixel(100%64, 100%64)[0]; got != pattern(100, 100, 0) {
		t.Errorf("original changed to %d", got)
	}
	out := make([]quantum.Quantum, 2)
	if err := d.ReadPixelData(100, 100, 100, 100, out, 2); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out, buf) {
		t.Errorf("duplicate reads %v, want %v", out, buf)
	}
	// Untouched tiles stay shared.
	if !m.TileAt(0, Read).Shared() {
		t.Error("tile 0 should still be shared")
	}
}

func TestManager_DuplicateSized(t *testing.T) {
	m := NewManager(100, 100, 1)
	fill(t, m)
	d := m.DuplicateSized(200, 80)

	if d.TileCount() != 4*2 {
		t.Fatalf("TileCount = %d, want 8", d.TileCount())
	}
	if d.TileAt(0, Read) != m.TileAt(0, Read) {
		t.Error("full tile 0 not shared")
	}
	// Source tile (1,0) is 36 wide; the new grid wants 64 wide.
	nt := d.TileAt(1, Read)
	if nt == m.TileAt(1, Read) {
		t.Error("resized tile was shared")
	}
	if nt.Width() != 64 || nt.Height() != 64 {
		t.Errorf("resized tile is %dx%d", nt.Width(), nt.Height())
	}
	if got := nt.Pixel(70-64, 10)[0]; got != pattern(70, 10, 0) {
		t.Errorf("resized tile pixel = %d, want %d", got, pattern(70, 10, 0))
	}
	// Bottom row shrinks from 36 to 16 rows.
	if bt := d.TileAt(4, Read); bt.Height() != 16 || bt.Pixel(3, 15)[0] != pattern(3, 79, 0) {
		t.Errorf("bottom tile %dx%d pixel %d", bt.Width(), bt.Height(), bt.Pixel(3, 15)[0])
	}
	// Cells beyond the source grid start empty.
	if d.TileAt(3, Read).Allocated() {
		t.Error("cell beyond the source grid is allocated")
	}
}

func TestManager_DuplicateOfUnallocated(t *testing.T) {
	m := NewManager(100, 100, 4)
	d := m.Duplicate()
	if d.TileAt(0, Read).Shared() {
		t.Error("duplicate of an unallocated grid shares tiles")
	}
}

// =============================================================================
// Read / write
// =============================================================================

func TestManager_ReadWriteRoundTrip(t *testing.T) {
	m := NewManager(200, 150, 4)
	fill(t, m)

	out := make([]quantum.Quantum, 200*150*4)
	if err := m.ReadPixelData(0, 0, 199, 149, out, 200*4); err != nil {
		t.Fatal(err)
	}
	for y := range 150 {
		for x := range 200 {
			for c := range 4 {
				if got := out[(y*200+x)*4+c]; got != pattern(x, y, c) {
					t.Fatalf("(%d,%d,%d) = %d, want %d", x, y, c, got, pattern(x, y, c))
				}
			}
		}
	}
}

func TestManager_UnalignedRoundTripWithStride(t *testing.T) {
	m := NewManager(300, 200, 3)
	const x1, y1, x2, y2 = 30, 50, 170, 140
	w, h := x2-x1+1, y2-y1+1
	stride := w*3 + 7

	in := make([]quantum.Quantum, stride*h)
	for i := range in {
		in[i] = quantum.Quantum(i)
	}
	if err := m.WritePixelData(x1, y1, x2, y2, in, stride); err != nil {
		t.Fatal(err)
	}
	out := make([]quantum.Quantum, stride*h)
	if err := m.ReadPixelData(x1, y1, x2, y2, out, stride); err != nil {
		t.Fatal(err)
	}
	for y := range h {
		a := in[y*stride : y*stride+w*3]
		b := out[y*stride : y*stride+w*3]
		if !slices.Equal(a, b) {
			t.Fatalf("row %d differs", y)
		}
	}
	// Outside the rectangle nothing was written.
	if got := m.Tile(299, 0, Read); got.Allocated() {
		t.Error("tile outside the written rectangle was allocated")
	}
}

func TestManager_ReadDoesNotAllocate(t *testing.T) {
	m := NewManager(64, 64, 4)
	out := make([]quantum.Quantum, 4)
	out[0] = 9
	if err := m.ReadPixelData(1, 1, 1, 1, out, 4); err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 {
		t.Errorf("unallocated read = %d, want 0", out[0])
	}
	if m.TileAt(0, Read).Allocated() {
		t.Error("read allocated the tile")
	}
}

func TestManager_RegionErrors(t *testing.T) {
	m := NewManager(100, 100, 4)
	buf := make([]quantum.Quantum, 100*100*4)

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		buf            []quantum.Quantum
		stride         int
		want           error
	}{
		{"outside right", 0, 0, 100, 10, buf, 400, ErrOutOfBounds},
		{"negative", -1, 0, 10, 10, buf, 400, ErrOutOfBounds},
		{"inverted", 10, 10, 5, 5, buf, 400, ErrOutOfBounds},
		{"stride too small", 0, 0, 9, 9, buf, 39, ErrBufferTooSmall},
		{"buffer too small", 0, 0, 9, 9, buf[:39*4], 40, ErrBufferTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.ReadPixelData(tt.x1, tt.y1, tt.x2, tt.y2, tt.buf, tt.stride); !errors.Is(err, tt.want) {
				t.Errorf("ReadPixelData = %v, want %v", err, tt.want)
			}
			if err := m.WritePixelData(tt.x1, tt.y1, tt.x2, tt.y2, tt.buf, tt.stride); !errors.Is(err, tt.want) {
				t.Errorf("WritePixelData = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManager_WriteResetsHints(t *testing.T) {
	m := NewManager(64, 64, 2)
	tl := m.TileAt(0, Read)
	tl.ComputeHints(1, 0)
	if tl.RowHint(3) != HintTransparent {
		t.Fatal("precondition: row 3 should be transparent")
	}
	if err := m.WritePixelData(0, 3, 0, 3, []quantum.Quantum{0, 1}, 2); err != nil {
		t.Fatal(err)
	}
	if tl.RowHint(3) != HintUnknown {
		t.Errorf("RowHint(3) = %v after write, want Unknown", tl.RowHint(3))
	}
	if tl.RowHint(4) != HintTransparent {
		t.Errorf("RowHint(4) = %v, want Transparent", tl.RowHint(4))
	}
}

// =============================================================================
// Invalidation and dirty tracking
// =============================================================================

func TestManager_Invalidate(t *testing.T) {
	m := NewManager(128, 64, 4)
	tl := m.Tile(70, 10, Read)
	tl.SetValid(true)
	m.Invalidate(70, 10)
	if tl.Valid() {
		t.Error("Invalidate left tile valid")
	}

	tl.SetValid(true)
	m.InvalidateTile(tl)
	if tl.Valid() {
		t.Error("InvalidateTile left tile valid")
	}

	m.Invalidate(500, 500) // outside: no-op
	m.InvalidateTile(New(1, 1, 4))
}

func TestManager_InvalidateSharedClones(t *testing.T) {
	m := NewManager(64, 64, 4)
	shared := m.TileAt(0, Read)
	d := m.Duplicate()
	if shared != d.TileAt(0, Read) {
		t.Fatal("precondition: tile should be shared")
	}
	shared.SetValid(true)

	m.Invalidate(0, 0)

	if !d.TileAt(0, Read).Valid() {
		t.Error("invalidating one owner invalidated the other")
	}
	if m.TileAt(0, Read).Valid() {
		t.Error("invalidated tile still valid")
	}
	if m.TileAt(0, Read) == shared {
		t.Error("shared tile was not cloned before invalidation")
	}
}

func TestManager_InvalidateStamp(t *testing.T) {
	m := NewManager(256, 256, 4)
	stamp := NewManager(32, 32, 4)
	for i := range m.TileCount() {
		m.TileAt(i, Read).SetValid(true)
	}

	m.InvalidateStamp(stamp, 60, 0) // centre (76, 16) lies in tile 1

	for i := range m.TileCount() {
		if got, want := m.TileAt(i, Read).Valid(), i != 1; got != want {
			t.Errorf("tile %d valid = %v, want %v", i, got, want)
		}
	}
}

func TestManager_DirtyTracking(t *testing.T) {
	m := NewManager(200, 64, 1)
	if len(m.DirtyTiles()) != 0 {
		t.Error("fresh grid has dirty tiles")
	}
	if err := m.WritePixelData(130, 0, 130, 0, []quantum.Quantum{1}, 1); err != nil {
		t.Fatal(err)
	}
	if got := m.DirtyTiles(); !slices.Equal(got, []int{2}) {
		t.Errorf("DirtyTiles = %v, want [2]", got)
	}
	m.ClearDirty()
	if len(m.DirtyTiles()) != 0 {
		t.Error("ClearDirty left dirty tiles")
	}
}

func TestManager_Release(t *testing.T) {
	md := NewMediator()
	m := NewManager(128, 128, 4, WithMediator(md))
	m.Tile(0, 0, Read)
	d := m.Duplicate()
	if md.Len() != 4 {
		t.Fatalf("mediator Len = %d, want 4", md.Len())
	}
	m.Release()
	if got := d.TileAt(0, Read).ShareCount(); got != 1 {
		t.Errorf("ShareCount after release = %d, want 1", got)
	}
	d.Release()
	if md.Len() != 0 {
		t.Errorf("mediator Len = %d after releasing both, want 0", md.Len())
	}
}

func TestMode_String(t *testing.T) {
	if Read.String() != "R" || Write.String() != "W" || RW.String() != "RW" || Mode(0).String() != "-" {
		t.Error("Mode.String mismatch")
	}
}
