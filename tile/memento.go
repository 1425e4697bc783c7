// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"image"
	"slices"

	"github.com/gogpu/paintcore/quantum"
)

// Memento captures the tiles of a manager as they were before a series of
// writes.
//
// While a memento is capturing, the first write access to any tile shares
// that tile into the memento before the write handle is handed out. The
// share forces the manager to clone, so the memento keeps the pre-write
// tile untouched. Capturing costs nothing for tiles that are never written.
type Memento struct {
	mgr       *Manager
	id        OwnerID
	saved     map[int]*Tile
	capturing bool
}

// NewMemento creates a memento for m and starts capturing.
func (m *Manager) NewMemento() *Memento {
	mem := &Memento{
		mgr:       m,
		id:        newOwnerID(),
		saved:     make(map[int]*Tile),
		capturing: true,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.mementos = append(m.mementos, mem)
	return mem
}

// Manager returns the manager the memento belongs to.
func (mem *Memento) Manager() *Manager { return mem.mgr }

// Capturing reports whether the memento still records first writes.
func (mem *Memento) Capturing() bool {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	return mem.capturing
}

// Finish stops capturing. Saved tiles are kept.
func (mem *Memento) Finish() {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	mem.finishLocked()
}

func (mem *Memento) finishLocked() {
	if !mem.capturing {
		return
	}
	mem.capturing = false
	m := mem.mgr
	m.mementos = slices.DeleteFunc(m.mementos, func(x *Memento) bool { return x == mem })
}

// Save shares the current tile at index into the memento unless it was
// saved already.
func (mem *Memento) Save(index int) {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	mem.saveLocked(index)
}

// SaveRect saves every tile intersecting the inclusive rectangle.
func (mem *Memento) SaveRect(x1, y1, x2, y2 int) {
	m := mem.mgr
	r := m.Bounds().Intersect(rectInclusive(x1, y1, x2, y2))
	if r.Empty() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.forEachSpan(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, func(index, _, _, _, _, _, _ int) {
		mem.saveLocked(index)
	})
}

// saveLocked shares the tile at index into the memento. A tile with an
// open write handle is copied instead, since the handle keeps writing to
// it in place.
// Caller must hold mem.mgr.mu.
func (mem *Memento) saveLocked(index int) {
	if _, ok := mem.saved[index]; ok {
		return
	}
	m := mem.mgr
	m.allocate()
	if index < 0 || index >= len(m.tiles) {
		return
	}
	t := m.tiles[index]
	if t.Writers() > 0 {
		t = t.Clone()
	}
	m.md.Attach(t, mem.id, index)
	mem.saved[index] = t
}

// Saved returns the indices of the saved tiles in ascending order.
func (mem *Memento) Saved() []int {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	idx := make([]int, 0, len(mem.saved))
	for i := range mem.saved {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// Has reports whether the tile at index was saved.
func (mem *Memento) Has(index int) bool {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	_, ok := mem.saved[index]
	return ok
}

// OldTile returns the tile at index as it was when capturing started: the
// saved tile if there is one, else the manager's current tile.
func (mem *Memento) OldTile(index int) *Tile {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	if t, ok := mem.saved[index]; ok {
		return t
	}
	return mem.mgr.tileLocked(index, Read)
}

// OldPixel returns pixel (x, y) as it was when capturing started, or nil
// if the pixel is outside the plane. The slice must not be modified.
func (mem *Memento) OldPixel(x, y int) []quantum.Quantum {
	m := mem.mgr
	idx := m.TileIndex(x, y)
	if idx < 0 {
		return nil
	}
	t := mem.OldTile(idx)
	xoff, yoff := x%Width, y%Height
	if !t.Allocated() {
		return make([]quantum.Quantum, t.depth)
	}
	return t.Pixel(xoff, yoff)
}

// Swap exchanges the saved tiles with the manager's current ones. Calling
// Swap once undoes the captured writes; calling it again redoes them.
// Swap stops capturing.
func (mem *Memento) Swap() {
	m := mem.mgr
	m.mu.Lock()
	defer m.mu.Unlock()

	mem.finishLocked()
	m.allocate()
	for idx, saved := range mem.saved {
		cur := m.tiles[idx]
		if cur == saved {
			continue
		}
		m.md.Attach(saved, m.id, idx)
		m.md.Detach(cur, m.id)
		m.md.Attach(cur, mem.id, idx)
		m.md.Detach(saved, mem.id)
		m.tiles[idx] = saved
		mem.saved[idx] = cur
		saved.SetDirty(true)
		saved.SetValid(false)
	}
	m.log.Debug("tile: memento swapped", "manager", m.id, "memento", mem.id, "tiles", len(mem.saved))
}

// MemSize returns the bytes held by saved tiles that the manager does not
// also hold.
func (mem *Memento) MemSize() int {
	mem.mgr.mu.Lock()
	defer mem.mgr.mu.Unlock()

	n := 0
	for idx, t := range mem.saved {
		if mem.mgr.tiles != nil && mem.mgr.tiles[idx] == t {
			continue
		}
		if t.Allocated() {
			n += t.Size() * 2
		}
	}
	return n
}

// Release stops capturing and drops every saved tile.
func (mem *Memento) Release() {
	m := mem.mgr
	m.mu.Lock()
	defer m.mu.Unlock()

	mem.finishLocked()
	for _, t := range mem.saved {
		m.md.Detach(t, mem.id)
	}
	clear(mem.saved)
}

// rectInclusive converts inclusive corners to a half-open rectangle.
func rectInclusive(x1, y1, x2, y2 int) image.Rectangle {
	return image.Rect(x1, y1, x2+1, y2+1)
}
