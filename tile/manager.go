// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/paintcore/quantum"
)

// Mode selects the kind of access requested from a Manager.
type Mode uint8

const (
	// Read requests read access.
	Read Mode = 1 << iota

	// Write requests write access. A shared tile is cloned first.
	Write

	// RW requests read and write access.
	RW = Read | Write
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case Read:
		return "R"
	case Write:
		return "W"
	case RW:
		return "RW"
	default:
		return "-"
	}
}

// Errors returned by Manager region operations.
var (
	// ErrOutOfBounds is returned when a rectangle falls outside the plane.
	ErrOutOfBounds = errors.New("tile: rectangle outside plane")

	// ErrBufferTooSmall is returned when a caller buffer cannot hold the
	// requested rectangle at the given stride.
	ErrBufferTooSmall = errors.New("tile: buffer too small")
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	mediator *Mediator
	logger   *slog.Logger
}

// WithMediator makes the manager register its tiles with md. Managers that
// share tiles through Duplicate always share a mediator.
func WithMediator(md *Mediator) Option {
	return func(o *options) {
		o.mediator = md
	}
}

// WithLogger sets the logger used for tile-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Manager owns the grid of tiles for one pixel plane and mediates all
// access to them.
//
// The grid holds ceil(width/Width) × ceil(height/Height) tiles in
// row-major order and is built on first access. Any request for write
// access to a tile held by more than one owner clones the tile first, so a
// write through one manager is never visible through another.
//
// Thread safety: Manager methods are safe for concurrent use. Slices handed
// out by Tile, PixelData and Data are not guarded; callers writing to the
// same plane from several goroutines must coordinate themselves.
type Manager struct {
	mu  sync.Mutex
	id  OwnerID
	md  *Mediator
	log *slog.Logger

	width  int
	height int
	depth  int
	tilesX int
	tilesY int

	tiles    []*Tile
	mementos []*Memento
}

// NewManager creates a manager for a width × height plane of depth
// channels. Non-positive dimensions produce an empty plane.
// Panics if depth is not positive.
func NewManager(width, height, depth int, opts ...Option) *Manager {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mediator == nil {
		o.mediator = NewMediator()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return newManager(width, height, depth, o.mediator, o.logger)
}

func newManager(width, height, depth int, md *Mediator, log *slog.Logger) *Manager {
	if depth <= 0 {
		panic("tile: depth must be positive")
	}
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	return &Manager{
		id:     newOwnerID(),
		md:     md,
		log:    log,
		width:  width,
		height: height,
		depth:  depth,
		tilesX: (width + Width - 1) / Width,
		tilesY: (height + Height - 1) / Height,
	}
}

// ID returns the owner identifier of the manager.
func (m *Manager) ID() OwnerID { return m.id }

// Mediator returns the mediator the manager registers its tiles with.
func (m *Manager) Mediator() *Mediator { return m.md }

// Width returns the plane width in pixels.
func (m *Manager) Width() int { return m.width }

// Height returns the plane height in pixels.
func (m *Manager) Height() int { return m.height }

// Depth returns the number of channels per pixel.
func (m *Manager) Depth() int { return m.depth }

// Bounds returns the plane rectangle.
func (m *Manager) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// TilesX returns the number of tile columns.
func (m *Manager) TilesX() int { return m.tilesX }

// TilesY returns the number of tile rows.
func (m *Manager) TilesY() int { return m.tilesY }

// TileCount returns the number of tiles in the grid.
func (m *Manager) TileCount() int { return m.tilesX * m.tilesY }

// TileIndex returns the grid index of the tile containing pixel
// (xpix, ypix), or -1 if the pixel is outside the plane.
func (m *Manager) TileIndex(xpix, ypix int) int {
	if xpix < 0 || xpix >= m.width || ypix < 0 || ypix >= m.height {
		return -1
	}
	return (ypix/Height)*m.tilesX + xpix/Width
}

// TileRect returns the pixel rectangle covered by the tile at index.
// Returns the empty rectangle for an invalid index.
func (m *Manager) TileRect(index int) image.Rectangle {
	if index < 0 || index >= m.TileCount() {
		return image.Rectangle{}
	}
	tx, ty := index%m.tilesX, index/m.tilesX
	w, h := m.tileSize(tx, ty)
	return image.Rect(tx*Width, ty*Height, tx*Width+w, ty*Height+h)
}

// tileSize returns the dimensions of the tile at grid column tx, row ty.
// Edge tiles cover only the remainder of the plane.
func (m *Manager) tileSize(tx, ty int) (w, h int) {
	w, h = Width, Height
	if (tx+1)*Width > m.width {
		w = m.width - tx*Width
	}
	if (ty+1)*Height > m.height {
		h = m.height - ty*Height
	}
	return w, h
}

// allocate builds the tile grid on first use. Tile buffers stay lazy.
// Caller must hold m.mu.
func (m *Manager) allocate() {
	if m.tiles != nil || m.TileCount() == 0 {
		return
	}
	m.tiles = make([]*Tile, m.TileCount())
	for ty := range m.tilesY {
		for tx := range m.tilesX {
			w, h := m.tileSize(tx, ty)
			t := New(w, h, m.depth)
			i := ty*m.tilesX + tx
			m.md.Attach(t, m.id, i)
			m.tiles[i] = t
		}
	}
	m.log.Debug("tile: grid allocated", "manager", m.id, "tiles", len(m.tiles),
		"width", m.width, "height", m.height, "depth", m.depth)
}

// Tile returns the tile containing pixel (xpix, ypix), or nil if the pixel
// is outside the plane. With Write in mode a shared tile is cloned and the
// clone returned.
func (m *Manager) Tile(xpix, ypix int, mode Mode) *Tile {
	idx := m.TileIndex(xpix, ypix)
	if idx < 0 {
		return nil
	}
	return m.TileAt(idx, mode)
}

// TileAt returns the tile at grid index, or nil if the index is invalid.
// With Write in mode a shared tile is cloned and the clone returned.
func (m *Manager) TileAt(index int, mode Mode) *Tile {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tileLocked(index, mode)
}

// tileLocked resolves a tile for the given access mode. Any capturing
// memento saves the tile before write access is handed out, which makes
// the tile shared and forces the clone below.
// Caller must hold m.mu.
func (m *Manager) tileLocked(index int, mode Mode) *Tile {
	if index < 0 || index >= m.TileCount() {
		return nil
	}
	m.allocate()

	t := m.tiles[index]
	if mode&Write == 0 {
		return t
	}
	for _, mem := range m.mementos {
		mem.saveLocked(index)
	}
	if t.Shared() {
		t = m.cloneLocked(index)
	}
	t.SetDirty(true)
	t.SetValid(false)
	return t
}

// cloneLocked replaces the tile at index with a private copy.
// Caller must hold m.mu.
func (m *Manager) cloneLocked(index int) *Tile {
	old := m.tiles[index]
	c := old.Clone()
	m.md.Detach(old, m.id)
	m.md.Attach(c, m.id, index)
	m.tiles[index] = c
	m.log.Debug("tile: copy-on-write", "manager", m.id, "index", index, "shares", old.ShareCount())
	return c
}

// Duplicate returns a manager of the same size that shares every tile with
// m. Either side cloning on write keeps the two planes independent.
func (m *Manager) Duplicate() *Manager {
	return m.DuplicateSized(m.width, m.height)
}

// DuplicateSized returns a manager of the given size built from m's tiles.
// A tile whose dimensions match the new grid is shared unless a write
// handle is open on it, in which case the new manager gets a copy. Other
// tiles are freshly sized and receive the overlapping pixels. Grid cells
// beyond m's grid start empty.
func (m *Manager) DuplicateSized(width, height int) *Manager {
	d := newManager(width, height, m.depth, m.md, m.log)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tiles == nil || d.TileCount() == 0 {
		return d
	}
	d.tiles = make([]*Tile, d.TileCount())
	shared := 0
	for ty := range d.tilesY {
		for tx := range d.tilesX {
			w, h := d.tileSize(tx, ty)
			var src *Tile
			if tx < m.tilesX && ty < m.tilesY {
				src = m.tiles[ty*m.tilesX+tx]
			}
			var t *Tile
			switch {
			case src != nil && src.width == w && src.height == h && src.Writers() == 0:
				t = src
				shared++
			case src != nil && src.width == w && src.height == h:
				t = src.Clone()
			case src != nil:
				t = New(w, h, m.depth)
				t.Duplicate(src)
				t.SetDirty(true)
			default:
				t = New(w, h, m.depth)
			}
			i := ty*d.tilesX + tx
			m.md.Attach(t, d.id, i)
			d.tiles[i] = t
		}
	}
	m.log.Debug("tile: manager duplicated", "source", m.id, "dest", d.id,
		"tiles", len(d.tiles), "shared", shared)
	return d
}

// checkRect validates an inclusive rectangle against the plane.
func (m *Manager) checkRect(x1, y1, x2, y2 int) error {
	if x1 > x2 || y1 > y2 || x1 < 0 || y1 < 0 || x2 >= m.width || y2 >= m.height {
		return ErrOutOfBounds
	}
	return nil
}

// checkBuffer validates that buf holds h rows of w pixels at stride.
func (m *Manager) checkBuffer(w, h int, buf []quantum.Quantum, stride int) error {
	n := w * m.depth
	if stride < n || len(buf) < stride*(h-1)+n {
		return ErrBufferTooSmall
	}
	return nil
}

// ReadPixelData copies the inclusive rectangle (x1, y1)-(x2, y2) into buf,
// one row every stride quanta. Unallocated tiles read as zero and are not
// allocated.
func (m *Manager) ReadPixelData(x1, y1, x2, y2 int, buf []quantum.Quantum, stride int) error {
	if err := m.checkRect(x1, y1, x2, y2); err != nil {
		return err
	}
	if err := m.checkBuffer(x2-x1+1, y2-y1+1, buf, stride); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocate()
	m.forEachSpan(x1, y1, x2, y2, func(index, xoff, yoff, rows, cols, bx, by int) {
		t := m.tiles[index]
		n := cols * m.depth
		for r := range rows {
			dst := buf[(by+r)*stride+bx*m.depth:][:n]
			if t.Allocated() {
				copy(dst, t.Data(xoff, yoff+r))
			} else {
				clear(dst)
			}
		}
	})
	return nil
}

// WritePixelData copies buf into the inclusive rectangle (x1, y1)-(x2, y2),
// reading one row every stride quanta. Every touched tile is fetched for
// writing, so shared tiles are cloned first.
func (m *Manager) WritePixelData(x1, y1, x2, y2 int, buf []quantum.Quantum, stride int) error {
	if err := m.checkRect(x1, y1, x2, y2); err != nil {
		return err
	}
	if err := m.checkBuffer(x2-x1+1, y2-y1+1, buf, stride); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocate()
	m.forEachSpan(x1, y1, x2, y2, func(index, xoff, yoff, rows, cols, bx, by int) {
		t := m.tileLocked(index, Write)
		n := cols * m.depth
		for r := range rows {
			copy(t.Data(xoff, yoff+r)[:n], buf[(by+r)*stride+bx*m.depth:][:n])
		}
		t.ResetHints(yoff, yoff+rows-1)
	})
	return nil
}

// forEachSpan walks the tiles covering an inclusive rectangle. For each
// tile it reports the in-tile offset, the clipped row and column counts,
// and the position of the span relative to the rectangle origin.
//
// rows is the lesser of what remains of the tile and what remains of the
// rectangle; cols likewise.
func (m *Manager) forEachSpan(x1, y1, x2, y2 int, fn func(index, xoff, yoff, rows, cols, bx, by int)) {
	for y := y1; y <= y2; {
		ty := y / Height
		yoff := y - ty*Height
		_, th := m.tileSize(0, ty)
		rows := min(th-yoff, y2-y+1)
		for x := x1; x <= x2; {
			tx := x / Width
			xoff := x - tx*Width
			tw, _ := m.tileSize(tx, ty)
			cols := min(tw-xoff, x2-x+1)
			fn(ty*m.tilesX+tx, xoff, yoff, rows, cols, x-x1, y-y1)
			x += cols
		}
		y += rows
	}
}

// Invalidate marks the tile containing pixel (xpix, ypix) as needing a
// fresh rendering. A shared tile is cloned first so other owners keep
// their cached renderings.
func (m *Manager) Invalidate(xpix, ypix int) {
	idx := m.TileIndex(xpix, ypix)
	if idx < 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidateLocked(idx)
}

// InvalidateTile invalidates t if m owns it.
func (m *Manager) InvalidateTile(t *Tile) {
	if t == nil {
		return
	}
	idx, ok := m.md.Index(t, m.id)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidateLocked(idx)
}

// InvalidateStamp invalidates the tile under the centre of stamp's
// top-left tile when stamp is placed at (x, y). Brush and stamp tools use
// it to keep the tile under the dab fresh.
func (m *Manager) InvalidateStamp(stamp *Manager, x, y int) {
	st := stamp.TileAt(0, Read)
	if st == nil {
		return
	}
	m.Invalidate(x+st.Width()/2, y+st.Height()/2)
}

// invalidateLocked marks the tile at idx invalid.
// Caller must hold m.mu.
func (m *Manager) invalidateLocked(idx int) {
	m.allocate()
	t := m.tiles[idx]
	if t.Shared() {
		t = m.cloneLocked(idx)
	}
	t.SetValid(false)
}

// DirtyTiles returns the indices of all dirty tiles in ascending order.
func (m *Manager) DirtyTiles() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []int
	for i, t := range m.tiles {
		if t.Dirty() {
			result = append(result, i)
		}
	}
	return result
}

// ClearDirty resets the dirty flag on every tile.
func (m *Manager) ClearDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tiles {
		t.SetDirty(false)
	}
}

// MemSize returns the number of bytes held by allocated tile buffers.
// Shared tiles are counted by every owner.
func (m *Manager) MemSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tiles {
		if t.Allocated() {
			n += t.Size() * 2
		}
	}
	return n
}

// Release detaches every tile from the mediator and drops the grid. The
// manager reads as empty afterwards until the grid is rebuilt. It returns
// the number of tiles that still had views (iterators or pixel data)
// checked out; those views keep working on tiles no longer in the plane.
func (m *Manager) Release() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	open := 0
	for _, t := range m.tiles {
		if t.Refs() > 0 {
			open++
		}
		m.md.Detach(t, m.id)
	}
	if open > 0 {
		m.log.Warn("tile: manager released with open views", "manager", m.id, "tiles", open)
	}
	m.tiles = nil
	return open
}
