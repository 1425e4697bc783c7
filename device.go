// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package paintcore

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/gogpu/paintcore/colorspace"
	"github.com/gogpu/paintcore/command"
	"github.com/gogpu/paintcore/composite"
	"github.com/gogpu/paintcore/iter"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

var (
	// ErrColorSpace is returned when two devices of different colour
	// models are combined.
	ErrColorSpace = errors.New("paintcore: colour space mismatch")

	// ErrOutOfBounds is returned for positions outside the device.
	ErrOutOfBounds = errors.New("paintcore: position outside the device")
)

// Device is a named raster plane in one colour model.
type Device struct {
	name     string
	strategy colorspace.Strategy
	mgr      *tile.Manager
	log      *slog.Logger
	progress ProgressFunc
}

// NewDevice creates a width × height device. No tile memory is used until
// the device is painted. Panics if s is nil.
func NewDevice(name string, width, height int, s colorspace.Strategy, opts ...Option) *Device {
	if s == nil {
		panic("paintcore: nil colour space")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	topts := []tile.Option{tile.WithLogger(o.logger)}
	if o.mediator != nil {
		topts = append(topts, tile.WithMediator(o.mediator))
	}
	return &Device{
		name:     name,
		strategy: s,
		mgr:      tile.NewManager(width, height, s.Depth(), topts...),
		log:      o.logger,
		progress: o.progress,
	}
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// SetName renames the device.
func (d *Device) SetName(name string) { d.name = name }

// Strategy returns the colour model.
func (d *Device) Strategy() colorspace.Strategy { return d.strategy }

// Manager returns the tile manager holding the pixels.
func (d *Device) Manager() *tile.Manager { return d.mgr }

// Width returns the device width in pixels.
func (d *Device) Width() int { return d.mgr.Width() }

// Height returns the device height in pixels.
func (d *Device) Height() int { return d.mgr.Height() }

// Bounds returns the device extent.
func (d *Device) Bounds() image.Rectangle { return d.mgr.Bounds() }

// Depth returns the number of channels per pixel.
func (d *Device) Depth() int { return d.strategy.Depth() }

// Duplicate returns a device sharing every tile with d.
func (d *Device) Duplicate(name string) *Device {
	return &Device{
		name:     name,
		strategy: d.strategy,
		mgr:      d.mgr.Duplicate(),
		log:      d.log,
		progress: d.progress,
	}
}

// Release drops every tile. The device is empty afterwards.
func (d *Device) Release() { d.mgr.Release() }

func (d *Device) native(c colorful.Color, opacity quantum.Quantum) []quantum.Quantum {
	px := make([]quantum.Quantum, d.Depth())
	d.strategy.NativeColor(c, opacity, px)
	return px
}

// Fill paints every pixel with c at opacity.
func (d *Device) Fill(c colorful.Color, opacity quantum.Quantum) {
	px := d.native(c, opacity)
	for i := range d.mgr.TileCount() {
		t := d.mgr.TileAt(i, tile.Write)
		data := t.Data(0, 0)[:t.Size()]
		for off := 0; off < len(data); off += len(px) {
			copy(data[off:], px)
		}
		t.ResetHints(0, t.Height()-1)
	}
}

// FillRect paints the pixels of r inside the device with c at opacity.
func (d *Device) FillRect(r image.Rectangle, c colorful.Color, opacity quantum.Quantum) {
	px := d.native(c, opacity)
	it := iter.Rect(d.mgr, r, iter.WithMode(tile.Write))
	for it.Next() {
		it.SetPixel(px)
	}
}

// RawPixel returns a copy of the quanta at (x, y).
func (d *Device) RawPixel(x, y int) ([]quantum.Quantum, error) {
	t := d.mgr.Tile(x, y, tile.Read)
	if t == nil {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	px := make([]quantum.Quantum, d.Depth())
	if t.Allocated() {
		copy(px, t.Pixel(x%tile.Width, y%tile.Height))
	}
	return px, nil
}

// SetRawPixel stores px at (x, y).
func (d *Device) SetRawPixel(x, y int, px []quantum.Quantum) error {
	t := d.mgr.Tile(x, y, tile.Write)
	if t == nil {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	copy(t.Pixel(x%tile.Width, y%tile.Height), px)
	t.ResetHints(y%tile.Height, y%tile.Height)
	return nil
}

// Pixel returns the colour and opacity at (x, y).
func (d *Device) Pixel(x, y int) (colorful.Color, quantum.Quantum, error) {
	px, err := d.RawPixel(x, y)
	if err != nil {
		return colorful.Color{}, 0, err
	}
	c, opacity := d.strategy.ToColor(px)
	return c, opacity, nil
}

// SetPixel stores c at opacity at (x, y).
func (d *Device) SetPixel(x, y int, c colorful.Color, opacity quantum.Quantum) error {
	return d.SetRawPixel(x, y, d.native(c, opacity))
}

// BitBlt composites rectangle sr of src onto d with its top-left corner at
// (dx, dy). Work is done one destination tile at a time through
// pixel-data regions, so tile-aligned spans composite in place. src may be
// d itself.
func (d *Device) BitBlt(dx, dy int, src *Device, sr image.Rectangle, opacity quantum.Quantum, op composite.Op) error {
	if src.strategy.Kind() != d.strategy.Kind() {
		return fmt.Errorf("%w: %s onto %s", ErrColorSpace, src.strategy.Name(), d.strategy.Name())
	}
	sr = sr.Intersect(src.Bounds())
	offset := image.Pt(dx, dy).Sub(sr.Min)
	dr := sr.Add(offset).Intersect(d.Bounds())
	if dr.Empty() {
		return nil
	}

	smgr := src.mgr
	if src == d {
		smgr = d.mgr.Duplicate()
		defer smgr.Release()
	}

	for ty := dr.Min.Y / tile.Height; ty <= (dr.Max.Y-1)/tile.Height; ty++ {
		for tx := dr.Min.X / tile.Width; tx <= (dr.Max.X-1)/tile.Width; tx++ {
			span := d.mgr.TileRect(ty*d.mgr.TilesX() + tx).Intersect(dr)
			if err := d.bltSpan(span, smgr, span.Sub(offset), opacity, op); err != nil {
				return err
			}
		}
	}
	d.log.Debug("paintcore: bitblt", "device", d.name, "rect", dr, "op", op)
	return nil
}

func (d *Device) bltSpan(dr image.Rectangle, smgr *tile.Manager, sr image.Rectangle, opacity quantum.Quantum, op composite.Op) error {
	dpd := d.mgr.PixelData(dr.Min.X, dr.Min.Y, dr.Max.X-1, dr.Max.Y-1, tile.RW)
	spd := smgr.PixelData(sr.Min.X, sr.Min.Y, sr.Max.X-1, sr.Max.Y-1, tile.Read)
	d.strategy.Blt(dpd.Data, dpd.Stride, spd.Data, spd.Stride, dr.Dy(), dr.Dx(), opacity, op)
	if err := smgr.ReleasePixelData(spd); err != nil {
		return fmt.Errorf("paintcore: release source %v: %w", sr, err)
	}
	if err := d.mgr.ReleasePixelData(dpd); err != nil {
		return fmt.Errorf("paintcore: release destination %v: %w", dr, err)
	}
	return nil
}

// ConvertToImage renders r for display.
func (d *Device) ConvertToImage(r image.Rectangle) *image.NRGBA {
	return d.strategy.ConvertToImage(d.mgr, r)
}

// Thumbnail renders the device scaled to fit within width × height,
// keeping its aspect ratio.
func (d *Device) Thumbnail(width, height int) *image.NRGBA {
	if d.Width() == 0 || width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	w, h := width, d.Height()*width/d.Width()
	if h > height {
		w, h = d.Width()*height/d.Height(), height
	}
	w, h = max(w, 1), max(h, 1)

	src := d.ConvertToImage(d.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// BeginTransaction starts recording writes for undo. The caller finishes
// the command when the edit is complete and hands it to its undo stack.
func (d *Device) BeginTransaction(name string) *command.TileCommand {
	return command.NewTileCommand(name, d.mgr)
}
