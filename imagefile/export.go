// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagefile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/internal/parallel"
	"github.com/gogpu/paintcore/iter"
	"github.com/gogpu/paintcore/quantum"
)

// ToNRGBA64 renders the whole device at 16 bits per channel through its
// colour model. Tiles are converted in parallel.
func ToNRGBA64(d *paintcore.Device) *image.NRGBA64 {
	img := image.NewNRGBA64(d.Bounds())
	s := d.Strategy()
	mgr := d.Manager()
	parallel.ForEach(mgr.TileCount(), func(i int) {
		it := iter.Rect(mgr, mgr.TileRect(i))
		for it.Next() {
			c, opacity := s.ToColor(it.Pixel())
			c = c.Clamped()
			img.SetNRGBA64(it.X(), it.Y(), color.NRGBA64{
				R: uint16(quantum.FromFloat(c.R)),
				G: uint16(quantum.FromFloat(c.G)),
				B: uint16(quantum.FromFloat(c.B)),
				A: uint16(opacity),
			})
		}
	})
	return img
}

// ExportPNG writes d to w as a 16-bit PNG.
func ExportPNG(w io.Writer, d *paintcore.Device) error {
	if d.Bounds().Empty() {
		return ErrEmpty
	}
	if err := png.Encode(w, ToNRGBA64(d)); err != nil {
		return fmt.Errorf("imagefile: encode PNG: %w", err)
	}
	return nil
}

// ExportTIFF writes d to w as a deflate-compressed 16-bit TIFF.
func ExportTIFF(w io.Writer, d *paintcore.Device) error {
	if d.Bounds().Empty() {
		return ErrEmpty
	}
	opts := &tiff.Options{Compression: tiff.Deflate}
	if err := tiff.Encode(w, ToNRGBA64(d), opts); err != nil {
		return fmt.Errorf("imagefile: encode TIFF: %w", err)
	}
	return nil
}

// ExportFile writes d to path in the format named by its extension
// (.png, .tif or .tiff).
func ExportFile(path string, d *paintcore.Device) error {
	var encode func(io.Writer, *paintcore.Device) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = ExportPNG
	case ".tif", ".tiff":
		encode = ExportTIFF
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imagefile: create file: %w", err)
	}
	if err := encode(f, d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
