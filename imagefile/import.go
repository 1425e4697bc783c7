// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imagefile converts between raster files and paint devices.
//
// Import understands PNG, JPEG, GIF (every frame), BMP, TIFF and WebP.
// Export writes PNG and TIFF with 16 bits per channel, so an RGBA device
// survives a round trip bit for bit.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg" // register JPEG
	"io"
	"io/fs"
	"os"
	"path/filepath"

	colorful "github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/colorspace"
	"github.com/gogpu/paintcore/internal/parallel"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

var (
	// ErrNotFound is returned when the file to import does not exist.
	ErrNotFound = errors.New("imagefile: file not found")

	// ErrUnsupported is returned for unknown file formats and colour
	// models.
	ErrUnsupported = errors.New("imagefile: unsupported format")

	// ErrEmpty is returned for empty input and for devices without pixels.
	ErrEmpty = errors.New("imagefile: empty image")

	// ErrDecode is returned when a recognised file fails to decode.
	ErrDecode = errors.New("imagefile: decode failed")
)

// Option configures Import.
type Option func(*options)

type options struct {
	name    string
	devOpts []paintcore.Option
}

// WithName sets the device name. Frames of an animation are named
// name/0, name/1 and so on. The default is "image".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDeviceOptions passes opts to every device created.
func WithDeviceOptions(opts ...paintcore.Option) Option {
	return func(o *options) {
		o.devOpts = append(o.devOpts, opts...)
	}
}

// Import decodes r into devices of colour model kind from reg. Still
// images give one device; an animated GIF gives one device per frame,
// each holding the composed animation state at that frame.
func Import(r io.Reader, reg *colorspace.Registry, kind colorspace.Kind, opts ...Option) ([]*paintcore.Device, error) {
	o := options{name: "image"}
	for _, opt := range opts {
		opt(&o)
	}
	s, ok := reg.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: colour model %v", ErrUnsupported, kind)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("imagefile: read: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	frames, err := decode(data)
	if err != nil {
		return nil, err
	}

	devices := make([]*paintcore.Device, 0, len(frames))
	for i, img := range frames {
		name := o.name
		if len(frames) > 1 {
			name = fmt.Sprintf("%s/%d", o.name, i)
		}
		d, err := FromImage(name, img, s, o.devOpts...)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	paintcore.Logger().Debug("imagefile: imported", "name", o.name, "frames", len(devices), "model", s.Name())
	return devices, nil
}

// ImportFile imports the file at path. Options default the device name to
// the file's base name.
func ImportFile(path string, reg *colorspace.Registry, kind colorspace.Kind, opts ...Option) ([]*paintcore.Device, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("imagefile: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	opts = append([]Option{WithName(filepath.Base(path))}, opts...)
	return Import(f, reg, kind, opts...)
}

func decode(data []byte) ([]image.Image, error) {
	if bytes.HasPrefix(data, []byte("GIF8")) {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gif: %w", ErrDecode, err)
		}
		return composeGIF(g), nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}
	return []image.Image{img}, nil
}

// composeGIF renders every frame onto the logical screen, applying each
// frame's disposal before the next one is drawn.
func composeGIF(g *gif.GIF) []image.Image {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, fr := range g.Image {
			screen = screen.Union(fr.Bounds())
		}
	}
	canvas := image.NewNRGBA(screen)
	out := make([]image.Image, 0, len(g.Image))
	for i, fr := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, fr.Bounds(), fr, fr.Bounds().Min, draw.Over)
		out = append(out, cloneNRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, fr.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return out
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	c := *img
	c.Pix = bytes.Clone(img.Pix)
	return &c
}

// FromImage creates a device of colour model s holding img. Every tile is
// filled through its own pixel-data region, in parallel.
func FromImage(name string, img image.Image, s colorspace.Strategy, opts ...paintcore.Option) (*paintcore.Device, error) {
	b := img.Bounds()
	d := paintcore.NewDevice(name, b.Dx(), b.Dy(), s, opts...)
	mgr := d.Manager()
	errs := make([]error, mgr.TileCount())
	parallel.ForEach(mgr.TileCount(), func(i int) {
		r := mgr.TileRect(i)
		pd := mgr.PixelData(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, tile.Write)
		for y := range pd.Height {
			for x := range pd.Width {
				px := img.At(b.Min.X+r.Min.X+x, b.Min.Y+r.Min.Y+y)
				c := color.NRGBA64Model.Convert(px).(color.NRGBA64)
				s.NativeColor(colorful.Color{
					R: float64(c.R) / 0xffff,
					G: float64(c.G) / 0xffff,
					B: float64(c.B) / 0xffff,
				}, quantum.Quantum(c.A), pd.Pixel(x, y))
			}
		}
		if err := mgr.ReleasePixelData(pd); err != nil {
			errs[i] = fmt.Errorf("imagefile: store tile %d: %w", i, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}
