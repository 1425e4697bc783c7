// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagefile

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/colorspace"
	"github.com/gogpu/paintcore/quantum"
)

func pattern(x, y, c int) quantum.Quantum {
	return quantum.Quantum((x*131 + y*977 + c*31 + 1) & 0xFFFF)
}

func patterned(t *testing.T, w, h int) *paintcore.Device {
	t.Helper()
	d := paintcore.NewDevice("pattern", w, h, colorspace.NewRGBA())
	buf := make([]quantum.Quantum, w*h*4)
	for y := range h {
		for x := range w {
			for c := range 4 {
				buf[(y*w+x)*4+c] = pattern(x, y, c)
			}
		}
	}
	if err := d.Manager().WritePixelData(0, 0, w-1, h-1, buf, w*4); err != nil {
		t.Fatal(err)
	}
	return d
}

func sameQuanta(t *testing.T, got, want *paintcore.Device) {
	t.Helper()
	if got.Bounds() != want.Bounds() {
		t.Fatalf("bounds %v, want %v", got.Bounds(), want.Bounds())
	}
	for y := range want.Height() {
		for x := range want.Width() {
			g, _ := got.RawPixel(x, y)
			w, _ := want.RawPixel(x, y)
			if !slices.Equal(g, w) {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, g, w)
			}
		}
	}
}

func importOne(t *testing.T, data []byte, kind colorspace.Kind, opts ...Option) *paintcore.Device {
	t.Helper()
	devs, err := Import(bytes.NewReader(data), colorspace.NewRegistry(), kind, opts...)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("Import returned %d devices, want 1", len(devs))
	}
	return devs[0]
}

// =============================================================================
// Round trips
// =============================================================================

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		export func(*bytes.Buffer, *paintcore.Device) error
	}{
		{"png", func(b *bytes.Buffer, d *paintcore.Device) error { return ExportPNG(b, d) }},
		{"tiff", func(b *bytes.Buffer, d *paintcore.Device) error { return ExportTIFF(b, d) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := patterned(t, 70, 66)
			var buf bytes.Buffer
			if err := tt.export(&buf, want); err != nil {
				t.Fatalf("export: %v", err)
			}
			got := importOne(t, buf.Bytes(), colorspace.KindRGBA, WithName("layer"))
			if got.Name() != "layer" {
				t.Errorf("Name = %q", got.Name())
			}
			sameQuanta(t, got, want)
		})
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	d := patterned(t, 20, 10)
	for _, name := range []string{"out.png", "out.TIFF"} {
		path := filepath.Join(dir, name)
		if err := ExportFile(path, d); err != nil {
			t.Fatalf("ExportFile(%s): %v", name, err)
		}
		devs, err := ImportFile(path, colorspace.NewRegistry(), colorspace.KindRGBA)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", name, err)
		}
		if devs[0].Name() != name {
			t.Errorf("Name = %q, want %q", devs[0].Name(), name)
		}
		sameQuanta(t, devs[0], d)
	}

	if err := ExportFile(filepath.Join(dir, "out.bmp"), d); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ExportFile(.bmp) = %v, want ErrUnsupported", err)
	}
}

// =============================================================================
// Decoders
// =============================================================================

func TestImport_BMP(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	src.SetNRGBA(2, 1, color.NRGBA{R: 0x10, G: 0x80, B: 0xf0, A: 0xff})
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	d := importOne(t, buf.Bytes(), colorspace.KindRGBA)
	px, _ := d.RawPixel(2, 1)
	want := []quantum.Quantum{0x1010, 0x8080, 0xf0f0, quantum.Max}
	if !slices.Equal(px, want) {
		t.Errorf("pixel = %v, want %v", px, want)
	}
}

func TestImport_JPEGToGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	d := importOne(t, buf.Bytes(), colorspace.KindGrayA)
	px, _ := d.RawPixel(8, 8)
	if v := quantum.Downscale(px[colorspace.PixelGray]); v < 0x7e || v > 0x82 {
		t.Errorf("gray = %#x, want about 0x80", v)
	}
	if px[colorspace.PixelGrayAlpha] != quantum.OpacityOpaque {
		t.Errorf("alpha = %d, want opaque", px[colorspace.PixelGrayAlpha])
	}
}

func TestImport_AnimatedGIF(t *testing.T) {
	pal := color.Palette{
		color.RGBA{A: 0xff},
		color.RGBA{R: 0xff, A: 0xff},
		color.RGBA{B: 0xff, A: 0xff},
		color.RGBA{G: 0xff, A: 0xff},
	}
	first := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for i := range first.Pix {
		first.Pix[i] = 1
	}
	second := image.NewPaletted(image.Rect(2, 2, 4, 4), pal)
	for i := range second.Pix {
		second.Pix[i] = 2
	}
	g := &gif.GIF{
		Image:    []*image.Paletted{first, second},
		Delay:    []int{10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 4, Height: 4},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}

	devs, err := Import(&buf, colorspace.NewRegistry(), colorspace.KindRGBA, WithName("anim"))
	if err != nil {
		t.Fatal(err)
	}
	if len(devs) != 2 {
		t.Fatalf("got %d frames, want 2", len(devs))
	}
	if devs[0].Name() != "anim/0" || devs[1].Name() != "anim/1" {
		t.Errorf("names %q, %q", devs[0].Name(), devs[1].Name())
	}

	tests := []struct {
		frame, x, y int
		red, blue   bool
	}{
		{frame: 0, x: 3, y: 3, red: true},
		{frame: 1, x: 0, y: 0, red: true},
		{frame: 1, x: 3, y: 3, blue: true},
	}
	for _, tt := range tests {
		px, _ := devs[tt.frame].RawPixel(tt.x, tt.y)
		if gotRed := px[colorspace.PixelRed] == quantum.Max; gotRed != tt.red {
			t.Errorf("frame %d (%d,%d) = %v, red %v", tt.frame, tt.x, tt.y, px, tt.red)
		}
		if gotBlue := px[colorspace.PixelBlue] == quantum.Max; gotBlue != tt.blue {
			t.Errorf("frame %d (%d,%d) = %v, blue %v", tt.frame, tt.x, tt.y, px, tt.blue)
		}
	}
}

func TestImport_CMYKPaper(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	src.SetNRGBA(1, 0, color.NRGBA{A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	d := importOne(t, buf.Bytes(), colorspace.KindCMYKA)

	white, _ := d.RawPixel(0, 0)
	if !slices.Equal(white, []quantum.Quantum{0, 0, 0, 0, 0}) {
		t.Errorf("white = %v, want no ink", white)
	}
	black, _ := d.RawPixel(1, 0)
	if black[colorspace.PixelBlack] != quantum.Max {
		t.Errorf("black = %v, want full key ink", black)
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestImport_Errors(t *testing.T) {
	var good bytes.Buffer
	if err := png.Encode(&good, image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		kind colorspace.Kind
		want error
	}{
		{"empty", nil, colorspace.KindRGBA, ErrEmpty},
		{"unknown format", []byte("definitely not an image"), colorspace.KindRGBA, ErrUnsupported},
		{"truncated png", good.Bytes()[:40], colorspace.KindRGBA, ErrDecode},
		{"truncated gif", []byte("GIF89a\x01"), colorspace.KindRGBA, ErrDecode},
		{"unknown model", good.Bytes(), colorspace.KindUnknown, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(bytes.NewReader(tt.data), colorspace.NewRegistry(), tt.kind)
			if !errors.Is(err, tt.want) {
				t.Errorf("Import = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImportFile_NotFound(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "missing.png"), colorspace.NewRegistry(), colorspace.KindRGBA)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ImportFile = %v, want ErrNotFound", err)
	}
}

func TestExport_Empty(t *testing.T) {
	d := paintcore.NewDevice("empty", 0, 0, colorspace.NewRGBA())
	var buf bytes.Buffer
	if err := ExportPNG(&buf, d); !errors.Is(err, ErrEmpty) {
		t.Errorf("ExportPNG = %v, want ErrEmpty", err)
	}
	if err := ExportTIFF(&buf, d); !errors.Is(err, ErrEmpty) {
		t.Errorf("ExportTIFF = %v, want ErrEmpty", err)
	}
}
