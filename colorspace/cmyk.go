// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package colorspace

import (
	"image"
	"image/color"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/paintcore/composite"
	"github.com/gogpu/paintcore/internal/cache"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// CMYKA channel positions.
const (
	PixelCyan = iota
	PixelMagenta
	PixelYellow
	PixelBlack
	PixelCMYKAlpha
)

// lutSize bounds the CMYK to display colour cache.
const lutSize = 1 << 14

// CMYKA is the cyan, magenta, yellow, black ink model.
//
// The model keeps the inverted alpha convention of ink: the stored alpha
// is the ink transparency, so OpacityTransparent (0) is fully opaque ink
// and OpacityOpaque is no ink at all. Blt interprets its opacity argument
// the same way: OpacityOpaque leaves the destination untouched.
//
// Over accumulates ink, d = 1 - (1-d)(1-s·coverage). The other operators
// run on scratch rows with the alpha flipped to the usual convention.
type CMYKA struct {
	base
	lut *cache.Cache[[5]quantum.Quantum, color.NRGBA]
}

// NewCMYKA creates the CMYKA strategy.
func NewCMYKA() *CMYKA {
	return &CMYKA{
		base: base{
			kind: KindCMYKA,
			channels: []Channel{
				{"Cyan", PixelCyan, ChannelColor},
				{"Magenta", PixelMagenta, ChannelColor},
				{"Yellow", PixelYellow, ChannelColor},
				{"Black", PixelBlack, ChannelColor},
				{"Alpha", PixelCMYKAlpha, ChannelAlpha},
			},
			alphaPos: PixelCMYKAlpha,
			ops: slices.Concat(genericOps, []composite.Op{
				composite.CopyCyan, composite.CopyMagenta, composite.CopyYellow, composite.CopyBlack,
			}),
		},
		lut: cache.New[[5]quantum.Quantum, color.NRGBA](lutSize),
	}
}

// NativeColor converts with naive undercolour removal: K is the smallest
// of the complements, C, M and Y carry the rest.
func (s *CMYKA) NativeColor(c colorful.Color, opacity quantum.Quantum, dst []quantum.Quantum) {
	c = c.Clamped()
	cy := quantum.Inv(quantum.FromFloat(c.R))
	mg := quantum.Inv(quantum.FromFloat(c.G))
	ye := quantum.Inv(quantum.FromFloat(c.B))
	k := min(cy, mg, ye)
	dst[PixelCyan] = cy - k
	dst[PixelMagenta] = mg - k
	dst[PixelYellow] = ye - k
	dst[PixelBlack] = k
	dst[PixelCMYKAlpha] = quantum.Inv(opacity)
}

func (s *CMYKA) ToColor(src []quantum.Quantum) (colorful.Color, quantum.Quantum) {
	r, g, b := cmykToRGB(src)
	return colorful.Color{
		R: quantum.ToFloat(r),
		G: quantum.ToFloat(g),
		B: quantum.ToFloat(b),
	}, quantum.Inv(src[PixelCMYKAlpha])
}

// ToNRGBA converts through a lookup table keyed on the exact pixel.
func (s *CMYKA) ToNRGBA(src []quantum.Quantum) color.NRGBA {
	key := [5]quantum.Quantum(src[:5])
	return s.lut.GetOrCreate(key, func() color.NRGBA {
		r, g, b := cmykToRGB(src)
		return color.NRGBA{
			R: quantum.Downscale(r),
			G: quantum.Downscale(g),
			B: quantum.Downscale(b),
			A: quantum.Downscale(quantum.Inv(src[PixelCMYKAlpha])),
		}
	})
}

// LUTStats returns the statistics of the display colour cache.
func (s *CMYKA) LUTStats() cache.Stats { return s.lut.Stats() }

func cmykToRGB(src []quantum.Quantum) (r, g, b quantum.Quantum) {
	k := src[PixelBlack]
	r = quantum.Inv(quantum.AddSat(src[PixelCyan], k))
	g = quantum.Inv(quantum.AddSat(src[PixelMagenta], k))
	b = quantum.Inv(quantum.AddSat(src[PixelYellow], k))
	return r, g, b
}

func (s *CMYKA) Blt(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, op composite.Op) {
	if opacity == quantum.OpacityOpaque {
		return
	}
	coverage := quantum.Inv(opacity)

	if op == composite.Over || op == composite.Normal {
		inkOver(dst, dstStride, src, srcStride, rows, cols, coverage)
		return
	}

	fn := s.resolve(op)
	if fn == nil {
		return
	}
	const depth = 5
	n := cols * depth
	sd := make([]quantum.Quantum, rows*n)
	ss := make([]quantum.Quantum, rows*n)
	for r := range rows {
		copy(sd[r*n:][:n], dst[r*dstStride:][:n])
		copy(ss[r*n:][:n], src[r*srcStride:][:n])
	}
	flipAlpha(sd, depth)
	flipAlpha(ss, depth)
	fn(depth, sd, n, ss, n, rows, cols, coverage)
	flipAlpha(sd, depth)
	for r := range rows {
		copy(dst[r*dstStride:][:n], sd[r*n:][:n])
	}
}

func (s *CMYKA) resolve(op composite.Op) composite.Func {
	switch op {
	case composite.CopyCyan:
		return composite.CopyChannel(PixelCyan)
	case composite.CopyMagenta:
		return composite.CopyChannel(PixelMagenta)
	case composite.CopyYellow:
		return composite.CopyChannel(PixelYellow)
	case composite.CopyBlack:
		return composite.CopyChannel(PixelBlack)
	}
	fn, _ := composite.Lookup(op)
	return fn
}

// inkOver layers source ink on destination ink. coverage scales the
// source coverage; both alphas are stored inverted.
func inkOver(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, coverage quantum.Quantum) {
	for r := range rows {
		drow := dst[r*dstStride:]
		srow := src[r*srcStride:]
		for x := range cols {
			d := drow[x*5 : x*5+5]
			s := srow[x*5 : x*5+5]
			sa := quantum.Mul(quantum.Inv(s[PixelCMYKAlpha]), coverage)
			if sa == quantum.OpacityTransparent {
				continue
			}
			for c := range PixelCMYKAlpha {
				ink := quantum.Mul(s[c], sa)
				d[c] = quantum.Inv(quantum.Mul(quantum.Inv(d[c]), quantum.Inv(ink)))
			}
			da := quantum.Inv(d[PixelCMYKAlpha])
			d[PixelCMYKAlpha] = quantum.Inv(da + sa - quantum.Mul(da, sa))
		}
	}
}

// flipAlpha inverts the last channel of every pixel in buf.
func flipAlpha(buf []quantum.Quantum, depth int) {
	for i := depth - 1; i < len(buf); i += depth {
		buf[i] = quantum.Inv(buf[i])
	}
}

// DuplicatePixel scales the source ink by the dab coverage and combines
// the transparencies.
func (s *CMYKA) DuplicatePixel(dst, dab, src []quantum.Quantum) {
	cov := quantum.Inv(dab[PixelCMYKAlpha])
	for c := range PixelCMYKAlpha {
		dst[c] = quantum.Mul(src[c], cov)
	}
	a := quantum.Mul(cov, quantum.Inv(src[PixelCMYKAlpha]))
	dst[PixelCMYKAlpha] = quantum.Inv(a)
}

func (s *CMYKA) ConvertToImage(mgr *tile.Manager, r image.Rectangle) *image.NRGBA {
	return convertToImage(mgr, r, rowHints{alpha: PixelCMYKAlpha, transparent: quantum.Max}, s.ToNRGBA)
}
