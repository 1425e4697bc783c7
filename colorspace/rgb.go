// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package colorspace

import (
	"image"
	"image/color"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/paintcore/composite"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// RGBA channel positions.
const (
	PixelRed = iota
	PixelGreen
	PixelBlue
	PixelAlpha
)

// RGBA is the red, green, blue and alpha model.
type RGBA struct {
	base
}

// NewRGBA creates the RGBA strategy.
func NewRGBA() *RGBA {
	return &RGBA{base{
		kind: KindRGBA,
		channels: []Channel{
			{"Red", PixelRed, ChannelColor},
			{"Green", PixelGreen, ChannelColor},
			{"Blue", PixelBlue, ChannelColor},
			{"Alpha", PixelAlpha, ChannelAlpha},
		},
		alphaPos: PixelAlpha,
		ops:      slices.Concat(genericOps, []composite.Op{composite.CopyRed, composite.CopyGreen, composite.CopyBlue}),
	}}
}

func (s *RGBA) NativeColor(c colorful.Color, opacity quantum.Quantum, dst []quantum.Quantum) {
	c = c.Clamped()
	dst[PixelRed] = quantum.FromFloat(c.R)
	dst[PixelGreen] = quantum.FromFloat(c.G)
	dst[PixelBlue] = quantum.FromFloat(c.B)
	dst[PixelAlpha] = opacity
}

func (s *RGBA) ToColor(src []quantum.Quantum) (colorful.Color, quantum.Quantum) {
	return colorful.Color{
		R: quantum.ToFloat(src[PixelRed]),
		G: quantum.ToFloat(src[PixelGreen]),
		B: quantum.ToFloat(src[PixelBlue]),
	}, src[PixelAlpha]
}

func (s *RGBA) ToNRGBA(src []quantum.Quantum) color.NRGBA {
	return color.NRGBA{
		R: quantum.Downscale(src[PixelRed]),
		G: quantum.Downscale(src[PixelGreen]),
		B: quantum.Downscale(src[PixelBlue]),
		A: quantum.Downscale(src[PixelAlpha]),
	}
}

func (s *RGBA) Blt(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, op composite.Op) {
	if fn := s.resolve(op); fn != nil {
		fn(4, dst, dstStride, src, srcStride, rows, cols, opacity)
	}
}

func (s *RGBA) resolve(op composite.Op) composite.Func {
	switch op {
	case composite.CopyRed:
		return composite.CopyChannel(PixelRed)
	case composite.CopyGreen:
		return composite.CopyChannel(PixelGreen)
	case composite.CopyBlue:
		return composite.CopyChannel(PixelBlue)
	case composite.Bumpmap:
		return composite.BumpmapWith(rgbIntensity)
	}
	fn, _ := composite.Lookup(op)
	return fn
}

// rgbIntensity is the luma of an RGB colour triple.
func rgbIntensity(c []quantum.Quantum) quantum.Quantum {
	return luma(c[PixelRed], c[PixelGreen], c[PixelBlue])
}

// DuplicatePixel scales the source by the inverted dab colour; the alpha is
// the product of both alphas.
func (s *RGBA) DuplicatePixel(dst, dab, src []quantum.Quantum) {
	for c := range PixelAlpha {
		dst[c] = quantum.Mul(quantum.Inv(dab[c]), src[c])
	}
	dst[PixelAlpha] = quantum.Mul(dab[PixelAlpha], src[PixelAlpha])
}

func (s *RGBA) ConvertToImage(mgr *tile.Manager, r image.Rectangle) *image.NRGBA {
	return convertToImage(mgr, r, rowHints{alpha: PixelAlpha}, s.ToNRGBA)
}
