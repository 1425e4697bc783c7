// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package colorspace

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/paintcore/composite"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// GrayA channel positions.
const (
	PixelGray = iota
	PixelGrayAlpha
)

// GrayA is the grayscale model with alpha.
type GrayA struct {
	base
}

// NewGrayA creates the GrayA strategy.
func NewGrayA() *GrayA {
	return &GrayA{base{
		kind: KindGrayA,
		channels: []Channel{
			{"Gray", PixelGray, ChannelColor},
			{"Alpha", PixelGrayAlpha, ChannelAlpha},
		},
		alphaPos: PixelGrayAlpha,
		ops:      genericOps,
	}}
}

// NativeColor stores the Rec. 601 luma of c.
func (s *GrayA) NativeColor(c colorful.Color, opacity quantum.Quantum, dst []quantum.Quantum) {
	c = c.Clamped()
	dst[PixelGray] = luma(quantum.FromFloat(c.R), quantum.FromFloat(c.G), quantum.FromFloat(c.B))
	dst[PixelGrayAlpha] = opacity
}

func (s *GrayA) ToColor(src []quantum.Quantum) (colorful.Color, quantum.Quantum) {
	v := quantum.ToFloat(src[PixelGray])
	return colorful.Color{R: v, G: v, B: v}, src[PixelGrayAlpha]
}

func (s *GrayA) ToNRGBA(src []quantum.Quantum) color.NRGBA {
	v := quantum.Downscale(src[PixelGray])
	return color.NRGBA{R: v, G: v, B: v, A: quantum.Downscale(src[PixelGrayAlpha])}
}

func (s *GrayA) Blt(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, op composite.Op) {
	if op == composite.Over || op == composite.Normal {
		grayOver(dst, dstStride, src, srcStride, rows, cols, opacity)
		return
	}
	if fn, ok := composite.Lookup(op); ok {
		fn(2, dst, dstStride, src, srcStride, rows, cols, opacity)
	}
}

// grayOver blends with the source weight normalised by the resulting
// alpha, so a partly transparent destination takes on more of the source.
func grayOver(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	for r := range rows {
		drow := dst[r*dstStride:]
		srow := src[r*srcStride:]
		for x := range cols {
			d := drow[x*2 : x*2+2]
			s := srow[x*2 : x*2+2]
			sa := quantum.Mul(s[PixelGrayAlpha], opacity)
			if sa == quantum.OpacityTransparent {
				continue
			}
			da := d[PixelGrayAlpha]
			na := da + quantum.Mul(quantum.Inv(da), sa)
			blend := quantum.Div(sa, na)
			d[PixelGray] = quantum.Lerp(d[PixelGray], s[PixelGray], blend)
			d[PixelGrayAlpha] = na
		}
	}
}

// DuplicatePixel scales the source gray by the inverted dab gray.
func (s *GrayA) DuplicatePixel(dst, dab, src []quantum.Quantum) {
	dst[PixelGray] = quantum.Mul(quantum.Inv(dab[PixelGray]), src[PixelGray])
	dst[PixelGrayAlpha] = quantum.Mul(dab[PixelGrayAlpha], src[PixelGrayAlpha])
}

func (s *GrayA) ConvertToImage(mgr *tile.Manager, r image.Rectangle) *image.NRGBA {
	return convertToImage(mgr, r, rowHints{alpha: PixelGrayAlpha}, s.ToNRGBA)
}
