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

// PixelMask is the only channel of an alpha mask.
const PixelMask = 0

// maskOps are the operators that make sense on a lone alpha channel.
var maskOps = []composite.Op{
	composite.Over, composite.Normal, composite.In, composite.Out,
	composite.Xor, composite.Plus, composite.Copy, composite.CopyOpacity,
	composite.Clear, composite.Erase, composite.No,
}

// AlphaMask is a single-channel selection or transparency mask. The mask
// value is the alpha; colours are ignored.
type AlphaMask struct {
	base
}

// NewAlphaMask creates the AlphaMask strategy.
func NewAlphaMask() *AlphaMask {
	return &AlphaMask{base{
		kind:     KindAlphaMask,
		channels: []Channel{{"Mask", PixelMask, ChannelAlpha}},
		alphaPos: PixelMask,
		ops:      maskOps,
	}}
}

func (s *AlphaMask) NativeColor(_ colorful.Color, opacity quantum.Quantum, dst []quantum.Quantum) {
	dst[PixelMask] = opacity
}

// ToColor returns white with the mask as opacity.
func (s *AlphaMask) ToColor(src []quantum.Quantum) (colorful.Color, quantum.Quantum) {
	return colorful.Color{R: 1, G: 1, B: 1}, src[PixelMask]
}

// ToNRGBA shows the mask as opaque gray levels.
func (s *AlphaMask) ToNRGBA(src []quantum.Quantum) color.NRGBA {
	v := quantum.Downscale(src[PixelMask])
	return color.NRGBA{R: v, G: v, B: v, A: 0xff}
}

func (s *AlphaMask) Blt(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, op composite.Op) {
	if !slices.Contains(s.ops, op) {
		return
	}
	if fn, ok := composite.Lookup(op); ok {
		fn(1, dst, dstStride, src, srcStride, rows, cols, opacity)
	}
}

func (s *AlphaMask) DuplicatePixel(dst, dab, src []quantum.Quantum) {
	dst[PixelMask] = quantum.Mul(dab[PixelMask], src[PixelMask])
}

func (s *AlphaMask) ConvertToImage(mgr *tile.Manager, r image.Rectangle) *image.NRGBA {
	return convertToImage(mgr, r, noHints, s.ToNRGBA)
}
