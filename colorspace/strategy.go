// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package colorspace defines the channel layouts of paint devices and the
// single compositing entry point painters use to blend one device into
// another.
//
// A Strategy is a stateless policy object; one instance per Kind is shared
// by every device of that kind. Strategies are looked up through an
// explicitly constructed Registry.
//
// Device-independent colours are github.com/lucasb-eyer/go-colorful
// values with components in [0, 1].
package colorspace

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/paintcore/composite"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// Kind identifies a colour model.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRGBA
	KindCMYKA
	KindGrayA
	KindAlphaMask
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRGBA:
		return "RGBA"
	case KindCMYKA:
		return "CMYKA"
	case KindGrayA:
		return "GRAYA"
	case KindAlphaMask:
		return "ALPHA"
	default:
		return "Unknown"
	}
}

// ChannelType tells colour channels from alpha channels.
type ChannelType uint8

const (
	ChannelColor ChannelType = iota
	ChannelAlpha
)

// Channel describes one channel of a pixel.
type Channel struct {
	Name string
	Pos  int
	Type ChannelType
}

// Strategy is the behaviour shared by all colour models.
type Strategy interface {
	Kind() Kind
	Name() string

	// Depth returns the number of channels per pixel, alpha included.
	Depth() int
	HasAlpha() bool
	AlphaPos() int
	Channels() []Channel

	// CompositeOps returns the operators Blt implements for this model.
	CompositeOps() []composite.Op

	// NativeColor writes c with the given opacity into dst, which must
	// hold Depth quanta.
	NativeColor(c colorful.Color, opacity quantum.Quantum, dst []quantum.Quantum)

	// ToColor reads a pixel back into a device-independent colour and
	// its opacity.
	ToColor(src []quantum.Quantum) (colorful.Color, quantum.Quantum)

	// ToNRGBA converts a pixel for display.
	ToNRGBA(src []quantum.Quantum) color.NRGBA

	// Blt composites rows × cols pixels of src into dst with op.
	// Operators the model does not implement leave dst untouched.
	Blt(dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, op composite.Op)

	// DuplicatePixel combines a dab mask pixel with a source pixel into
	// dst, as the clone tool does.
	DuplicatePixel(dst, dab, src []quantum.Quantum)

	// ConvertToImage renders the part of mgr inside r for display.
	ConvertToImage(mgr *tile.Manager, r image.Rectangle) *image.NRGBA
}

// base carries the static metadata every strategy shares.
type base struct {
	kind     Kind
	channels []Channel
	alphaPos int
	ops      []composite.Op
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Name() string   { return b.kind.String() }
func (b *base) Depth() int     { return len(b.channels) }
func (b *base) HasAlpha() bool { return b.alphaPos >= 0 }
func (b *base) AlphaPos() int  { return b.alphaPos }

func (b *base) Channels() []Channel {
	return append([]Channel(nil), b.channels...)
}

func (b *base) CompositeOps() []composite.Op {
	return append([]composite.Op(nil), b.ops...)
}

// genericOps are the operators every model with a trailing alpha channel
// gets from the composite package.
var genericOps = []composite.Op{
	composite.Over, composite.Normal, composite.In, composite.Out,
	composite.Atop, composite.Xor, composite.Plus, composite.Minus,
	composite.Add, composite.Subtract, composite.Diff, composite.Mult,
	composite.Bumpmap, composite.Copy, composite.CopyOpacity,
	composite.Clear, composite.Erase, composite.Darken,
	composite.Lighten, composite.Screen, composite.No,
}

// rowHints says which stored alpha value a model treats as fully
// transparent. Models without a hintable alpha channel set alpha to -1.
type rowHints struct {
	alpha       int
	transparent quantum.Quantum
}

var noHints = rowHints{alpha: -1}

// convertToImage renders the tiles of mgr intersecting r with toNRGBA.
// Tiles whose cached hints are stale and that no iterator is writing get
// their row hints recomputed first.
func convertToImage(mgr *tile.Manager, r image.Rectangle, hints rowHints, toNRGBA func([]quantum.Quantum) color.NRGBA) *image.NRGBA {
	r = r.Intersect(mgr.Bounds())
	img := image.NewNRGBA(r)
	if r.Empty() {
		return img
	}
	tx0, ty0 := r.Min.X/tile.Width, r.Min.Y/tile.Height
	tx1, ty1 := (r.Max.X-1)/tile.Width, (r.Max.Y-1)/tile.Height
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			idx := ty*mgr.TilesX() + tx
			t := mgr.TileAt(idx, tile.Read)
			if hints.alpha >= 0 && t.Writers() == 0 && !t.Valid() {
				t.ComputeHints(hints.alpha, hints.transparent)
				t.SetValid(true)
			}
			t.ConvertToImage(img, mgr.TileRect(idx).Min, toNRGBA)
		}
	}
	return img
}

// luma returns the Rec. 601 luma of an RGB triple.
func luma(r, g, b quantum.Quantum) quantum.Quantum {
	return quantum.Quantum((uint32(r)*299 + uint32(g)*587 + uint32(b)*114 + 500) / 1000)
}
