// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package composite implements the compositing operators that blend one
// quantum buffer into another.
//
// Every operator shares one calling convention (see Func). Pixels are
// stored with straight (not premultiplied) colour and alpha in the last
// channel. An opacity of quantum.OpacityTransparent leaves the
// destination untouched for every operator.
//
// The arithmetic operators follow the GraphicsMagick composite formulas;
// the Porter-Duff operators follow the 1984 paper.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package composite

import (
	"golang.org/x/text/cases"
)

// Op names a compositing operator.
type Op uint8

const (
	Undefined Op = iota
	Over         // Porter-Duff source over destination
	Normal       // alias of Over kept for layer modes
	In
	Out
	Atop
	Xor
	Plus
	Minus
	Add
	Subtract
	Diff
	Mult
	Bumpmap
	Copy
	CopyRed
	CopyGreen
	CopyBlue
	CopyCyan
	CopyMagenta
	CopyYellow
	CopyBlack
	CopyOpacity
	Clear
	Erase
	Darken
	Lighten
	Screen
	No // leaves the destination alone

	opCount
)

var opNames = [opCount]string{
	Undefined:   "undefined",
	Over:        "over",
	Normal:      "normal",
	In:          "in",
	Out:         "out",
	Atop:        "atop",
	Xor:         "xor",
	Plus:        "plus",
	Minus:       "minus",
	Add:         "add",
	Subtract:    "subtract",
	Diff:        "diff",
	Mult:        "mult",
	Bumpmap:     "bumpmap",
	Copy:        "copy",
	CopyRed:     "copy-red",
	CopyGreen:   "copy-green",
	CopyBlue:    "copy-blue",
	CopyCyan:    "copy-cyan",
	CopyMagenta: "copy-magenta",
	CopyYellow:  "copy-yellow",
	CopyBlack:   "copy-black",
	CopyOpacity: "copy-opacity",
	Clear:       "clear",
	Erase:       "erase",
	Darken:      "darken",
	Lighten:     "lighten",
	Screen:      "screen",
	No:          "no",
}

// String returns the lower-case operator name.
func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "unknown"
}

// Ops returns every defined operator except Undefined, in declaration
// order.
func Ops() []Op {
	ops := make([]Op, 0, opCount-1)
	for op := Over; op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOp returns the operator with the given name. Matching ignores case.
func ParseOp(name string) (Op, bool) {
	folded := cases.Fold().String(name)
	for op := Over; op < opCount; op++ {
		if opNames[op] == folded {
			return op, true
		}
	}
	return Undefined, false
}

// Lookup returns the colour-model independent implementation of op.
// The channel copies CopyRed through CopyBlack depend on the channel
// layout and are resolved by the colour space instead; Lookup reports
// false for them and for Undefined.
func Lookup(op Op) (Func, bool) {
	switch op {
	case Over, Normal:
		return CompositeOver, true
	case In:
		return CompositeIn, true
	case Out:
		return CompositeOut, true
	case Atop:
		return CompositeAtop, true
	case Xor:
		return CompositeXor, true
	case Plus:
		return CompositePlus, true
	case Minus:
		return CompositeMinus, true
	case Add:
		return CompositeAdd, true
	case Subtract:
		return CompositeSubtract, true
	case Diff:
		return CompositeDiff, true
	case Mult:
		return CompositeMult, true
	case Bumpmap:
		return CompositeBumpmap, true
	case Copy:
		return CompositeCopy, true
	case CopyOpacity:
		return CopyChannel(-1), true
	case Clear:
		return CompositeClear, true
	case Erase:
		return CompositeErase, true
	case Darken:
		return CompositeDarken, true
	case Lighten:
		return CompositeLighten, true
	case Screen:
		return CompositeScreen, true
	case No:
		return CompositeNo, true
	default:
		return nil, false
	}
}
