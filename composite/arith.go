// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package composite

import (
	"github.com/gogpu/paintcore/quantum"
)

// separable blends each colour channel towards B(S, D) by the scaled
// source alpha. The destination alpha is kept.
func separable(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum, blend func(s, d quantum.Quantum) quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		if sa == quantum.OpacityTransparent {
			return
		}
		for c := range a {
			d[c] = quantum.Lerp(d[c], blend(s[c], d[c]), sa)
		}
	})
}

// CompositeAdd adds source to destination, saturating at Max.
func CompositeAdd(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, quantum.AddSat)
}

// CompositeSubtract subtracts source from destination, saturating at zero.
func CompositeSubtract(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, func(s, d quantum.Quantum) quantum.Quantum {
		return quantum.SubSat(d, s)
	})
}

// CompositeDiff replaces the colour by |S - D|.
func CompositeDiff(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, func(s, d quantum.Quantum) quantum.Quantum {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// CompositeMult multiplies source and destination.
func CompositeMult(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, quantum.Mul)
}

// CompositeDarken keeps the darker of source and destination.
func CompositeDarken(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, quantum.Min)
}

// CompositeLighten keeps the lighter of source and destination.
func CompositeLighten(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, quantum.Max2)
}

// CompositeScreen computes S + D - S·D.
func CompositeScreen(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	separable(depth, dst, dstStride, src, srcStride, rows, cols, opacity, func(s, d quantum.Quantum) quantum.Quantum {
		return s + d - quantum.Mul(s, d)
	})
}

// Intensity reduces the colour channels of a pixel to one value.
type Intensity func(colour []quantum.Quantum) quantum.Quantum

// MeanIntensity averages the colour channels.
func MeanIntensity(colour []quantum.Quantum) quantum.Quantum {
	if len(colour) == 0 {
		return quantum.Max
	}
	var sum uint32
	for _, c := range colour {
		sum += uint32(c)
	}
	n := uint32(len(colour))
	return quantum.Quantum((sum + n/2) / n)
}

// CompositeBumpmap shades the destination by the intensity of the source
// computed with MeanIntensity.
func CompositeBumpmap(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	BumpmapWith(MeanIntensity)(depth, dst, dstStride, src, srcStride, rows, cols, opacity)
}

// BumpmapWith returns a bumpmap operator that shades the destination by
// the source intensity computed with fn. Colour spaces pass their own
// luma weighting.
func BumpmapWith(fn Intensity) Func {
	return func(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
		if opacity == quantum.OpacityTransparent {
			return
		}
		a := depth - 1
		forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
			sa := quantum.Mul(s[a], opacity)
			if sa == quantum.OpacityTransparent {
				return
			}
			in := fn(s[:a])
			for c := range a {
				d[c] = quantum.Lerp(d[c], quantum.Mul(in, d[c]), sa)
			}
		})
	}
}
