// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package composite

import (
	"github.com/gogpu/paintcore/quantum"
)

// Func composites rows × cols pixels of src into dst.
//
// depth is the number of channels per pixel, alpha being the last one.
// dstStride and srcStride are the distances between row starts, in quanta.
// opacity scales the source alpha; OpacityTransparent makes the call a
// no-op.
type Func func(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum)

// forEach calls fn for every destination/source pixel pair.
func forEach(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, fn func(d, s []quantum.Quantum)) {
	for r := range rows {
		drow := dst[r*dstStride:]
		srow := src[r*srcStride:]
		for c := range cols {
			o := c * depth
			fn(drow[o:o+depth:o+depth], srow[o:o+depth:o+depth])
		}
	}
}

// normalize divides an alpha-weighted colour sum by alpha, rounding and
// clamping to Max. alpha must not be zero.
func normalize(num uint64, alpha quantum.Quantum) quantum.Quantum {
	den := uint64(alpha)
	v := (num + den/2) / den
	if v > uint64(quantum.Max) {
		return quantum.Max
	}
	return quantum.Quantum(v)
}

// CompositeOver is the Porter-Duff source-over operator.
//
// Below full opacity the colour is a linear blend of dst and src weighted
// by the scaled source alpha and the alpha is their union. At full
// opacity a fully opaque source, or a fully transparent destination, is
// copied verbatim; otherwise the colour is normalised by the combined
// alpha Sa + Da·(1-Sa).
func CompositeOver(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1

	if opacity != quantum.OpacityOpaque {
		forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
			sa := quantum.Mul(s[a], opacity)
			if sa == quantum.OpacityTransparent {
				return
			}
			da := d[a]
			if da == quantum.OpacityTransparent {
				copy(d[:a], s[:a])
				d[a] = sa
				return
			}
			for c := range a {
				d[c] = quantum.Lerp(d[c], s[c], sa)
			}
			d[a] = da + sa - quantum.Mul(da, sa)
		})
		return
	}

	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := s[a]
		if sa == quantum.OpacityTransparent {
			return
		}
		da := d[a]
		if sa == quantum.OpacityOpaque || da == quantum.OpacityTransparent {
			copy(d, s)
			return
		}
		dw := quantum.Mul(da, quantum.Inv(sa))
		oa := sa + dw
		for c := range a {
			d[c] = normalize(uint64(s[c])*uint64(sa)+uint64(d[c])*uint64(dw), oa)
		}
		d[a] = oa
	})
}

// CompositeIn keeps the source where the destination is: alpha Sa·Da,
// source colour.
func CompositeIn(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		copy(d[:a], s[:a])
		d[a] = quantum.Mul(sa, d[a])
	})
}

// CompositeOut keeps the source where the destination is not: alpha
// Sa·(1-Da), source colour.
func CompositeOut(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		copy(d[:a], s[:a])
		d[a] = quantum.Mul(sa, quantum.Inv(d[a]))
	})
}

// CompositeAtop paints the source only where the destination has
// coverage. The destination alpha is kept.
func CompositeAtop(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		if sa == quantum.OpacityTransparent || d[a] == quantum.OpacityTransparent {
			return
		}
		for c := range a {
			d[c] = quantum.Lerp(d[c], s[c], sa)
		}
	})
}

// CompositeXor keeps source and destination where they do not overlap.
func CompositeXor(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		da := d[a]
		sw := quantum.Mul(sa, quantum.Inv(da))
		dw := quantum.Mul(da, quantum.Inv(sa))
		oa := quantum.AddSat(sw, dw)
		if oa == quantum.OpacityTransparent {
			clear(d)
			return
		}
		for c := range a {
			d[c] = normalize(uint64(s[c])*uint64(sw)+uint64(d[c])*uint64(dw), oa)
		}
		d[a] = oa
	})
}

// CompositePlus adds the premultiplied source to the premultiplied
// destination, saturating.
func CompositePlus(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		da := d[a]
		oa := quantum.AddSat(sa, da)
		if oa == quantum.OpacityTransparent {
			return
		}
		for c := range a {
			sum := uint64(s[c])*uint64(sa) + uint64(d[c])*uint64(da)
			d[c] = normalize(min(sum, uint64(oa)*uint64(quantum.Max)), oa)
		}
		d[a] = oa
	})
}

// CompositeMinus subtracts the premultiplied source from the premultiplied
// destination, clamping at zero. The destination alpha is kept.
func CompositeMinus(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		sa := quantum.Mul(s[a], opacity)
		da := d[a]
		if da == quantum.OpacityTransparent {
			return
		}
		for c := range a {
			dp := int64(d[c]) * int64(da)
			sp := int64(s[c]) * int64(sa)
			diff := max(dp-sp, 0)
			d[c] = normalize(uint64(diff), da)
		}
	})
}
