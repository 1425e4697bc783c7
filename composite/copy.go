// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package composite

import (
	"github.com/gogpu/paintcore/quantum"
)

// CompositeCopy replaces the destination pixels with the source pixels.
// Opacity only matters in that OpacityTransparent is a no-op.
func CompositeCopy(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	n := cols * depth
	for r := range rows {
		copy(dst[r*dstStride:][:n], src[r*srcStride:][:n])
	}
}

// CopyChannel returns an operator copying channel ch only. A negative ch
// counts from the end of the pixel, so -1 is the alpha channel.
func CopyChannel(ch int) Func {
	return func(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
		if opacity == quantum.OpacityTransparent {
			return
		}
		c := ch
		if c < 0 {
			c += depth
		}
		if c < 0 || c >= depth {
			panic("composite: channel out of range")
		}
		for r := range rows {
			drow := dst[r*dstStride:]
			srow := src[r*srcStride:]
			for x := range cols {
				drow[x*depth+c] = srow[x*depth+c]
			}
		}
	}
}

// CompositeClear zero-fills the destination. src is ignored.
func CompositeClear(depth int, dst []quantum.Quantum, dstStride int, _ []quantum.Quantum, _ int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	n := cols * depth
	for r := range rows {
		clear(dst[r*dstStride:][:n])
	}
}

// CompositeErase lowers the destination alpha to the source alpha where
// the source is more transparent. It never raises the destination alpha.
func CompositeErase(depth int, dst []quantum.Quantum, dstStride int, src []quantum.Quantum, srcStride int, rows, cols int, opacity quantum.Quantum) {
	if opacity == quantum.OpacityTransparent {
		return
	}
	a := depth - 1
	forEach(depth, dst, dstStride, src, srcStride, rows, cols, func(d, s []quantum.Quantum) {
		if s[a] < d[a] {
			d[a] = s[a]
		}
	})
}

// CompositeNo leaves the destination untouched.
func CompositeNo(int, []quantum.Quantum, int, []quantum.Quantum, int, int, int, quantum.Quantum) {}
