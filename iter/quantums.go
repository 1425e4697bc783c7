// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package iter

import "github.com/gogpu/paintcore/quantum"

// PixelWalker is what Quantums steps over. HLineIter, VLineIter and
// RectIter all satisfy it.
type PixelWalker interface {
	Next() bool
	Pixel() []quantum.Quantum
	SetQuantum(ch int, v quantum.Quantum)
}

// Quantums walks every channel of every pixel of a PixelWalker in order.
type Quantums struct {
	w     PixelWalker
	depth int
	ch    int
	px    []quantum.Quantum
}

// NewQuantums returns a channel iterator over w for pixels of depth
// channels.
func NewQuantums(w PixelWalker, depth int) *Quantums {
	return &Quantums{w: w, depth: depth, ch: -1}
}

// Next advances to the next channel, moving to the next pixel after the
// last channel.
func (q *Quantums) Next() bool {
	if q.px != nil && q.ch+1 < q.depth {
		q.ch++
		return true
	}
	if !q.w.Next() {
		q.px = nil
		return false
	}
	q.px = q.w.Pixel()
	q.ch = 0
	return true
}

// Channel returns the index of the current channel within its pixel.
func (q *Quantums) Channel() int { return q.ch }

// Value returns the current channel value.
func (q *Quantums) Value() quantum.Quantum { return q.px[q.ch] }

// Set stores v in the current channel. Panics if the underlying walker
// was not created for writing.
func (q *Quantums) Set(v quantum.Quantum) { q.w.SetQuantum(q.ch, v) }
