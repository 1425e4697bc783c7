// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package paintcore

import (
	"context"
	"fmt"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/paintcore/command"
	"github.com/gogpu/paintcore/iter"
	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

// Axis selects the direction of Mirror.
type Axis uint8

const (
	// Horizontal swaps left and right.
	Horizontal Axis = iota
	// Vertical swaps top and bottom.
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", a)
	}
}

func (d *Device) report(done, total int) {
	if d.progress != nil {
		d.progress(done, total)
	}
}

// Mirror flips the device along axis and returns the command that undoes
// it. Each mirrored line is read back through the command's memento, so
// lines already overwritten still yield their original pixels. The
// context is checked between lines; on cancellation the partial flip is
// reverted and the context error returned.
func (d *Device) Mirror(ctx context.Context, axis Axis) (*command.TileCommand, error) {
	cmd := d.BeginTransaction("mirror " + axis.String())
	mem := cmd.Memento()

	lines := d.Height()
	if axis == Horizontal {
		lines = d.Width()
	}
	for i := range lines {
		if err := ctx.Err(); err != nil {
			cmd.Unexecute()
			cmd.Release()
			d.log.Warn("paintcore: mirror cancelled", "device", d.name, "line", i)
			return nil, err
		}
		j := lines - 1 - i
		switch axis {
		case Horizontal:
			w := iter.VLine(d.mgr, i, 0, d.Height()-1, iter.WithMode(tile.Write), iter.WithMemento(mem))
			r := iter.VLine(d.mgr, j, 0, d.Height()-1, iter.WithMemento(mem))
			copyLine(w, r)
		default:
			w := iter.HLine(d.mgr, 0, d.Width()-1, i, iter.WithMode(tile.Write), iter.WithMemento(mem))
			r := iter.HLine(d.mgr, 0, d.Width()-1, j, iter.WithMemento(mem))
			copyLine(w, r)
		}
		d.report(i+1, lines)
	}
	cmd.Finish()
	d.log.Info("paintcore: mirrored", "device", d.name, "axis", axis)
	return cmd, nil
}

type lineWalker interface {
	Next() bool
	SetPixel([]quantum.Quantum)
	OldPixel() []quantum.Quantum
	Close()
}

func copyLine(w, r lineWalker) {
	defer w.Close()
	defer r.Close()
	for w.Next() && r.Next() {
		w.SetPixel(r.OldPixel())
	}
}

// FillPattern covers r with pattern repeated in both directions. The
// pattern's origin is aligned with the device origin, so adjacent fills
// continue the same repeat. The context is checked once per row.
func (d *Device) FillPattern(ctx context.Context, r image.Rectangle, pattern *Device) error {
	if pattern.strategy.Kind() != d.strategy.Kind() {
		return fmt.Errorf("%w: pattern %s onto %s", ErrColorSpace, pattern.strategy.Name(), d.strategy.Name())
	}
	r = r.Intersect(d.Bounds())
	if r.Empty() || pattern.Width() == 0 {
		return nil
	}

	pm := pattern.mgr
	if pattern == d {
		pm = d.mgr.Duplicate()
		defer pm.Release()
	}
	src := iter.Infinite(pm, r)
	dst := iter.Rect(d.mgr, r, iter.WithMode(tile.Write))
	defer dst.Close()
	row := r.Min.Y - 1
	for dst.Next() && src.Next() {
		if y := dst.Y(); y != row {
			if err := ctx.Err(); err != nil {
				return err
			}
			if row >= r.Min.Y {
				d.report(row-r.Min.Y+1, r.Dy())
			}
			row = y
		}
		dst.SetPixel(src.Pixel())
	}
	d.report(r.Dy(), r.Dy())
	return nil
}

// FloodFill paints the 4-connected region around (x, y) whose pixels
// differ from the seed pixel by at most threshold in every channel. It
// returns the number of pixels painted. The fill works one scanline span
// at a time; the context is checked between spans and progress is
// reported as painted pixels out of the device area.
func (d *Device) FloodFill(ctx context.Context, x, y int, c colorful.Color, opacity quantum.Quantum, threshold quantum.Quantum) (int, error) {
	seed, err := d.RawPixel(x, y)
	if err != nil {
		return 0, err
	}
	px := d.native(c, opacity)
	w, h := d.Width(), d.Height()
	visited := make([]uint64, (w*h+63)/64)
	seen := func(x, y int) bool {
		i := y*w + x
		return visited[i/64]&(1<<(i%64)) != 0
	}
	mark := func(x, y int) {
		i := y*w + x
		visited[i/64] |= 1 << (i % 64)
	}

	cur := make([]quantum.Quantum, d.Depth())
	match := func(x, y int) bool {
		if seen(x, y) {
			return false
		}
		d.readRaw(x, y, cur)
		for ch, v := range cur {
			if diff(v, seed[ch]) > threshold {
				return false
			}
		}
		return true
	}

	painted := 0
	stack := []image.Point{{x, y}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			d.log.Warn("paintcore: flood fill cancelled", "device", d.name, "painted", painted)
			return painted, err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !match(p.X, p.Y) {
			continue
		}

		x1, x2 := p.X, p.X
		for x1 > 0 && match(x1-1, p.Y) {
			x1--
		}
		for x2 < w-1 && match(x2+1, p.Y) {
			x2++
		}

		it := iter.HLine(d.mgr, x1, x2, p.Y, iter.WithMode(tile.Write))
		for it.Next() {
			it.SetPixel(px)
			mark(it.X(), p.Y)
		}
		painted += x2 - x1 + 1

		for _, ny := range []int{p.Y - 1, p.Y + 1} {
			if ny < 0 || ny >= h {
				continue
			}
			for sx := x1; sx <= x2; sx++ {
				if match(sx, ny) && (sx == x1 || !match(sx-1, ny)) {
					stack = append(stack, image.Pt(sx, ny))
				}
			}
		}
		d.report(painted, w*h)
	}
	d.log.Info("paintcore: flood fill", "device", d.name, "painted", painted)
	return painted, nil
}

// readRaw copies pixel (x, y) into px without allocating tiles.
func (d *Device) readRaw(x, y int, px []quantum.Quantum) {
	t := d.mgr.Tile(x, y, tile.Read)
	if !t.Allocated() {
		clear(px)
		return
	}
	copy(px, t.Pixel(x%tile.Width, y%tile.Height))
}

func diff(a, b quantum.Quantum) quantum.Quantum {
	if a > b {
		return a - b
	}
	return b - a
}
