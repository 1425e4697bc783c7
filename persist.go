// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package paintcore

import (
	"fmt"

	"github.com/gogpu/paintcore/store"
	"github.com/gogpu/paintcore/tile"
)

// WriteToStore saves the device's tiles as stream name of c.
func (d *Device) WriteToStore(c store.Container, name string) error {
	if err := store.Save(c, name, d.mgr); err != nil {
		return fmt.Errorf("paintcore: write %s: %w", d.name, err)
	}
	d.log.Debug("paintcore: stored", "device", d.name, "stream", name, "tiles", d.mgr.TileCount())
	return nil
}

// LoadFromStore replaces the device's pixels, and its size, with stream
// name of c. On error the device is unchanged.
func (d *Device) LoadFromStore(c store.Container, name string) error {
	mgr, err := store.Load(c, name, tile.WithMediator(d.mgr.Mediator()), tile.WithLogger(d.log))
	if err != nil {
		return fmt.Errorf("paintcore: load %s: %w", d.name, err)
	}
	if mgr.Depth() != d.Depth() {
		mgr.Release()
		return fmt.Errorf("%w: stream %q has %d channels, %s has %d", ErrColorSpace, name, mgr.Depth(), d.strategy.Name(), d.Depth())
	}
	d.mgr.Release()
	d.mgr = mgr
	d.log.Debug("paintcore: loaded", "device", d.name, "stream", name, "width", mgr.Width(), "height", mgr.Height())
	return nil
}
