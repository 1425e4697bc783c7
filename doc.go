// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package paintcore is a tiled paint-device engine.
//
// # Overview
//
// A Device is a raster plane stored as 64×64 tiles (package tile) in one
// colour model (package colorspace). Tiles are allocated on first write
// and shared between devices copy-on-write, so duplicating a device costs
// nothing until one side is painted.
//
// # Quick Start
//
//	import (
//		colorful "github.com/lucasb-eyer/go-colorful"
//
//		"github.com/gogpu/paintcore"
//		"github.com/gogpu/paintcore/colorspace"
//		"github.com/gogpu/paintcore/composite"
//		"github.com/gogpu/paintcore/quantum"
//	)
//
//	reg := colorspace.NewRegistry()
//	rgba, _ := reg.Get(colorspace.KindRGBA)
//
//	bg := paintcore.NewDevice("background", 512, 512, rgba)
//	bg.Fill(colorful.Color{R: 1, G: 1, B: 1}, quantum.OpacityOpaque)
//
//	cmd := bg.BeginTransaction("paste")
//	_ = bg.BitBlt(100, 100, layer, layer.Bounds(), quantum.OpacityOpaque, composite.Over)
//	cmd.Finish()
//	cmd.Unexecute() // undo
//
// # Packages
//
//   - quantum: 16-bit fixed-point channel arithmetic
//   - tile: tiles, the tile manager, pixel-data regions and mementos
//   - iter: cursors and pixel iterators across tile boundaries
//   - composite: compositing operators over quantum buffers
//   - colorspace: RGBA, CMYKA, GrayA and alpha-mask strategies
//   - command: undo commands over mementos
//   - store: serialized tile streams and containers
//   - imagefile: importing and exporting raster files
//
// # Coordinate System
//
// Origin (0,0) is the top-left pixel; x grows right and y grows down.
// Rectangles passed as image.Rectangle are half-open; the tile package's
// region calls take inclusive corners.
//
// # Concurrency
//
// A device may be used from one goroutine at a time. Tile managers lock
// their grid internally, so devices sharing tiles through a mediator may
// be painted from different goroutines.
package paintcore

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
