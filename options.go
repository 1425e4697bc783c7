// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package paintcore

import (
	"log/slog"

	"github.com/gogpu/paintcore/tile"
)

// ProgressFunc receives the progress of a long-running operation as done
// out of total units. It is called from the goroutine running the
// operation.
type ProgressFunc func(done, total int)

// Option configures a Device during creation.
//
// Example:
//
//	md := tile.NewMediator()
//	d := paintcore.NewDevice("background", 800, 600, colorspace.NewRGBA(),
//		paintcore.WithMediator(md),
//		paintcore.WithProgress(func(done, total int) { bar.Set(done, total) }))
type Option func(*options)

type options struct {
	mediator *tile.Mediator
	logger   *slog.Logger
	progress ProgressFunc
}

func defaultOptions() options {
	return options{
		logger: Logger(),
	}
}

// WithMediator makes the device's tiles share bookkeeping with other
// devices using md. Devices that exchange tiles must use the same
// mediator.
func WithMediator(md *tile.Mediator) Option {
	return func(o *options) {
		o.mediator = md
	}
}

// WithLogger overrides the package logger for one device.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress sets the callback for long-running operations such as
// Mirror and FloodFill.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}
