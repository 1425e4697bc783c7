// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package paintcore

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled
// returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var (
	silent    = slog.New(nopHandler{})
	loggerPtr atomic.Pointer[slog.Logger]
)

func init() { loggerPtr.Store(silent) }

// SetLogger sets the logger that devices created afterwards use, and that
// they hand down to their tile managers. By default paintcore logs
// nothing. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: copy-on-write clones, memento swaps, store I/O
//   - [slog.LevelInfo]: completed long-running operations
//   - [slog.LevelWarn]: cancelled operations
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
