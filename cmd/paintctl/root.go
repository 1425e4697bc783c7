// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/colorspace"
	"github.com/gogpu/paintcore/store"
)

var (
	logLevel string
	storeDir string
	logger   = paintcore.Logger()

	registry = colorspace.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "paintctl",
	Short: "Tiled paint device tool",
	Long: `paintctl moves raster images in and out of tile stores and reports
on the planes they hold.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(logLevel)}))
		paintcore.SetLogger(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "./tiles", "Directory holding tile streams")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func openStore() (*store.DirContainer, error) {
	return store.NewDirContainer(storeDir)
}
