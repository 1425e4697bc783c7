// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintcore/store"
	"github.com/gogpu/paintcore/tile"
)

var infoCmd = &cobra.Command{
	Use:   "info [STREAM...]",
	Short: "Describe stored streams",
	Long:  `Print size, channel count and tile usage of the named streams, or of every stream in the store.`,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	names := args
	if len(names) == 0 {
		if names, err = c.Names(); err != nil {
			return fmt.Errorf("failed to list streams: %w", err)
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No streams found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tSIZE\tCHANNELS\tTILES\tALLOCATED\tBYTES")
	for _, name := range names {
		mgr, err := loadStream(c, name)
		if err != nil {
			return err
		}
		allocated := 0
		for i := range mgr.TileCount() {
			if mgr.TileAt(i, tile.Read).Allocated() {
				allocated++
			}
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%d\t%d\n",
			name, mgr.Width(), mgr.Height(), mgr.Depth(), mgr.TileCount(), allocated, mgr.MemSize())
		mgr.Release()
	}
	return w.Flush()
}

func loadStream(c store.Container, name string) (*tile.Manager, error) {
	mgr, err := store.Load(c, name, tile.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return mgr, nil
}
