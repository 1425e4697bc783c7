// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/colorspace"
	"github.com/gogpu/paintcore/imagefile"
)

var exportModel string

var exportCmd = &cobra.Command{
	Use:   "export STREAM FILE",
	Short: "Export a stored stream as PNG or TIFF",
	Long: `Load STREAM from the store and write it to FILE. The format follows
the extension of FILE. The colour model is taken from --model, or guessed
from the channel count of the stream.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportModel, "model", "", "Colour model of the stream (default: by channel count)")
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	mgr, err := loadStream(c, args[0])
	if err != nil {
		return err
	}
	depth := mgr.Depth()
	mgr.Release()

	s, err := modelFor(exportModel, depth)
	if err != nil {
		return err
	}
	d := paintcore.NewDevice(args[0], 0, 0, s)
	defer d.Release()
	if err := d.LoadFromStore(c, args[0]); err != nil {
		return err
	}
	if err := imagefile.ExportFile(args[1], d); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
	return nil
}

// modelFor resolves name, or the model with depth channels when name is
// empty.
func modelFor(name string, depth int) (colorspace.Strategy, error) {
	if name != "" {
		s, ok := registry.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown colour model %q", name)
		}
		return s, nil
	}
	for _, k := range registry.Kinds() {
		if s, _ := registry.Get(k); s.Depth() == depth {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no colour model with %d channels", depth)
}
