// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintcore/imagefile"
)

var (
	importModel string
	importName  string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a raster file into the store",
	Long: `Decode FILE and save it as a tile stream. Animated GIFs produce one
stream per frame, suffixed -0, -1 and so on.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importModel, "model", "rgba", "Colour model (rgba, cmyka, graya, alpha)")
	importCmd.Flags().StringVar(&importName, "name", "", "Stream name (default: file name without extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	s, ok := registry.ByName(importModel)
	if !ok {
		return fmt.Errorf("unknown colour model %q", importModel)
	}
	c, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	name := importName
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	devs, err := imagefile.ImportFile(args[0], registry, s.Kind(), imagefile.WithName(name))
	if err != nil {
		return err
	}

	for i, d := range devs {
		stream := name
		if len(devs) > 1 {
			stream = fmt.Sprintf("%s-%d", name, i)
		}
		if err := d.WriteToStore(c, stream); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s\n", stream, d.Width(), d.Height(), s.Name())
		d.Release()
	}
	logger.Info("imported", "file", args[0], "streams", len(devs), "model", s.Name())
	return nil
}
