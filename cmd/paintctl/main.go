// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command paintctl imports raster files into tile stores, inspects stored
// planes and exports them again.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
