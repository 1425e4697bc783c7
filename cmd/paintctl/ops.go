// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintcore/composite"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List colour models and their compositing operators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tCHANNELS\tOPERATORS")
		for _, k := range registry.Kinds() {
			s, _ := registry.Get(k)
			names := make([]string, 0, len(s.CompositeOps()))
			for _, op := range s.CompositeOps() {
				names = append(names, op.String())
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name(), s.Depth(), strings.Join(names, " "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d operators known\n", len(composite.Ops()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opsCmd)
}
