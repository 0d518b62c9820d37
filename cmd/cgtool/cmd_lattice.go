// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceclin/SootUp/services/analysis/typelattice"
)

func newLatticeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lattice",
		Short: "Query the primitive type lattice",
		Long: `Query the primitive type lattice used by type inference.

Type names are Java primitives (boolean, byte, char, short, int, long,
float, double), the augmented integer levels (integer1, integer127,
integer32767), "bottom", reference types such as java.lang.String, and
any of these followed by one or more "[]".

Examples:
  cgtool lattice ancestor int byte
  cgtool lattice lca char short
  cgtool lattice lca integer127 short`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ancestor ANCESTOR CHILD",
		Short: "Report whether ANCESTOR is an ancestor of CHILD",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ancestor, err := typelattice.ParseType(args[0])
			if err != nil {
				return err
			}
			child, err := typelattice.ParseType(args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), typelattice.PrimitiveHierarchy{}.IsAncestor(ancestor, child))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lca A B",
		Short: "Print the least common ancestors of A and B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := typelattice.ParseType(args[0])
			if err != nil {
				return err
			}
			y, err := typelattice.ParseType(args[1])
			if err != nil {
				return err
			}
			lca := typelattice.PrimitiveHierarchy{}.LeastCommonAncestor(x, y)
			names := make([]string, len(lca))
			for i, t := range lca {
				names[i] = t.String()
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", strings.Join(names, ", "))
			return err
		},
	})
	return cmd
}
