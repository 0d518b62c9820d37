// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command cgtool builds, inspects, stores and serves call graphs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/config"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands once the config is loaded.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	factory    *signature.IdentifierFactory
}

// graphOptions returns the call graph options selected by the config.
func (a *app) graphOptions() []callgraph.Option {
	if a.cfg.Graph.ParallelEdges {
		return []callgraph.Option{callgraph.WithParallelEdges()}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{factory: signature.NewIdentifierFactory()}

	root := &cobra.Command{
		Use:   "cgtool",
		Short: "Build, inspect, store and serve call graphs",
		Long: `cgtool works with call graphs described by snapshot or program files.

A snapshot file lists method signatures and the calls between them. A
program file declares classes with their methods and fields, plus calls;
it is resolved through a view so scoping and the type hierarchy apply.

Examples:
  cgtool dot graph.yaml
  cgtool calls program.yaml "<app.Main: void main(java.lang.String[])>" --in
  cgtool lattice lca char short
  cgtool store put release-1 graph.yaml
  cgtool serve --config config.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = telemetry.NewLogger(cfg.Telemetry, cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.yaml (defaults apply when empty)")

	root.AddCommand(
		newDotCmd(a),
		newDumpCmd(a),
		newStatsCmd(a),
		newCallsCmd(a),
		newHierarchyCmd(a),
		newLatticeCmd(a),
		newStoreCmd(a),
		newServeCmd(a),
	)
	return root
}
