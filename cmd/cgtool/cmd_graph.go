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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/program"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/view"
)

// maxInputBytes bounds snapshot and program files.
const maxInputBytes = 64 << 20

var errInputTooLarge = errors.New("input file too large")

func readInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxInputBytes {
		return nil, fmt.Errorf("%w: %s", errInputTooLarge, path)
	}
	return os.ReadFile(path)
}

// isProgramFile reports whether data is a program file rather than a
// snapshot. Program files have a top-level "classes" key.
func isProgramFile(data []byte) bool {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["classes"]
	return ok
}

// loadProgram decodes a program file and returns it with its view.
func (a *app) loadProgram(path string) (*program.Program, *view.MemoryView, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := program.Decode(data, a.factory)
	if err != nil {
		return nil, nil, err
	}
	return p, p.View(view.WithLogger(a.logger)), nil
}

// loadGraph builds a call graph from a snapshot or program file.
func (a *app) loadGraph(ctx context.Context, path string) (*callgraph.Graph, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	if isProgramFile(data) {
		p, err := program.Decode(data, a.factory)
		if err != nil {
			return nil, err
		}
		v := p.View(view.WithLogger(a.logger))
		return p.CallGraph(ctx, v, a.graphOptions()...)
	}

	var snap callgraph.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return callgraph.FromSnapshot(snap, a.factory, a.graphOptions()...)
}

func newDotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dot FILE",
		Short: "Print a call graph in DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), g.ExportAsDOT())
			return err
		},
	}
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every method with its callees and callers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), g.String())
			return err
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print call graph statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Fingerprint string `json:"fingerprint"`
				callgraph.Stats
			}{g.Fingerprint(), g.Stats()})
		},
	}
}

func newCallsCmd(a *app) *cobra.Command {
	var callers bool
	cmd := &cobra.Command{
		Use:   "calls FILE METHOD",
		Short: "List the callees (or callers with --in) of a method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := a.factory.ParseMethodSignature(args[1])
			if err != nil {
				return err
			}

			var result []signature.MethodSignature
			if callers {
				result, err = g.CallsTo(m)
			} else {
				result, err = g.CallsFrom(m)
			}
			if err != nil {
				return err
			}
			for _, r := range result {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&callers, "in", false, "list callers instead of callees")
	return cmd
}

func newHierarchyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hierarchy PROGRAM CLASS",
		Short: "Show the supertypes and subtypes of a class in a program file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			c, err := view.ClassOrErr(v, a.factory.ClassType(args[1]))
			if err != nil {
				return err
			}

			h := v.TypeHierarchy()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c.Type)
			for _, s := range h.SuperClassesOf(c.Type) {
				fmt.Fprintln(out, "  extends", s)
			}
			for _, i := range h.ImplementedInterfacesOf(c.Type) {
				fmt.Fprintln(out, "  implements", i)
			}
			for _, s := range h.SubtypesOf(c.Type) {
				fmt.Fprintln(out, "  subtype", s)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
