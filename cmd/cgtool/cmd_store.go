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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ceclin/SootUp/services/analysis/storage/badger"
)

// openStore opens the configured snapshot database.
func (a *app) openStore() (*badger.DB, *badger.SnapshotStore, error) {
	cfg := a.cfg.Storage
	cfg.Logger = a.logger
	db, err := badger.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, badger.NewSnapshotStore(db, a.factory, a.logger), nil
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load call graph snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put NAME FILE",
		Short: "Store the call graph built from FILE under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			db, store, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			sum, err := store.Put(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d methods, %d calls, fingerprint %s)\n",
				sum.Name, sum.Stats.Methods, sum.Stats.Calls, sum.Fingerprint)
			return err
		},
	})

	var format string
	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored call graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			g, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "dot":
				_, err = fmt.Fprintln(out, g.ExportAsDOT())
			case "dump":
				_, err = fmt.Fprint(out, g.String())
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err = enc.Encode(g.Snapshot()); err == nil {
					err = enc.Close()
				}
			case "json":
				err = writeJSON(out, g.Snapshot())
			default:
				err = fmt.Errorf("unknown format %q (want dot, dump, yaml or json)", format)
			}
			return err
		},
	}
	get.Flags().StringVar(&format, "format", "dot", "output format: dot, dump, yaml or json")
	cmd.AddCommand(get)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored call graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMETHODS\tCALLS\tFINGERPRINT\tSTORED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
					s.Name, s.Stats.Methods, s.Stats.Calls, s.Fingerprint, s.StoredAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored call graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}
