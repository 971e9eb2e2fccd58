package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/importer"
)

func newImportCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Merge source files or directories into the stored diagram",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			im, err := a.newImporter(store)
			if err != nil {
				return err
			}

			summary := &importer.DirResult{Imported: []importer.Result{}}
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("cannot access %s: %w", path, err)
				}
				if info.IsDir() {
					res, err := im.ImportDir(ctx, path)
					if err != nil {
						return err
					}
					summary.Imported = append(summary.Imported, res.Imported...)
					summary.Failed = append(summary.Failed, res.Failed...)
					continue
				}
				res, err := im.ImportFile(ctx, path)
				if err != nil {
					summary.Failed = append(summary.Failed, importer.FileError{File: path, Error: err.Error()})
					continue
				}
				summary.Imported = append(summary.Imported, *res)
			}

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			summary.Stats = *stats

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			w := cmd.OutOrStdout()
			for _, r := range summary.Imported {
				fmt.Fprintf(w, "imported %-24s %s\n", r.Class, r.File)
			}
			for _, f := range summary.Failed {
				fmt.Fprintf(w, "failed   %s: %s\n", f.File, f.Error)
			}
			fmt.Fprintf(w, "%d classes (%d ghost), %d relationships\n",
				stats.NodeCount, stats.GhostCount, stats.EdgeCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the import summary as JSON")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Import a directory, then re-import source files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.projectRoot
			if len(args) == 1 {
				dir = args[0]
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			im, err := a.newImporter(store)
			if err != nil {
				return err
			}
			if _, err := im.ImportDir(ctx, dir); err != nil {
				return err
			}

			w, err := im.NewWatcher(dir, importer.WithDebounce(a.cfg.WatchDebounce))
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
}
