package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/export"
)

func newDiagramCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the stored diagram as Mermaid, JSON or regenerated source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			d, err := store.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}

			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "mermaid":
				_, err = fmt.Fprint(w, export.GenerateMermaid(d))
				return err
			case "json":
				diagramName := name
				if diagramName == "" {
					abs, _ := filepath.Abs(a.projectRoot)
					diagramName = filepath.Base(abs)
				}
				return writeJSON(w, export.ExportDiagram(diagramName, d))
			case "java":
				files := export.ExportSources(d)
				if outDir != "" {
					if err := export.WriteSources(outDir, files); err != nil {
						return err
					}
					a.log.Info("wrote sources", "dir", outDir, "files", len(files))
					return nil
				}
				for i, f := range files {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "// %s\n%s", f.Path, f.Content)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q: want mermaid, json or java", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "mermaid", "output format: mermaid, json or java")
	cmd.Flags().StringVar(&outDir, "out", "", "with --format java, write one file per class into this directory")
	cmd.Flags().StringVar(&name, "name", "", "diagram name in JSON output (default: project directory name)")
	return cmd
}
