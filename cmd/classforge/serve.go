package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/mcptools"
)

func newServeMCPCmd(a *app) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server over stdio, or streamable HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			svc := mcptools.NewClassForgeService(store, im)
			svc.SetLogger(a.log)
			if abs, err := filepath.Abs(a.projectRoot); err == nil {
				svc.SetDiagramName(filepath.Base(abs))
			}
			server := mcptools.NewClassForgeMCPServer(svc)

			if httpAddr != "" {
				return mcptools.RunHTTP(ctx, server, httpAddr, a.log)
			}
			a.log.Debug("serving mcp over stdio")
			return mcptools.RunStdio(ctx, server)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "listen address for streamable HTTP, e.g. :8080 (default: stdio)")
	return cmd
}
