// Package mcptools exposes parsing, generation, import and diagram queries as
// Model Context Protocol tools.
package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewClassForgeMCPServer creates an MCP server with every classforge tool
// registered.
func NewClassForgeMCPServer(svc *ClassForgeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "classforge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_source",
		Description: "Parse Java-like source text into a structural class descriptor: name, stereotype, generics, parent, interfaces, attributes, methods and entry-point flag. Members that match no known shape are listed as skipped.",
	}, svc.ParseSource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_source",
		Description: "Render a class descriptor, or an existing diagram node, as Java source with stub method bodies.",
	}, svc.GenerateSource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_source",
		Description: "Parse source text and merge the class into the diagram. Referenced types that are not yet imported become ghost nodes.",
	}, svc.ImportSource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_directory",
		Description: "Scan a directory for .java files and merge every class into the diagram in path order. Files that fail to parse are reported, not fatal.",
	}, svc.ImportDirectory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_connection",
		Description: "Check whether an edge of the given kind may connect two stereotypes, or two existing diagram nodes.",
	}, svc.ValidateConnection)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_diagram",
		Description: "Return the whole class diagram with nodes and edges in id order, plus summary statistics.",
	}, svc.GetDiagram)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_mermaid",
		Description: "Render the class diagram as a Mermaid classDiagram.",
	}, svc.ExportMermaid)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_sources",
		Description: "Regenerate Java source for every imported (non-ghost) class in the diagram.",
	}, svc.ExportSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_classes",
		Description: "Search diagram classes by name substring match, ordered by node id.",
	}, svc.QueryClasses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the diagram from a class towards what it depends on, or towards its dependents. Returns one chain per reachable class up to the given depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute which classes are affected, directly and transitively, by modifying a set of classes, with a risk score.",
	}, svc.AssessImpact)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP at addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string, log *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("mcp http shutdown", "err", err)
		}
	}()

	log.Info("serving mcp over http", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
