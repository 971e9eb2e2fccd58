package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/classforge/internal/export"
	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/importer"
	"github.com/dusk-indust/classforge/internal/javasrc"
	"github.com/dusk-indust/classforge/internal/model"
)

// ClassForgeService holds the diagram store and importer used by MCP tool
// handlers.
type ClassForgeService struct {
	store    graph.Store
	importer *importer.Importer
	name     string
	log      *slog.Logger
}

// NewClassForgeService creates a ClassForgeService. The importer must write
// to store.
func NewClassForgeService(store graph.Store, im *importer.Importer) *ClassForgeService {
	return &ClassForgeService{store: store, importer: im, name: "diagram", log: slog.Default()}
}

// SetLogger replaces the default logger.
func (s *ClassForgeService) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetDiagramName sets the name reported by get_diagram.
func (s *ClassForgeService) SetDiagramName(name string) {
	s.name = name
}

// parseError presents parse failures in the form callers expect.
func parseError(err error) error {
	if errors.Is(err, javasrc.ErrNoDeclaration) {
		return fmt.Errorf("could not parse source: %w", err)
	}
	return err
}

// ParseSource extracts a class descriptor from source text.
func (s *ClassForgeService) ParseSource(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseSourceInput,
) (*mcp.CallToolResult, ParseSourceOutput, error) {
	res, err := s.importer.Parse("source", input.Source)
	if err != nil {
		return nil, ParseSourceOutput{}, parseError(err)
	}
	skipped := append([]string{}, res.Skipped...)
	return nil, ParseSourceOutput{Class: res.Class.Clone(), Skipped: skipped}, nil
}

// GenerateSource renders a class as source text, either from a diagram node
// or from a descriptor supplied by the caller.
func (s *ClassForgeService) GenerateSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateSourceInput,
) (*mcp.CallToolResult, GenerateSourceOutput, error) {
	if input.NodeID == "" {
		if input.Class == nil {
			return nil, GenerateSourceOutput{}, fmt.Errorf("nodeId or class is required")
		}
		return nil, GenerateSourceOutput{Source: javasrc.Generate(*input.Class)}, nil
	}

	d, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, GenerateSourceOutput{}, fmt.Errorf("snapshot: %w", err)
	}
	desc, ok := graph.DescriptorFor(d, input.NodeID)
	if !ok {
		return nil, GenerateSourceOutput{}, fmt.Errorf("node not found: %s", input.NodeID)
	}
	return nil, GenerateSourceOutput{Source: javasrc.Generate(desc)}, nil
}

// ImportSource parses source text and merges the class into the diagram.
func (s *ClassForgeService) ImportSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImportSourceInput,
) (*mcp.CallToolResult, ImportSourceOutput, error) {
	name := input.Name
	if name == "" {
		name = "source"
	}
	res, err := s.importer.ImportSource(ctx, name, input.Source)
	if err != nil {
		return nil, ImportSourceOutput{}, parseError(err)
	}
	return nil, ImportSourceOutput{Import: *res}, nil
}

// ImportDirectory imports every source file under a directory.
func (s *ClassForgeService) ImportDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImportDirectoryInput,
) (*mcp.CallToolResult, ImportDirectoryOutput, error) {
	if input.Path == "" {
		return nil, ImportDirectoryOutput{}, fmt.Errorf("path is required")
	}
	res, err := s.importer.ImportDir(ctx, input.Path)
	if err != nil {
		return nil, ImportDirectoryOutput{}, fmt.Errorf("import directory: %w", err)
	}
	return nil, ImportDirectoryOutput{Result: *res}, nil
}

// ValidateConnection checks a proposed edge against the connection rules.
func (s *ClassForgeService) ValidateConnection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateConnectionInput,
) (*mcp.CallToolResult, ValidateConnectionOutput, error) {
	if input.Kind == "" {
		return nil, ValidateConnectionOutput{}, fmt.Errorf("kind is required")
	}
	src, err := s.endpoint(ctx, input.Source, input.SourceNodeID, "source")
	if err != nil {
		return nil, ValidateConnectionOutput{}, err
	}
	tgt, err := s.endpoint(ctx, input.Target, input.TargetNodeID, "target")
	if err != nil {
		return nil, ValidateConnectionOutput{}, err
	}
	kind := model.RelationshipKind(strings.ToLower(input.Kind))

	return nil, ValidateConnectionOutput{
		Valid:  graph.IsValidConnection(src, tgt, kind),
		Source: string(src),
		Target: string(tgt),
		Kind:   string(kind),
	}, nil
}

// endpoint resolves one side of a connection to a stereotype. A node id
// takes precedence over an explicit stereotype.
func (s *ClassForgeService) endpoint(ctx context.Context, stereotype, nodeID, side string) (model.Stereotype, error) {
	if nodeID == "" {
		if stereotype == "" {
			return "", fmt.Errorf("%s or %sNodeId is required", side, side)
		}
		return model.Stereotype(strings.ToLower(stereotype)), nil
	}
	n, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return "", fmt.Errorf("get node: %w", err)
	}
	if n == nil {
		return "", fmt.Errorf("node not found: %s", nodeID)
	}
	if n.Type == graph.NodeTypeNote {
		return model.StereotypeNote, nil
	}
	return n.Data.Stereotype, nil
}

// GetDiagram returns the whole diagram with nodes and edges in id order.
func (s *ClassForgeService) GetDiagram(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetDiagramInput,
) (*mcp.CallToolResult, GetDiagramOutput, error) {
	d, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, GetDiagramOutput{}, fmt.Errorf("snapshot: %w", err)
	}
	return nil, GetDiagramOutput{Diagram: *export.ExportDiagram(s.name, d)}, nil
}

// ExportMermaid renders the diagram as a Mermaid classDiagram.
func (s *ClassForgeService) ExportMermaid(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ExportMermaidInput,
) (*mcp.CallToolResult, ExportMermaidOutput, error) {
	d, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, ExportMermaidOutput{}, fmt.Errorf("snapshot: %w", err)
	}
	return nil, ExportMermaidOutput{Mermaid: export.GenerateMermaid(d)}, nil
}

// ExportSources regenerates source text for every imported class.
func (s *ClassForgeService) ExportSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ExportSourcesInput,
) (*mcp.CallToolResult, ExportSourcesOutput, error) {
	d, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, ExportSourcesOutput{}, fmt.Errorf("snapshot: %w", err)
	}
	files := export.ExportSources(d)
	if files == nil {
		files = []export.SourceFile{}
	}
	return nil, ExportSourcesOutput{Files: files}, nil
}

// QueryClasses searches for classes by name substring match.
func (s *ClassForgeService) QueryClasses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryClassesInput,
) (*mcp.CallToolResult, QueryClassesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	nodes, err := s.store.QueryNodes(ctx, input.Query, limit)
	if err != nil {
		return nil, QueryClassesOutput{}, fmt.Errorf("query classes: %w", err)
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}

	return nil, QueryClassesOutput{
		Classes: nodes,
		Total:   len(nodes),
	}, nil
}

// GetDependencies traverses the diagram from a given class.
func (s *ClassForgeService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}

	direction := graph.DirectionDependencies
	if strings.EqualFold(input.Direction, string(graph.DirectionDependents)) {
		direction = graph.DirectionDependents
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.store.GetDependencies(ctx, input.NodeID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the classes affected by modifying a set of classes.
func (s *ClassForgeService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedNodes) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedNodes is required")
	}

	impact, err := s.store.AssessImpact(ctx, input.ChangedNodes)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}

	return nil, AssessImpactOutput{Impact: *impact}, nil
}
