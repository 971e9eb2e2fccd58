package mcptools

import (
	"github.com/dusk-indust/classforge/internal/export"
	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/importer"
	"github.com/dusk-indust/classforge/internal/model"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ParseSourceInput is the input for the parse_source MCP tool.
type ParseSourceInput struct {
	Source string `json:"source" jsonschema:"Java-like source text containing one class, interface or enum"`
}

// ParseSourceOutput is the result of the parse_source MCP tool.
type ParseSourceOutput struct {
	Class   model.ClassDescriptor `json:"class"`
	Skipped []string              `json:"skipped"`
}

// GenerateSourceInput is the input for the generate_source MCP tool.
type GenerateSourceInput struct {
	NodeID string                 `json:"nodeId,omitempty" jsonschema:"id of a diagram node to regenerate, e.g. node-dog"`
	Class  *model.ClassDescriptor `json:"class,omitempty" jsonschema:"class descriptor to render; used when nodeId is empty"`
}

// GenerateSourceOutput is the result of the generate_source MCP tool.
type GenerateSourceOutput struct {
	Source string `json:"source"`
}

// ImportSourceInput is the input for the import_source MCP tool.
type ImportSourceInput struct {
	Name   string `json:"name,omitempty" jsonschema:"file name used in logs and errors"`
	Source string `json:"source" jsonschema:"source text to parse and merge into the diagram"`
}

// ImportSourceOutput is the result of the import_source MCP tool.
type ImportSourceOutput struct {
	Import importer.Result `json:"import"`
}

// ImportDirectoryInput is the input for the import_directory MCP tool.
type ImportDirectoryInput struct {
	Path string `json:"path" jsonschema:"absolute path of a directory to scan for .java files"`
}

// ImportDirectoryOutput is the result of the import_directory MCP tool.
type ImportDirectoryOutput struct {
	Result importer.DirResult `json:"result"`
}

// ValidateConnectionInput is the input for the validate_connection MCP tool.
// Endpoints are given either as stereotypes or as node ids.
type ValidateConnectionInput struct {
	Kind         string `json:"kind" jsonschema:"inheritance, implementation, association, aggregation, composition or dependency"`
	Source       string `json:"source,omitempty" jsonschema:"source stereotype: class, abstract, interface, enum or note"`
	Target       string `json:"target,omitempty" jsonschema:"target stereotype"`
	SourceNodeID string `json:"sourceNodeId,omitempty" jsonschema:"node id whose stereotype is used as the source"`
	TargetNodeID string `json:"targetNodeId,omitempty" jsonschema:"node id whose stereotype is used as the target"`
}

// ValidateConnectionOutput is the result of the validate_connection MCP tool.
type ValidateConnectionOutput struct {
	Valid  bool   `json:"valid"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// GetDiagramInput is the input for the get_diagram MCP tool.
type GetDiagramInput struct{}

// GetDiagramOutput is the result of the get_diagram MCP tool.
type GetDiagramOutput struct {
	Diagram export.DiagramExport `json:"diagram"`
}

// ExportMermaidInput is the input for the export_mermaid MCP tool.
type ExportMermaidInput struct{}

// ExportMermaidOutput is the result of the export_mermaid MCP tool.
type ExportMermaidOutput struct {
	Mermaid string `json:"mermaid"`
}

// ExportSourcesInput is the input for the export_sources MCP tool.
type ExportSourcesInput struct{}

// ExportSourcesOutput is the result of the export_sources MCP tool.
type ExportSourcesOutput struct {
	Files []export.SourceFile `json:"files"`
}

// QueryClassesInput is the input for the query_classes MCP tool.
type QueryClassesInput struct {
	Query string `json:"query" jsonschema:"search query for class names (substring match)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryClassesOutput is the result of the query_classes MCP tool.
type QueryClassesOutput struct {
	Classes []graph.Node `json:"classes"`
	Total   int          `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"node id of the class, e.g. node-dog"`
	Direction string `json:"direction,omitempty" jsonschema:"dependencies (what it refers to) or dependents (what refers to it). Default: dependencies"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedNodes []string `json:"changedNodes" jsonschema:"node ids of the classes that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}
