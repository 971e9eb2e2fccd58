package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/javasrc"
)

// DiagramExport is the top-level JSON export structure.
type DiagramExport struct {
	Name       string             `json:"name"`
	ExportedAt string             `json:"exportedAt"`
	Stats      graph.DiagramStats `json:"stats"`
	Nodes      []graph.Node       `json:"nodes"`
	Edges      []graph.Edge       `json:"edges"`
}

// SourceFile is one generated source unit.
type SourceFile struct {
	Path    string `json:"path"`
	Class   string `json:"class"`
	Content string `json:"content"`
}

// ExportDiagram flattens d into id-ordered node and edge lists.
func ExportDiagram(name string, d graph.Diagram) *DiagramExport {
	return &DiagramExport{
		Name:       name,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      d.Stats(),
		Nodes:      d.SortedNodes(),
		Edges:      d.SortedEdges(),
	}
}

// ExportSources generates a source file for every imported class in d.
// Ghost placeholders and notes are skipped. Files are named after the class
// label and returned sorted by path.
func ExportSources(d graph.Diagram) []SourceFile {
	var files []SourceFile
	for _, n := range d.SortedNodes() {
		if n.Type != graph.NodeTypeClass || n.Data.Ghost {
			continue
		}
		desc, ok := graph.DescriptorFor(d, n.ID)
		if !ok {
			continue
		}
		files = append(files, SourceFile{
			Path:    desc.Name + ".java",
			Class:   desc.Name,
			Content: javasrc.Generate(desc),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// WriteSources writes files under dir, creating it when needed.
func WriteSources(dir string, files []SourceFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.Base(f.Path))
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}
