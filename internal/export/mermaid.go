package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/model"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]`)

// mermaidArrows maps relationship kinds to Mermaid classDiagram link syntax,
// written source-first.
var mermaidArrows = map[model.RelationshipKind]string{
	model.RelationshipInheritance:    "--|>",
	model.RelationshipImplementation: "..|>",
	model.RelationshipAssociation:    "-->",
	model.RelationshipAggregation:    "--o",
	model.RelationshipComposition:    "--*",
	model.RelationshipDependency:     "..>",
}

// GenerateMermaid renders d as a Mermaid classDiagram. Classes and edges are
// emitted in id order so the output is stable across runs.
func GenerateMermaid(d graph.Diagram) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, n := range d.SortedNodes() {
		if n.Type == graph.NodeTypeNote {
			sb.WriteString(fmt.Sprintf("  note \"%s\"\n", escapeQuotes(n.Data.Label)))
			continue
		}
		writeClass(&sb, n)
	}

	for _, e := range d.SortedEdges() {
		src, ok := d.Nodes[e.Source]
		if !ok {
			continue
		}
		tgt, ok := d.Nodes[e.Target]
		if !ok {
			continue
		}
		arrow, ok := mermaidArrows[e.Kind]
		if !ok {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(mermaidName(src.Data.Label))
		if e.Data.SourceMultiplicity != "" {
			sb.WriteString(fmt.Sprintf(" \"%s\"", e.Data.SourceMultiplicity))
		}
		sb.WriteString(" " + arrow)
		if e.Data.TargetMultiplicity != "" {
			sb.WriteString(fmt.Sprintf(" \"%s\"", e.Data.TargetMultiplicity))
		}
		sb.WriteString(" " + mermaidName(tgt.Data.Label))
		if e.Data.Label != "" {
			sb.WriteString(" : " + e.Data.Label)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, n graph.Node) {
	name := mermaidName(n.Data.Label)
	sb.WriteString("  class " + name + mermaidType(n.Data.Generics))

	annotation := stereotypeAnnotation(n.Data.Stereotype)
	if annotation == "" && len(n.Data.Attributes) == 0 && len(n.Data.Methods) == 0 && len(n.Data.EnumConstants) == 0 {
		sb.WriteByte('\n')
		return
	}

	sb.WriteString(" {\n")
	if annotation != "" {
		sb.WriteString("    <<" + annotation + ">>\n")
	}
	for _, c := range n.Data.EnumConstants {
		sb.WriteString("    " + c + "\n")
	}
	for _, a := range n.Data.Attributes {
		typ := mermaidType(a.Type)
		if a.IsArray {
			typ += "[]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s %s\n", a.Visibility, typ, a.Name))
	}
	for _, m := range n.Data.Methods {
		params := make([]string, 0, len(m.Parameters))
		for _, p := range m.Parameters {
			params = append(params, mermaidType(p.Type)+" "+p.Name)
		}
		static := ""
		if m.IsStatic {
			static = "$"
		}
		sb.WriteString(fmt.Sprintf("    %s%s(%s)%s %s\n",
			m.Visibility, m.Name, strings.Join(params, ", "), static, mermaidType(m.ReturnType)))
	}
	sb.WriteString("  }\n")
}

func stereotypeAnnotation(s model.Stereotype) string {
	switch s {
	case model.StereotypeInterface:
		return "interface"
	case model.StereotypeAbstract:
		return "abstract"
	case model.StereotypeEnum:
		return "enumeration"
	default:
		return ""
	}
}

// mermaidName turns a class label into a Mermaid identifier.
func mermaidName(label string) string {
	name := nonWord.ReplaceAllString(strings.TrimSpace(label), "_")
	if name == "" {
		return "Unnamed"
	}
	return name
}

// mermaidType rewrites generic brackets into Mermaid's tilde form:
// "Map<String, Dog>" becomes "Map~String, Dog~".
func mermaidType(t string) string {
	return strings.NewReplacer("<", "~", ">", "~").Replace(t)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
