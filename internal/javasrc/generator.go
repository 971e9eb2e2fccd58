package javasrc

import (
	"strings"

	"github.com/dusk-indust/classforge/internal/model"
	"github.com/dusk-indust/classforge/internal/typeinfo"
)

const indent = "    "

// Generate renders d as source text. It never fails: missing pieces render as
// defaults and an empty name becomes "Unnamed".
func Generate(d model.ClassDescriptor) string {
	var sb strings.Builder

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = "Unnamed"
	}
	isInterface := d.Stereotype.IsInterface()

	sb.WriteString("public ")
	sb.WriteString(declarationKeyword(d.Stereotype))
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(d.Generics)
	if isInterface {
		// Interfaces only extend; the parent and any interfaces share one list.
		supers := d.Interfaces
		if d.Parent != "" {
			supers = append([]string{d.Parent}, d.Interfaces...)
		}
		if len(supers) > 0 {
			sb.WriteString(" extends ")
			sb.WriteString(strings.Join(supers, ", "))
		}
	} else {
		if d.Parent != "" {
			sb.WriteString(" extends ")
			sb.WriteString(d.Parent)
		}
		if len(d.Interfaces) > 0 {
			sb.WriteString(" implements ")
			sb.WriteString(strings.Join(d.Interfaces, ", "))
		}
	}
	sb.WriteString(" {\n")

	attrs := d.Attributes
	if isInterface {
		attrs = nil
	}

	if d.Stereotype == model.StereotypeEnum {
		switch {
		case len(d.EnumConstants) > 0:
			sb.WriteString(indent + strings.Join(d.EnumConstants, ", ") + ";\n")
		case len(attrs) > 0 || len(d.Methods) > 0:
			sb.WriteString(indent + ";\n")
		}
		if len(d.EnumConstants) > 0 && (len(attrs) > 0 || len(d.Methods) > 0) {
			sb.WriteByte('\n')
		}
	}

	for _, a := range attrs {
		sb.WriteString(indent)
		writeKeyword(&sb, a.Visibility)
		sb.WriteString(typeinfo.FormatType(a.Type))
		if a.IsArray {
			sb.WriteString("[]")
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(";\n")
	}

	if len(attrs) > 0 && len(d.Methods) > 0 {
		sb.WriteByte('\n')
	}

	for _, m := range d.Methods {
		sb.WriteString(indent)
		writeKeyword(&sb, m.Visibility)
		if m.IsStatic {
			sb.WriteString("static ")
		}
		returnType := m.ReturnType
		if strings.TrimSpace(returnType) == "" {
			returnType = "void"
		}
		sb.WriteString(typeinfo.FormatType(returnType))
		sb.WriteByte(' ')
		sb.WriteString(m.Name)
		sb.WriteByte('(')
		for i, p := range m.Parameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typeinfo.FormatType(p.Type))
			sb.WriteByte(' ')
			sb.WriteString(p.Name)
		}
		sb.WriteByte(')')
		if isInterface {
			sb.WriteString(";\n")
			continue
		}
		sb.WriteString(" {\n")
		sb.WriteString(indent + indent)
		sb.WriteString(typeinfo.DefaultReturn(returnType))
		sb.WriteString("\n" + indent + "}\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

func declarationKeyword(s model.Stereotype) string {
	switch s {
	case model.StereotypeAbstract:
		return "abstract class"
	case model.StereotypeInterface:
		return "interface"
	case model.StereotypeEnum:
		return "enum"
	default:
		return "class"
	}
}

func writeKeyword(sb *strings.Builder, v model.Visibility) {
	if kw := v.Keyword(); kw != "" {
		sb.WriteString(kw)
		sb.WriteByte(' ')
	}
}
