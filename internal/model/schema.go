// Package model defines the structural description of a class as produced by
// the source parser and consumed by the generator and the diagram resolver.
package model

import "strings"

// --- Enums ---

// Stereotype is the UML classification of a type declaration.
type Stereotype string

const (
	StereotypeClass     Stereotype = "class"
	StereotypeAbstract  Stereotype = "abstract"
	StereotypeInterface Stereotype = "interface"
	StereotypeEnum      Stereotype = "enum"

	// StereotypeNote marks a free-text note on the canvas. The parser never
	// produces it; it only matters to connection validation.
	StereotypeNote Stereotype = "note"
)

// Stereotypes lists the stereotypes a parsed declaration can carry.
var Stereotypes = []Stereotype{StereotypeClass, StereotypeAbstract, StereotypeInterface, StereotypeEnum}

// IsInterface reports whether s is the interface stereotype.
func (s Stereotype) IsInterface() bool { return s == StereotypeInterface }

// Visibility is the UML visibility symbol of a member.
type Visibility string

const (
	VisibilityPublic    Visibility = "+"
	VisibilityPrivate   Visibility = "-"
	VisibilityProtected Visibility = "#"
	VisibilityPackage   Visibility = "~"
)

// Keyword returns the source keyword for v. Package visibility has no
// keyword and maps to the empty string.
func (v Visibility) Keyword() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	default:
		return ""
	}
}

// VisibilityFromKeyword maps a source keyword to its symbol. Anything other
// than public, private or protected is package visibility.
func VisibilityFromKeyword(kw string) Visibility {
	switch kw {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	case "protected":
		return VisibilityProtected
	default:
		return VisibilityPackage
	}
}

// RelationshipKind classifies diagram edges.
type RelationshipKind string

const (
	RelationshipInheritance    RelationshipKind = "inheritance"
	RelationshipImplementation RelationshipKind = "implementation"
	RelationshipAssociation    RelationshipKind = "association"
	RelationshipAggregation    RelationshipKind = "aggregation"
	RelationshipComposition    RelationshipKind = "composition"
	RelationshipDependency     RelationshipKind = "dependency"
)

// RelationshipKinds lists every edge kind in rule-table order.
var RelationshipKinds = []RelationshipKind{
	RelationshipInheritance,
	RelationshipImplementation,
	RelationshipAssociation,
	RelationshipAggregation,
	RelationshipComposition,
	RelationshipDependency,
}

// --- Models ---

// ClassDescriptor is the structural unit produced by parsing and consumed by
// generation and merging. It has no identity across parse calls.
type ClassDescriptor struct {
	Name       string     `json:"name"`
	Stereotype Stereotype `json:"stereotype"`
	// Generics is the raw type-parameter clause including the angle
	// brackets, e.g. "<T, K>". Empty when the declaration has none.
	Generics      string                `json:"generics,omitempty"`
	Parent        string                `json:"parentClass,omitempty"`
	Interfaces    []string              `json:"interfaces"`
	Attributes    []AttributeDescriptor `json:"attributes"`
	Methods       []MethodDescriptor    `json:"methods"`
	EnumConstants []string              `json:"enumConstants,omitempty"`
	IsEntryPoint  bool                  `json:"isEntryPoint"`
}

// AttributeDescriptor is a field of a class. Type never carries an array
// marker; IsArray records it instead.
type AttributeDescriptor struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Visibility Visibility `json:"visibility"`
	IsArray    bool       `json:"isArray"`
}

// MethodDescriptor is a method signature.
type MethodDescriptor struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"returnType"`
	Visibility Visibility  `json:"visibility"`
	IsStatic   bool        `json:"isStatic"`
	Parameters []Parameter `json:"parameters"`
}

// Parameter is one method parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Clone returns a deep copy of d so callers can hand it to long-lived
// structures without aliasing the slices.
func (d ClassDescriptor) Clone() ClassDescriptor {
	out := d
	out.Interfaces = append([]string{}, d.Interfaces...)
	out.Attributes = append([]AttributeDescriptor{}, d.Attributes...)
	out.EnumConstants = append([]string(nil), d.EnumConstants...)
	out.Methods = make([]MethodDescriptor, len(d.Methods))
	for i, m := range d.Methods {
		m.Parameters = append([]Parameter{}, m.Parameters...)
		out.Methods[i] = m
	}
	return out
}

// GenericParams returns the type-parameter names declared in Generics, with
// any bounds removed: "<T extends Comparable<T>, K>" yields [T K].
func (d ClassDescriptor) GenericParams() []string {
	clause := d.Generics
	if len(clause) < 2 || clause[0] != '<' || clause[len(clause)-1] != '>' {
		return nil
	}
	var names []string
	for _, part := range SplitTopLevel(clause[1:len(clause)-1], ',') {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}
