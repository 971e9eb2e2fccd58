package javasrc

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var declarationKinds = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
}

// TreeSitterLocator finds the declaration body with the tree-sitter Java
// grammar, so braces are matched exactly and trailing text after the body is
// ignored. When the grammar cannot locate a body it falls back to
// SpanLocator. A new tree-sitter parser is created per call, so the locator is
// safe for concurrent use.
type TreeSitterLocator struct {
	language *tree_sitter.Language
}

var _ BodyLocator = (*TreeSitterLocator)(nil)

// NewTreeSitterLocator loads the Java grammar.
func NewTreeSitterLocator() *TreeSitterLocator {
	return &TreeSitterLocator{
		language: tree_sitter.NewLanguage(tree_sitter_java.Language()),
	}
}

// Locate implements BodyLocator.
func (l *TreeSitterLocator) Locate(cleaned string, declStart int) (string, bool) {
	if body, ok := l.locate(cleaned, declStart); ok {
		return body, true
	}
	return SpanLocator{}.Locate(cleaned, declStart)
}

func (l *TreeSitterLocator) locate(cleaned string, declStart int) (string, bool) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(l.language); err != nil {
		return "", false
	}

	source := []byte(cleaned)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return "", false
	}
	defer tree.Close()

	decl := findDeclaration(tree.RootNode(), uint(max(declStart, 0)))
	if decl == nil {
		return "", false
	}
	body := decl.ChildByFieldName("body")
	if body == nil {
		return "", false
	}
	start, end := body.StartByte(), body.EndByte()
	if end < start+2 || end > uint(len(source)) {
		return "", false
	}
	return cleaned[start+1 : end-1], true
}

// findDeclaration returns the first class, interface or enum declaration, in
// document order, that ends after offset.
func findDeclaration(root *tree_sitter.Node, offset uint) *tree_sitter.Node {
	cursor := root.Walk()
	defer cursor.Close()

	var found *tree_sitter.Node
	var walk func()
	walk = func() {
		if found != nil {
			return
		}
		node := cursor.Node()
		if declarationKinds[node.Kind()] && node.EndByte() > offset {
			found = node
			return
		}
		if cursor.GotoFirstChild() {
			walk()
			for found == nil && cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()
	return found
}
