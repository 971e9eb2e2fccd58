// Package javasrc converts between Java-like source text and the structural
// class model. Parsing is regex driven and lenient: it recognises a single
// top-level class, interface or enum and drops member declarations it cannot
// classify instead of failing.
package javasrc

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/dusk-indust/classforge/internal/model"
	"github.com/dusk-indust/classforge/internal/typeinfo"
)

// ErrNoDeclaration is returned when the source contains no class, interface
// or enum declaration.
var ErrNoDeclaration = errors.New("no class, interface or enum declaration found")

const (
	identPattern = `[A-Za-z_$][\w$]*`
	typePattern  = `[A-Za-z_$][\w$.]*(?:\s*<[\w$.,?\s<>\[\]&]*>)?(?:\s*\[\s*\])*`
)

var (
	declarationRe = regexp.MustCompile(
		`\b((?:(?:public|protected|private|abstract|final|static|sealed|strictfp)\s+)*)` +
			`(class|interface|enum)\s+(` + identPattern + `)\s*(<[^{]*?>)?` +
			`(?:\s+extends\s+([^{]+?))?(?:\s+implements\s+([^{]+?))?\s*(?:\{|$)`)

	attributeRe = regexp.MustCompile(
		`^((?:(?:public|private|protected|static|final|transient|volatile)\s+)*)` +
			`(` + typePattern + `)\s+(` + identPattern + `)\s*(\[\s*\])?\s*(?:=[\s\S]*)?$`)

	methodRe = regexp.MustCompile(
		`^((?:(?:public|private|protected|static|final|abstract|synchronized|native|default|strictfp)\s+)*)` +
			`(?:<[^()]*?>\s*)?(` + typePattern + `)\s+(` + identPattern + `)\s*\(([^()]*)\)` +
			`\s*(?:throws\s+[\w$.,\s<>]+)?$`)

	enumConstantRe = regexp.MustCompile(`^(` + identPattern + `)\s*(?:\([^()]*\))?$`)

	leadingAnnotationsRe = regexp.MustCompile(`^(?:@[\w$.]+\s*(?:\([^()]*\))?\s*)+`)
)

// reservedTypeWords can never stand in the type position of a member. A match
// that puts one of them there is a constructor or a statement, not a member.
var reservedTypeWords = map[string]struct{}{
	"public": {}, "private": {}, "protected": {}, "static": {}, "final": {},
	"abstract": {}, "synchronized": {}, "native": {}, "default": {},
	"strictfp": {}, "transient": {}, "volatile": {}, "return": {}, "new": {},
	"throw": {}, "else": {}, "package": {}, "import": {}, "case": {},
	"class": {}, "interface": {}, "enum": {}, "extends": {}, "implements": {},
}

// ParseResult is a parsed declaration plus the member snippets that matched
// neither the attribute nor the method shape.
type ParseResult struct {
	Class   model.ClassDescriptor
	Skipped []string
}

// Parser extracts a ClassDescriptor from source text. The zero value is not
// usable; construct one with NewParser.
type Parser struct {
	locator BodyLocator
}

// Option configures a Parser.
type Option func(*Parser)

// WithBodyLocator replaces the default SpanLocator.
func WithBodyLocator(l BodyLocator) Option {
	return func(p *Parser) {
		if l != nil {
			p.locator = l
		}
	}
}

// NewParser returns a Parser using SpanLocator unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{locator: SpanLocator{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse extracts the first class, interface or enum declaration in source
// using the default parser.
func Parse(source string) (model.ClassDescriptor, error) {
	return defaultParser.Parse(source)
}

// Parse extracts the first class, interface or enum declaration in source.
func (p *Parser) Parse(source string) (model.ClassDescriptor, error) {
	res, err := p.ParseDetailed(source)
	if err != nil {
		return model.ClassDescriptor{}, err
	}
	return res.Class, nil
}

// ParseDetailed is Parse plus the list of skipped member snippets.
func (p *Parser) ParseDetailed(source string) (*ParseResult, error) {
	cleaned := StripComments(source)

	loc := declarationRe.FindStringSubmatchIndex(cleaned)
	if loc == nil {
		return nil, ErrNoDeclaration
	}
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return strings.TrimSpace(cleaned[loc[2*n]:loc[2*n+1]])
	}

	modifiers := strings.Fields(group(1))
	keyword := group(2)

	res := &ParseResult{
		Class: model.ClassDescriptor{
			Name:       group(3),
			Stereotype: stereotypeOf(keyword, modifiers),
			Generics:   group(4),
			Interfaces: []string{},
			Attributes: []model.AttributeDescriptor{},
			Methods:    []model.MethodDescriptor{},
		},
	}
	cls := &res.Class

	if extends := model.SplitTopLevel(group(5), ','); len(extends) > 0 {
		cls.Parent = typeinfo.SimpleName(extends[0])
		for _, extra := range extends[1:] {
			res.Skipped = append(res.Skipped, "extends "+extra)
		}
	}
	for _, iface := range model.SplitTopLevel(group(6), ',') {
		cls.Interfaces = append(cls.Interfaces, typeinfo.SimpleName(iface))
	}

	body, ok := p.locator.Locate(cleaned, loc[0])
	if !ok {
		return res, nil
	}

	segments := splitMembers(body)
	if cls.Stereotype == model.StereotypeEnum {
		constants, used := enumConstants(segments)
		cls.EnumConstants = constants
		segments = segments[used:]
	}

	for _, seg := range segments {
		text := strings.TrimSpace(leadingAnnotationsRe.ReplaceAllString(seg.text, ""))
		if text == "" || (seg.block && text == "static") {
			// Instance or static initializer block.
			continue
		}
		if !seg.block {
			if attr, ok := parseAttribute(text); ok {
				if cls.Stereotype.IsInterface() {
					res.Skipped = append(res.Skipped, text)
					continue
				}
				cls.Attributes = append(cls.Attributes, attr)
				continue
			}
		}
		if m, ok := parseMethod(text); ok {
			cls.Methods = append(cls.Methods, m)
			continue
		}
		res.Skipped = append(res.Skipped, text)
	}

	cls.IsEntryPoint = hasEntryPoint(cls.Methods)
	return res, nil
}

func stereotypeOf(keyword string, modifiers []string) model.Stereotype {
	switch keyword {
	case "interface":
		return model.StereotypeInterface
	case "enum":
		return model.StereotypeEnum
	}
	for _, m := range modifiers {
		if m == "abstract" {
			return model.StereotypeAbstract
		}
	}
	return model.StereotypeClass
}

// enumConstants reads the constant list at the head of an enum body and
// returns the names plus the number of segments it used. A constant with a
// class body ends its own block segment, so the list runs until the first
// segment that is not a block.
func enumConstants(segments []memberSegment) ([]string, int) {
	var names []string
	for i, seg := range segments {
		var batch []string
		for _, part := range model.SplitTopLevel(seg.text, ',') {
			m := enumConstantRe.FindStringSubmatch(part)
			if m == nil {
				return names, i
			}
			batch = append(batch, m[1])
		}
		names = append(names, batch...)
		if !seg.block {
			return names, i + 1
		}
	}
	return names, len(segments)
}

func parseAttribute(text string) (model.AttributeDescriptor, bool) {
	m := attributeRe.FindStringSubmatch(text)
	if m == nil {
		return model.AttributeDescriptor{}, false
	}
	rawType := normalizeType(m[2])
	if isReserved(typeinfo.StripArray(rawType)) || isReserved(m[3]) {
		return model.AttributeDescriptor{}, false
	}
	isArray := typeinfo.IsArray(rawType) || m[4] != ""
	return model.AttributeDescriptor{
		Name:       m[3],
		Type:       typeinfo.StripArray(rawType),
		Visibility: visibilityOf(strings.Fields(m[1])),
		IsArray:    isArray,
	}, true
}

func parseMethod(text string) (model.MethodDescriptor, bool) {
	m := methodRe.FindStringSubmatch(text)
	if m == nil {
		return model.MethodDescriptor{}, false
	}
	returnType := normalizeType(m[2])
	if isReserved(typeinfo.StripArray(returnType)) || isReserved(m[3]) {
		return model.MethodDescriptor{}, false
	}
	modifiers := strings.Fields(m[1])
	return model.MethodDescriptor{
		Name:       m[3],
		ReturnType: returnType,
		Visibility: visibilityOf(modifiers),
		IsStatic:   slices.Contains(modifiers, "static"),
		Parameters: parseParameters(m[4]),
	}, true
}

// parseParameters splits a parameter list on top-level commas. The last token
// of each parameter is its name and everything before it is the type.
func parseParameters(list string) []model.Parameter {
	params := []model.Parameter{}
	for _, raw := range model.SplitTopLevel(list, ',') {
		raw = strings.TrimSpace(leadingAnnotationsRe.ReplaceAllString(raw, ""))
		fields := strings.Fields(raw)
		for len(fields) > 0 && fields[0] == "final" {
			fields = fields[1:]
		}
		if len(fields) < 2 {
			continue
		}
		name := fields[len(fields)-1]
		typ := normalizeType(strings.Join(fields[:len(fields)-1], " "))
		for strings.HasSuffix(name, "[]") {
			name = strings.TrimSuffix(name, "[]")
			typ += "[]"
		}
		params = append(params, model.Parameter{Name: name, Type: typ})
	}
	return params
}

// hasEntryPoint reports whether methods contain a static void main taking a
// String or String[] parameter.
func hasEntryPoint(methods []model.MethodDescriptor) bool {
	for _, m := range methods {
		if m.Name != "main" || !m.IsStatic || m.ReturnType != "void" {
			continue
		}
		for _, p := range m.Parameters {
			switch p.Type {
			case "String[]", "String", "String...", "java.lang.String[]", "java.lang.String":
				return true
			}
		}
	}
	return false
}

func visibilityOf(modifiers []string) model.Visibility {
	for _, m := range modifiers {
		switch m {
		case "public", "private", "protected":
			return model.VisibilityFromKeyword(m)
		}
	}
	return model.VisibilityPackage
}

// normalizeType collapses whitespace around array markers and generic
// brackets so "Map< String,Dog >" and "int []" read as written in source
// convention.
func normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), " ")
	t = strings.ReplaceAll(t, " [", "[")
	t = strings.ReplaceAll(t, "[ ", "[")
	t = strings.ReplaceAll(t, " ]", "]")
	t = strings.ReplaceAll(t, " <", "<")
	t = strings.ReplaceAll(t, "< ", "<")
	t = strings.ReplaceAll(t, " >", ">")
	t = strings.ReplaceAll(t, ",", ", ")
	t = strings.ReplaceAll(t, ",  ", ", ")
	return t
}

func isReserved(word string) bool {
	_, ok := reservedTypeWords[word]
	return ok
}
