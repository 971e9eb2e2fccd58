package typeinfo

import "strings"

// canonicalTypes maps lower-cased user spellings to their source form.
var canonicalTypes = map[string]string{
	"string":  "String",
	"date":    "java.util.Date",
	"boolean": "boolean",
	"int":     "int",
	"integer": "Integer",
}

// numericTypes return 0 from a generated stub body.
var numericTypes = toSet("int", "double", "float", "long", "short", "byte")

// FormatType canonicalizes a small fixed set of type names case-insensitively
// and passes everything else through unchanged. Array suffixes survive.
func FormatType(typeName string) string {
	t := strings.TrimSpace(typeName)
	base := StripArray(t)
	suffix := t[len(base):]
	if canonical, ok := canonicalTypes[strings.ToLower(base)]; ok {
		return canonical + suffix
	}
	return t
}

// DefaultReturn returns the single statement of a generated method body for
// the given return type.
func DefaultReturn(returnType string) string {
	t := FormatType(returnType)
	switch {
	case t == "void":
		return "// TODO: implement"
	case t == "boolean":
		return "return false;"
	default:
		if _, ok := numericTypes[t]; ok {
			return "return 0;"
		}
		return "return null;"
	}
}
