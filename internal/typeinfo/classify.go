// Package typeinfo classifies textual type names as built-in or user-defined
// and formats them for source generation. All lookup tables are read-only.
package typeinfo

import (
	"strings"
	"unicode"
)

// builtinTypes is the closed set of names treated as primitive for the
// purpose of association detection, keyed in lower case.
var builtinTypes = toSet(
	// language primitives
	"int", "long", "short", "byte", "float", "double", "char", "boolean", "void",
	// boxed wrappers
	"integer", "character", "number",
	// core library
	"string", "object", "charsequence", "stringbuilder",
	"bigdecimal", "biginteger", "uuid",
	// date and time
	"date", "calendar", "instant", "duration", "localdate", "localtime",
	"localdatetime", "zoneddatetime", "offsetdatetime", "timestamp",
	// collections
	"list", "arraylist", "linkedlist", "set", "hashset", "treeset",
	"map", "hashmap", "treemap", "linkedhashmap", "collection", "iterable",
	"queue", "deque", "optional", "stream",
)

// collectionTypes are the wrappers whose element type implies a to-many
// relationship.
var collectionTypes = toSet(
	"list", "arraylist", "linkedlist", "set", "hashset", "treeset",
	"collection", "iterable", "queue", "deque", "stream",
)

func toSet(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// IsPrimitive reports whether typeName, after unwrapping with BaseType, is a
// built-in or common library type. Any other name is taken to reference a
// user-defined class.
func IsPrimitive(typeName string) bool {
	base := SimpleName(BaseType(typeName))
	_, ok := builtinTypes[strings.ToLower(base)]
	return ok
}

// BaseType strips trailing array markers and unwraps a single-level generic:
// "List<Dog>[]" yields "Dog". Nested or multi-argument generics are returned
// with only the array markers removed.
func BaseType(typeName string) string {
	t := StripArray(typeName)
	open := strings.IndexByte(t, '<')
	if open < 0 || !strings.HasSuffix(t, ">") {
		return t
	}
	inner := strings.TrimSpace(t[open+1 : len(t)-1])
	if inner == "" || strings.ContainsAny(inner, "<>,") {
		return t
	}
	return StripArray(inner)
}

// StripArray removes every trailing "[]" (and "..." varargs) from typeName.
func StripArray(typeName string) string {
	t := strings.TrimSpace(typeName)
	for {
		switch {
		case strings.HasSuffix(t, "[]"):
			t = strings.TrimSpace(t[:len(t)-2])
		case strings.HasSuffix(t, "..."):
			t = strings.TrimSpace(t[:len(t)-3])
		default:
			return t
		}
	}
}

// IsArray reports whether typeName carries an array or varargs marker.
func IsArray(typeName string) bool {
	return StripArray(typeName) != strings.TrimSpace(typeName)
}

// IsCollection reports whether typeName is a single-level collection wrapper
// such as List<Dog>.
func IsCollection(typeName string) bool {
	t := StripArray(typeName)
	open := strings.IndexByte(t, '<')
	if open <= 0 {
		return false
	}
	_, ok := collectionTypes[strings.ToLower(SimpleName(t[:open]))]
	return ok
}

// SimpleName drops any package qualifier and generic arguments:
// "java.util.List<T>" yields "List".
func SimpleName(typeName string) string {
	t := strings.TrimSpace(typeName)
	if open := strings.IndexByte(t, '<'); open >= 0 {
		t = strings.TrimSpace(t[:open])
	}
	if dot := strings.LastIndexByte(t, '.'); dot >= 0 {
		t = t[dot+1:]
	}
	return t
}

// IsIdentifier reports whether s is a single Java-style identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
