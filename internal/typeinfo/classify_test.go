package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseType(t *testing.T) {
	cases := map[string]string{
		"Dog":                 "Dog",
		"Dog[]":               "Dog",
		"Dog[][]":             "Dog",
		"List<Dog>":           "Dog",
		"List<Dog>[]":         "Dog",
		"Optional< Owner >":   "Owner",
		"Map<String, Dog>":    "Map<String, Dog>",
		"List<List<Dog>>":     "List<List<Dog>>",
		"String...":           "String",
		"java.util.List<Cat>": "Cat",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, BaseType(in))
		})
	}
}

func TestIsPrimitive(t *testing.T) {
	primitives := []string{
		"int", "double", "boolean", "void", "Integer", "String", "string",
		"Object", "Date", "java.util.Date", "LocalDateTime", "List<String>",
		"int[]", "Map", "BigDecimal",
	}
	for _, p := range primitives {
		assert.True(t, IsPrimitive(p), "%s should be primitive", p)
	}

	references := []string{"Dog", "Owner[]", "List<Dog>", "com.acme.Order", "T"}
	for _, r := range references {
		assert.False(t, IsPrimitive(r), "%s should be a reference type", r)
	}
}

func TestIsCollection(t *testing.T) {
	assert.True(t, IsCollection("List<Dog>"))
	assert.True(t, IsCollection("java.util.Set<Cat>"))
	assert.False(t, IsCollection("Optional<Dog>"))
	assert.False(t, IsCollection("Dog"))
}

func TestSimpleName(t *testing.T) {
	assert.Equal(t, "List", SimpleName("java.util.List<T>"))
	assert.Equal(t, "Animal", SimpleName(" Animal "))
	assert.Equal(t, "AbstractList", SimpleName("java.util.AbstractList"))
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("Dog"))
	assert.True(t, IsIdentifier("_x$1"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1abc"))
	assert.False(t, IsIdentifier("Map<String, Dog>"))
	assert.False(t, IsIdentifier("a.b"))
}

func TestIsArray(t *testing.T) {
	assert.True(t, IsArray("String[]"))
	assert.True(t, IsArray("String..."))
	assert.False(t, IsArray("String"))
}
