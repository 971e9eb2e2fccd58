package javasrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripComments(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"line":          {"int a; // note\nint b;", "int a; \nint b;"},
		"block":         {"int /* x */a;", "int  a;"},
		"multiline":     {"a/*\n\n*/b", "a \n\nb"},
		"url in string": {`String u = "http://x"; // c`, `String u = "http://x"; `},
		"escaped quote": {`s = "a\"//b"; // c`, `s = "a\"//b"; `},
		"char slash":    {`c = '/'; // c`, `c = '/'; `},
		"unterminated":  {"x /* never closed", "x  "},
		"text block":    {"s = \"\"\"\n a \" // b\n\"\"\"; // c", "s = \"\"\"\n a \" // b\n\"\"\"; "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripComments(tc.in))
		})
	}
}

func TestSpanLocator(t *testing.T) {
	src := "public class A { int x; void f() { } } "
	body, ok := SpanLocator{}.Locate(src, 0)
	require.True(t, ok)
	assert.Equal(t, " int x; void f() { } ", body)

	_, ok = SpanLocator{}.Locate("public class A", 0)
	assert.False(t, ok)
}

func TestTreeSitterLocator(t *testing.T) {
	l := NewTreeSitterLocator()

	src := "public class A { int x; void f() { } }\nclass Trailer { int y; }\n"
	body, ok := l.Locate(src, 0)
	require.True(t, ok)
	assert.Equal(t, " int x; void f() { } ", body)

	p := NewParser(WithBodyLocator(l))
	d, err := p.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "A", d.Name)
	require.Len(t, d.Attributes, 1)
	assert.Equal(t, "x", d.Attributes[0].Name)
	require.Len(t, d.Methods, 1)

	// The span locator lets the trailing declaration bleed into the body.
	span, err := NewParser().ParseDetailed(src)
	require.NoError(t, err)
	assert.Contains(t, span.Skipped, "class Trailer")
}
