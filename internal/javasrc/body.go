package javasrc

import "strings"

// BodyLocator finds the declaration body in comment-free source. Locate
// returns the text between the body's braces, excluding the braces, and false
// when no body exists. declStart is the offset at which the declaration
// header begins.
type BodyLocator interface {
	Locate(cleaned string, declStart int) (string, bool)
}

// SpanLocator takes the body as everything between the first '{' after the
// header and the last '}' in the text. Brace balance is not tracked, so a
// nested type would bleed into the outer body; nested types are unsupported.
type SpanLocator struct{}

var _ BodyLocator = SpanLocator{}

// Locate implements BodyLocator.
func (SpanLocator) Locate(cleaned string, declStart int) (string, bool) {
	if declStart < 0 || declStart > len(cleaned) {
		declStart = 0
	}
	rel := strings.IndexByte(cleaned[declStart:], '{')
	if rel < 0 {
		return "", false
	}
	open := declStart + rel
	closing := strings.LastIndexByte(cleaned, '}')
	if closing <= open {
		return cleaned[open+1:], true
	}
	return cleaned[open+1 : closing], true
}

// memberSegment is one depth-0 member declaration inside a body. Nested
// blocks have already been collapsed to "{}" and are not part of text.
type memberSegment struct {
	text string
	// block is true when the segment ended at a brace block (a method body
	// or initializer) rather than at ';'.
	block bool
	// terminated is false for trailing text with neither ';' nor a block.
	terminated bool
}

// splitMembers scans a declaration body and cuts it into member segments.
// Everything nested inside braces is skipped, so statements in method bodies
// never look like members. A brace block that follows an '=' belongs to an
// initializer and does not end the segment.
func splitMembers(body string) []memberSegment {
	var segments []memberSegment
	var cur strings.Builder

	flush := func(block, terminated bool) {
		segments = append(segments, memberSegment{
			text:       strings.TrimSpace(cur.String()),
			block:      block,
			terminated: terminated,
		})
		cur.Reset()
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '"', '\'':
			end := skipLiteral(body, i)
			cur.WriteString(body[i:end])
			i = end - 1
		case '{':
			end := skipBlock(body, i)
			if hasAssignment(cur.String()) {
				cur.WriteString("{}")
			} else {
				flush(true, true)
			}
			i = end - 1
		case '}':
			// Stray closer at depth 0: treat as a boundary.
			if strings.TrimSpace(cur.String()) != "" {
				flush(false, false)
			}
			cur.Reset()
		case ';':
			flush(false, true)
		default:
			cur.WriteByte(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		flush(false, false)
	}
	return segments
}

// hasAssignment reports whether s contains an '=' outside parentheses and
// literals. Annotation arguments such as @Get(path = "/x") do not count.
func hasAssignment(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipLiteral(s, i) - 1
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// skipBlock returns the offset just past the brace block opening at start.
// An unbalanced block runs to the end of s.
func skipBlock(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipLiteral(s, i) - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// skipLiteral returns the offset just past the string, text block or char
// literal that opens at start.
func skipLiteral(s string, start int) int {
	if strings.HasPrefix(s[start:], textBlockQuote) {
		return skipTextBlock(s, start)
	}
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote, '\n':
			return i + 1
		}
	}
	return len(s)
}

const textBlockQuote = `"""`

// skipTextBlock returns the offset just past the """ text block opening at
// start. An unclosed block runs to the end of s.
func skipTextBlock(s string, start int) int {
	for i := start + len(textBlockQuote); i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++
		case strings.HasPrefix(s[i:], textBlockQuote):
			return i + len(textBlockQuote)
		}
	}
	return len(s)
}
