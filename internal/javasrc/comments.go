package javasrc

import "strings"

// StripComments removes // line comments and /* */ block comments from src.
// String, text block and character literals are copied verbatim so
// "http://x" survives. Newlines inside block comments are kept so line
// structure is preserved.
func StripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))

	const (
		code = iota
		lineComment
		blockComment
		stringLit
		charLit
	)
	state := code

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				i++
				sb.WriteByte(' ')
			case strings.HasPrefix(src[i:], textBlockQuote):
				end := skipTextBlock(src, i)
				sb.WriteString(src[i:end])
				i = end - 1
			case c == '"':
				state = stringLit
				sb.WriteByte(c)
			case c == '\'':
				state = charLit
				sb.WriteByte(c)
			default:
				sb.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				sb.WriteByte(c)
			}
		case blockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = code
				i++
			} else if c == '\n' {
				sb.WriteByte(c)
			}
		case stringLit, charLit:
			sb.WriteByte(c)
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				sb.WriteByte(src[i])
			case c == quote, c == '\n':
				state = code
			}
		}
	}
	return sb.String()
}
