package pgn

import (
	"regexp"
	"strings"
)

var (
	nagPattern          = regexp.MustCompile(`\$\d+`)
	continuationPattern = regexp.MustCompile(`\b\d+\.\.\.`)
	glyphPattern        = regexp.MustCompile(`([a-hNBRQKO1-8#+])[!?]+`)
)

// CleanMoveText reduces PGN move text to the main line. Brace and semicolon
// comments, parenthesized variations, NAGs, move-quality glyphs and black
// continuation numbers ("12...") are removed and whitespace is collapsed.
func CleanMoveText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				i = len(text)
			} else {
				i += end
			}
			b.WriteByte(' ')
		case c == ';':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				i = len(text)
			} else {
				i += end
			}
			b.WriteByte(' ')
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				b.WriteByte(' ')
			}
		case depth > 0:
		default:
			b.WriteByte(c)
		}
	}

	out := nagPattern.ReplaceAllString(b.String(), " ")
	out = continuationPattern.ReplaceAllString(out, " ")
	out = glyphPattern.ReplaceAllString(out, "$1")
	return strings.Join(strings.Fields(out), " ")
}
