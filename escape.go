package utilcss

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// EscapeSelector escapes a token so it can be used as a CSS class name.
func EscapeSelector(s string) string {
	if isPlainIdent(s) && css.IsIdent([]byte(s)) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	first := rune(-1)
	i := 0
	for _, r := range s {
		pos := i
		i++
		if pos == 0 {
			first = r
		}

		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r == ',':
			b.WriteString(`\2c `)
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f,
			pos == 0 && r >= '0' && r <= '9',
			pos == 1 && r >= '0' && r <= '9' && first == '-':
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte(' ')
		case pos == 0 && r == '-' && len(s) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToEscapedSelector turns a raw token into a class selector.
func ToEscapedSelector(raw string) string {
	return "." + EscapeSelector(raw)
}

// isPlainIdent reports whether s only holds characters that never need
// escaping and does not start like a number.
func isPlainIdent(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	if s[0] == '-' && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '-' && c != '_' && (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
