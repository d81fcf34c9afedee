package payment

import (
	"strings"
	"unicode/utf8"
)

// SanitizeComment prepares a gift comment for storage: supplementary-plane
// runes (emoji and friends) are dropped and every line break becomes a single
// space. "\r\n" counts as one break.
func SanitizeComment(comment string) string {
	var b strings.Builder
	b.Grow(len(comment))

	for i := 0; i < len(comment); {
		r, size := utf8.DecodeRuneInString(comment[i:])
		switch {
		case r == '\r':
			b.WriteByte(' ')
			if i+size < len(comment) && comment[i+size] == '\n' {
				i += 1
			}
		case r == '\n':
			b.WriteByte(' ')
		case r > 0xFFFF:
			// outside the basic multilingual plane, dropped
		default:
			b.WriteRune(r)
		}
		i += size
	}

	return b.String()
}
