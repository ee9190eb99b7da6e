package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize removes runes that have no place in a display line:
// - NUL (0x00)
// - ASCII controls except '\n' and '\t'
// - DEL (0x7F)
// - C1 controls U+0080..U+009F
// It also drops invalid UTF-8 bytes.
// Fast path returns s unchanged when no cleaning is needed
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	n := len(s)
	i := 0

	// Fast path: scan until first "bad" byte/rune
	for i < n {
		b := s[i]
		if b < 0x20 {
			if keepControl(b) {
				i++
				continue
			}
			break
		}
		if b == 0x7F {
			break
		}
		if b < 0x80 {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		if isC1(r) {
			break
		}
		i += size
	}
	if i == n {
		return s
	}

	// Slow path: keep the clean prefix, filter the rest
	var bldr strings.Builder
	bldr.Grow(n)
	bldr.WriteString(s[:i])

	for i < n {
		c := s[i]
		switch {
		case c < 0x20:
			if keepControl(c) {
				bldr.WriteByte(c)
			}
			i++
			continue
		case c == 0x7F:
			i++
			continue
		case c < 0x80:
			bldr.WriteByte(c)
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if !isC1(r) {
			bldr.WriteString(s[i : i+size])
		}
		i += size
	}

	return bldr.String()
}

func keepControl(b byte) bool { return b == '\n' || b == '\t' }

func isC1(r rune) bool { return r >= 0x80 && r <= 0x9F }
