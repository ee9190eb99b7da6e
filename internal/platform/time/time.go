// Package time contains time related helpers
package time

import "strings"

// strftime directive -> Go reference layout chunk
var directives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "999999", // only meaningful right after '.' or ','
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'a': "Mon",
	'A': "Monday",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'j': "002",
	'F': "2006-01-02",
	'T': "15:04:05",
	'%': "%",
}

// Layout converts a strftime pattern such as "%Y-%m-%dT%H:%M:%S.%fZ" into a Go layout.
// A pattern without any '%' is assumed to already be a Go layout and is returned unchanged.
// ok is false when the pattern carries a directive with no Go equivalent, or literal
// text that a Go layout would read as an element (digits, Mon, PM, %b followed by "uary")
func Layout(pattern string) (layout string, ok bool) {
	if !strings.Contains(pattern, "%") {
		return pattern, true
	}
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	lit := 0 // start of the pending literal run
	for i := 0; i <= len(pattern); i++ {
		if i < len(pattern) && pattern[i] != '%' {
			continue
		}
		text := pattern[lit:i]
		if !literalSafe(text) || crosses(b.String(), text) {
			return "", false
		}
		b.WriteString(text)
		if i == len(pattern) {
			break
		}
		if i+1 >= len(pattern) {
			return "", false
		}
		i++
		chunk, known := directives[pattern[i]]
		if !known || crosses(text, chunk) {
			return "", false
		}
		b.WriteString(chunk)
		lit = i + 1
	}
	return b.String(), true
}

// referenceWords are the layout elements that can be spelled with literal text
var referenceWords = []string{"January", "Monday", "Jan", "Mon", "MST", "PM", "pm", "__2"}

// literalSafe reports whether text on its own holds no digit and no reference word
func literalSafe(text string) bool {
	for i := 0; i < len(text); i++ {
		if c := text[i]; c >= '0' && c <= '9' {
			return false
		}
	}
	for _, w := range referenceWords {
		if strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// crosses reports a reference word spanning the end of left and the start of right
func crosses(left, right string) bool {
	if left == "" || right == "" {
		return false
	}
	for _, w := range referenceWords {
		for k := 1; k < len(w); k++ {
			if strings.HasSuffix(left, w[:k]) && strings.HasPrefix(right, w[k:]) {
				return true
			}
		}
	}
	return false
}
