package archive

import (
	"path/filepath"
	"regexp"
	"strings"
)

// assignment matches a single leading variable assignment such as
// "window.YTD.tweets.part0 = ", "var data = " or "exports['x'] = "
var assignment = regexp.MustCompile(
	`^\s*(?:(?:var|let|const)\s+)?[A-Za-z_$][\w$]*(?:\s*\.\s*[A-Za-z_$][\w$]*|\[[^\]]*\])*\s*=\s*`,
)

var scriptExts = map[string]bool{".js": true, ".mjs": true, ".cjs": true}

// IsScript reports whether path carries a script-file extension
func IsScript(path string) bool {
	return scriptExts[strings.ToLower(filepath.Ext(path))]
}

// StripAssignment cuts a leading assignment prefix from text, keeping the span from the first '['
// after the prefix through the last ']'. Anything after the closing bracket (";", comments) is dropped.
// ok is false and text is returned untouched when no prefix or no bracket pair is found
func StripAssignment(text string) (string, bool) {
	body := strings.TrimPrefix(text, "\ufeff")
	loc := assignment.FindStringIndex(body)
	if loc == nil {
		return text, false
	}
	rest := body[loc[1]:]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return text, false
	}
	end := strings.LastIndexByte(rest, ']')
	if end < open {
		return text, false
	}
	return rest[open : end+1], true
}

// bracketSpan returns the substring from the first '[' through the last ']'
func bracketSpan(text string) (string, bool) {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, ']')
	if end < open {
		return "", false
	}
	return text[open : end+1], true
}
