// Package normalize projects a record onto one line of clean display text
// Pipeline order
// 1 Unwrap through the wrapper key, pick full_text over text
// 2 Unicode NFKC normalization
// 3 Line and paragraph breaks to spaces
// 4 Collapse whitespace to single spaces and trim
// 5 Drop control characters (Sanitize)
// 6 Drop pictographs and emoji modifiers
// 7 Collapse whitespace again
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"chronosplit/internal/core/tree"
	pstr "chronosplit/internal/platform/strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options selects where the text lives in a record
type Options struct {
	// WrapperKey is unwrapped first when present
	WrapperKey string
	// TextKeys are tried in order; only string values count
	TextKeys []string
}

// DefaultOptions prefers the untruncated text field
func DefaultOptions() Options {
	return Options{WrapperKey: "tweet", TextKeys: []string{"full_text", "text"}}
}

// Renderer is concurrency safe; transformers come from pools
type Renderer struct {
	opt Options
}

// pool of fresh NFKC + line-break chains
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKC, runes.Map(breakToSpace))
	},
}

// pool of pictograph removers
var stripPool = sync.Pool{
	New: func() any { return runes.Remove(runes.In(pictographs)) },
}

// New constructs a Renderer; empty fields take DefaultOptions
func New(opt Options) *Renderer {
	def := DefaultOptions()
	if opt.WrapperKey == "" {
		opt.WrapperKey = def.WrapperKey
	}
	opt.TextKeys = pstr.IfEmpty(opt.TextKeys, def.TextKeys)
	return &Renderer{opt: opt}
}

// Render returns the record's display line. ok is false when the record has no
// text field or the text normalizes to nothing
func (r *Renderer) Render(rec tree.Value) (string, bool) {
	if inner, ok := rec.Get(r.opt.WrapperKey); ok {
		rec = inner
	}
	for _, k := range r.opt.TextKeys {
		v, ok := rec.Get(k)
		if !ok {
			continue
		}
		s, isStr := v.Str()
		if !isStr {
			continue
		}
		line := Text(s)
		return line, line != ""
	}
	return "", false
}

// Text runs steps 2-7 of the pipeline on s
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	fold := foldPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(fold, s)
	fold.Reset()
	foldPool.Put(fold)

	ns = collapseSpaces(ns)
	ns = Sanitize(ns)

	strip := stripPool.Get().(transform.Transformer)
	ns, _, _ = transform.String(strip, ns)
	strip.Reset()
	stripPool.Put(strip)

	return collapseSpaces(ns)
}

// breakToSpace maps every line-break code point to an ASCII space
func breakToSpace(r rune) rune {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return ' '
	}
	return r
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
