package batch

import (
	"strings"

	"chronosplit/internal/core/tree"
)

// Sizer defines one output format's exact byte accounting.
// For any records, the stored size of Encode(records) is
// Empty() + sum of present Measure sizes + Sep() * (present count - 1)
type Sizer interface {
	// Empty is the byte size of a unit holding no records
	Empty() int
	// Measure is one record's contribution; present=false contributes nothing, not even a separator
	Measure(rec tree.Value) (n int, present bool)
	// Sep is the byte size of the separator between two present records
	Sep() int
	// Encode renders records as the unit's content
	Encode(recs []tree.Value) []byte
	// Ext is the file extension for units of this format
	Ext() string
}

// ByteLen is the stored length of UTF-8 content after output encoding.
// It must be additive over concatenation; nil means content is stored as UTF-8
type ByteLen func(content []byte) int

func (l ByteLen) of(b []byte) int {
	if l == nil {
		return len(b)
	}
	return l(b)
}

var (
	jsonEmpty = []byte("[]")
	jsonSep   = []byte(",")
	lineSep   = []byte("\n")
)

// JSONSizer accounts for a compact JSON array of the records
type JSONSizer struct {
	Len ByteLen
}

// Empty is the stored size of "[]"
func (s JSONSizer) Empty() int { return s.Len.of(jsonEmpty) }

// Measure is the stored size of the compact encoding
func (s JSONSizer) Measure(rec tree.Value) (int, bool) {
	if s.Len == nil {
		return tree.Size(rec), true
	}
	return s.Len(tree.Marshal(rec)), true
}

// Sep is the stored size of one comma
func (s JSONSizer) Sep() int { return s.Len.of(jsonSep) }

// Encode writes the compact array
func (JSONSizer) Encode(recs []tree.Value) []byte { return tree.MarshalArray(recs) }

// Ext implements Sizer
func (JSONSizer) Ext() string { return "json" }

// Renderer projects a record to one line of text
type Renderer interface {
	Render(rec tree.Value) (string, bool)
}

// TextSizer accounts for newline-joined rendered lines. Records without text are skipped
type TextSizer struct {
	R   Renderer
	Len ByteLen
}

// Empty is zero; an empty text unit has no bytes
func (TextSizer) Empty() int { return 0 }

// Measure is the rendered line length
func (s TextSizer) Measure(rec tree.Value) (int, bool) {
	line, ok := s.R.Render(rec)
	if !ok {
		return 0, false
	}
	if s.Len == nil {
		return len(line), true
	}
	return s.Len([]byte(line)), true
}

// Sep is the stored size of one newline
func (s TextSizer) Sep() int { return s.Len.of(lineSep) }

// Encode joins the rendered lines with '\n', no trailing newline
func (s TextSizer) Encode(recs []tree.Value) []byte {
	var b strings.Builder
	n := 0
	for _, r := range recs {
		line, ok := s.R.Render(r)
		if !ok {
			continue
		}
		if n > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		n++
	}
	return []byte(b.String())
}

// Ext implements Sizer
func (TextSizer) Ext() string { return "txt" }
