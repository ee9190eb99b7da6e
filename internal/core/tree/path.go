package tree

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key builds an object key segment
func Key(k string) Segment { return Segment{Key: k} }

// Idx builds an array index segment
func Idx(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path is a resolved access path into a Value
type Path []Segment

// KeyPath builds a path of object keys
func KeyPath(keys ...string) Path {
	p := make(Path, len(keys))
	for i, k := range keys {
		p[i] = Key(k)
	}
	return p
}

// Child returns a copy of p extended with seg; p itself is never aliased
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path as a.b[0].c
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// Resolve walks p from v. A step that hits the wrong kind or a missing key reports false
func (p Path) Resolve(v Value) (Value, bool) {
	cur := v
	for _, s := range p {
		var ok bool
		if s.IsIndex {
			cur, ok = cur.Index(s.Index)
		} else {
			cur, ok = cur.Get(s.Key)
		}
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}
