// Package tree holds a small tagged value tree for schema-free JSON records
//
// Design choices:
// - Objects keep member order so re-encoding a record reproduces its content layout
// - Numbers keep their source literal; nothing is ever round-tripped through float64
// - Values are immutable after Parse; accessors return copies of headers only
package tree

// Kind tags the variant held by a Value
type Kind uint8

const (
	// KindNull is JSON null (and the zero Value)
	KindNull Kind = iota
	// KindBool is true or false
	KindBool
	// KindNumber is a numeric literal
	KindNumber
	// KindString is a string
	KindString
	// KindArray is an ordered list of values
	KindArray
	// KindObject is an ordered list of key/value members
	KindObject
)

// String returns a lower-case name for the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object
type Member struct {
	Key   string
	Value Value
}

// Value is a node of the tree
type Value struct {
	kind Kind
	b    bool
	s    string // string payload or number literal
	arr  []Value
	obj  []Member
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps a numeric literal; lit is emitted verbatim on encode
func Number(lit string) Value { return Value{kind: KindNumber, s: lit} }

// Array builds an array value
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Object builds an object value; later duplicates of a key replace the earlier value in place
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = setMember(out, m.Key, m.Value)
	}
	return Value{kind: KindObject, obj: out}
}

// M is shorthand for a Member
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

func setMember(ms []Member, key string, v Value) []Member {
	for i := range ms {
		if ms[i].Key == key {
			ms[i].Value = v
			return ms
		}
	}
	return append(ms, Member{Key: key, Value: v})
}

// Kind reports the variant
func (v Value) Kind() Kind { return v.kind }

// IsObject reports whether v is an object
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsArray reports whether v is an array
func (v Value) IsArray() bool { return v.kind == KindArray }

// Str returns the string payload when v is a string
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Literal returns the scalar as text: strings raw, numbers as written, bools and null as JSON words.
// Containers return their kind name in angle brackets, which is only meant for log lines
func (v Value) Literal() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.s
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	default:
		return "<" + v.kind.String() + ">"
	}
}

// Len is the element count for arrays, member count for objects, 0 otherwise
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Get looks up key on an object
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether an object carries key
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Index returns element i of an array
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Elems returns the array elements; callers must not mutate the slice
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Members returns the object members in document order; callers must not mutate the slice
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}
