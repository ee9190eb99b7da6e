package tree

import "unicode/utf8"

const hexDigits = "0123456789abcdef"

// AppendCompact appends the compact encoding of v to dst.
// Separators carry no spaces and non-ASCII text is written as raw UTF-8.
// Only '"', '\\' and control bytes below 0x20 are escaped, so the output is byte-stable
// for a given tree and its length is the exact on-disk size
func AppendCompact(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.s...)
	case KindString:
		return appendString(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, e := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendCompact(dst, e)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i, m := range v.obj {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, m.Key)
			dst = append(dst, ':')
			dst = AppendCompact(dst, m.Value)
		}
		return append(dst, '}')
	}
	return dst
}

// Marshal returns the compact encoding of v
func Marshal(v Value) []byte { return AppendCompact(nil, v) }

// MarshalArray encodes vs as one compact array without building an intermediate Value
func MarshalArray(vs []Value) []byte {
	dst := []byte{'['}
	for i, v := range vs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = AppendCompact(dst, v)
	}
	return append(dst, ']')
}

// Size is len(Marshal(v))
func Size(v Value) int { return len(AppendCompact(nil, v)) }

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			i++
			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			i++
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		i++
		start = i
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
