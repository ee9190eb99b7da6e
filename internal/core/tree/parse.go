package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxDepth bounds array and object nesting, the same limit encoding/json applies
const MaxDepth = 10000

var (
	// ErrTrailingData is returned when bytes other than whitespace follow the document
	ErrTrailingData = errors.New("tree: trailing data after document")
	// ErrTooDeep is returned when nesting exceeds MaxDepth
	ErrTooDeep = fmt.Errorf("tree: document nested deeper than %d", MaxDepth)
)

// Parse decodes one JSON document into a Value, preserving object member order
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, ErrTrailingData
		}
		return Value{}, err
	}
	return v, nil
}

// ParseString is Parse over a string payload
func ParseString(s string) (Value, error) { return Parse([]byte(s)) }

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		default:
			return Value{}, fmt.Errorf("tree: unexpected delimiter %q", rune(t))
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(string(t)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("tree: unexpected token %T", tok)
	}
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	elems := make([]Value, 0)
	for dec.More() {
		e, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, e)
	}
	if _, err := dec.Token(); err != nil { // closing ]
		return Value{}, err
	}
	return Value{kind: KindArray, arr: elems}, nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	members := make([]Member, 0)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := kt.(string)
		if !ok {
			return Value{}, fmt.Errorf("tree: object key is %T, want string", kt)
		}
		v, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		members = setMember(members, key, v)
	}
	if _, err := dec.Token(); err != nil { // closing }
		return Value{}, err
	}
	return Value{kind: KindObject, obj: members}, nil
}
