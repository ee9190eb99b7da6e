package fsout

import (
	"strings"
	"unicode/utf8"

	perr "chronosplit/internal/platform/errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// replacement stands in for anything the output encoding cannot carry
const replacement = '?'

// target is a resolved output encoding; enc is nil for UTF-8
type target struct {
	name string
	enc  encoding.Encoding
}

func resolveEncoding(name string) (target, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == "utf-8" || label == "utf8" {
		return target{name: "utf-8"}, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return target{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "fsout: unknown output encoding %q", name), "output_encoding")
	}
	canon, err := htmlindex.Name(enc)
	if err != nil {
		canon = label
	}
	canon = strings.ToLower(canon)
	switch canon {
	case "iso-2022-jp", "replacement":
		// shift states make the encoded size of a unit differ from the sum of its records
		return target{}, perr.WithField(perr.InvalidArgf("fsout: output encoding %q is stateful and not supported", name), "output_encoding")
	case "utf-8":
		return target{name: canon}, nil
	}
	return target{name: canon, enc: enc}, nil
}

// size is the number of bytes content occupies once written. Every accepted
// encoding is stateless, so size is additive over concatenated UTF-8 content
func (t target) size(content []byte) int {
	if out, err := t.strict(content); err == nil {
		return len(out)
	}
	out, err := t.lossy(content)
	if err != nil {
		return len(content)
	}
	return len(out)
}

// EncodedLen returns the on-disk size function for the named output encoding,
// or nil when content is stored as UTF-8 unchanged
func EncodedLen(encodingName string) (func([]byte) int, error) {
	tgt, err := resolveEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	if tgt.enc == nil {
		return nil, nil
	}
	return tgt.size, nil
}

// strict encodes content and fails on invalid input or unencodable runes
func (t target) strict(content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, perr.Newf(perr.ErrorCodeWriteEncoding, "fsout: content is not valid utf-8")
	}
	if t.enc == nil {
		return content, nil
	}
	out, err := t.enc.NewEncoder().Bytes(content)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeWriteEncoding, "fsout: encode %s", t.name)
	}
	return out, nil
}

// lossy repairs invalid UTF-8 and replaces unencodable runes before encoding
func (t target) lossy(content []byte) ([]byte, error) {
	if t.enc == nil {
		return []byte(strings.ToValidUTF8(string(content), string(utf8.RuneError))), nil
	}
	s := strings.ToValidUTF8(string(content), string(replacement))
	fix := runes.Map(func(r rune) rune {
		if t.encodable(r) {
			return r
		}
		return replacement
	})
	out, _, err := transform.Bytes(transform.Chain(fix, t.enc.NewEncoder()), []byte(s))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeWriteEncoding, "fsout: lossy encode %s", t.name)
	}
	return out, nil
}

// encodable tries a single rune with a fresh encoder
func (t target) encodable(r rune) bool {
	if r < utf8.RuneSelf {
		return true
	}
	_, err := t.enc.NewEncoder().String(string(r))
	return err == nil
}
