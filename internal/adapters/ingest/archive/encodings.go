package archive

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Charset is one decoding candidate
type Charset struct {
	Name string
	enc  encoding.Encoding // nil means UTF-8
	bom  bool              // only applicable when the input starts with a UTF-16 BOM
}

// UTF8 is the UTF-8 candidate; a leading BOM is dropped
var UTF8 = Charset{Name: "utf-8"}

// DefaultCharsets is the fixed cascade tried after any detector guess
func DefaultCharsets() []Charset {
	return []Charset{
		UTF8,
		{Name: "utf-16", enc: unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), bom: true},
		{Name: "shift_jis", enc: japanese.ShiftJIS},
		{Name: "euc-jp", enc: japanese.EUCJP},
		{Name: "iso-2022-jp", enc: japanese.ISO2022JP},
		{Name: "gb18030", enc: simplifiedchinese.GB18030},
		{Name: "big5", enc: traditionalchinese.Big5},
		{Name: "euc-kr", enc: korean.EUCKR},
	}
}

// names chardet reports that the WHATWG index spells differently
var charsetAliases = map[string]string{
	"gb-18030": "gb18030",
}

// LookupCharset resolves a charset label (as reported by a detector or configured by a user)
func LookupCharset(name string) (Charset, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if a, ok := charsetAliases[label]; ok {
		label = a
	}
	if label == "utf-8" || label == "utf8" {
		return UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return Charset{}, fmt.Errorf("archive: unknown charset %q: %w", name, err)
	}
	canon, err := htmlindex.Name(enc)
	if err != nil {
		canon = label
	}
	canon = strings.ToLower(canon)
	if canon == "utf-8" {
		return UTF8, nil
	}
	return Charset{Name: canon, enc: enc}, nil
}

// Encoding exposes the x/text encoding; nil for UTF-8
func (c Charset) Encoding() encoding.Encoding { return c.enc }

// applicable reports whether the candidate should be attempted for data at all
func (c Charset) applicable(data []byte) bool {
	if !c.bom {
		return true
	}
	return bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
}

// DecodeStrict decodes data and fails on any byte sequence that is invalid in this charset
func (c Charset) DecodeStrict(data []byte) (string, error) {
	if c.enc == nil {
		data = bytes.TrimPrefix(data, bomUTF8)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("archive: invalid utf-8")
		}
		return string(data), nil
	}
	if !c.applicable(data) {
		return "", fmt.Errorf("archive: %s not applicable without BOM", c.Name)
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("archive: decode %s: %w", c.Name, err)
	}
	// x/text decoders substitute U+FFFD instead of failing
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("archive: invalid %s byte sequence", c.Name)
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// DecodeLossy decodes data replacing invalid sequences with U+FFFD; it only fails on transformer errors
func (c Charset) DecodeLossy(data []byte) (string, error) {
	if c.enc == nil {
		return strings.ToValidUTF8(string(data), "\ufffd"), nil
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// stripBOM drops a leading UTF-8 or UTF-16 byte-order mark
func stripBOM(data []byte) []byte {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return data[2:]
	default:
		return data
	}
}
