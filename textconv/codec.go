package textconv

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mdsplus/mdsgo/errors"
)

// ErrorPolicy selects what replaces bytes that cannot be decoded and code
// points that cannot be encoded. Every policy is loss-tolerant: conversion
// never fails.
type ErrorPolicy byte

const (
	// Invalid bytes become \xNN and unencodable code points \uNNNN.
	BackslashReplace = ErrorPolicy(0)
	// Invalid bytes decode to U+FFFD and unencodable code points encode
	// to '?'.
	Replace = ErrorPolicy(1)
)

// DefaultCodePage is decoded with when UTF-8 decoding fails.
const DefaultCodePage = "windows-1252"

// A decoding attempt. The first strategy returning no error wins.
type decodeStrategy func(b []byte) (string, error)

func (p ErrorPolicy) writeInvalidByte(buf *bytes.Buffer, b byte) {
	if p == Replace {
		buf.WriteRune(utf8.RuneError)
		return
	}
	fmt.Fprintf(buf, "\\x%02x", b)
}

func (p ErrorPolicy) writeUnencodable(buf *bytes.Buffer, r rune) {
	switch {
	case p == Replace:
		buf.WriteByte('?')
	case r < 0 || r > 0xffff:
		fmt.Fprintf(buf, "\\U%08x", uint32(r))
	default:
		fmt.Fprintf(buf, "\\u%04x", r)
	}
}

func (p ErrorPolicy) String() string {
	switch p {
	case BackslashReplace:
		return "backslashreplace"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("policy(%d)", byte(p))
	}
}

// Decodes b as UTF-8. Each byte that does not start a valid sequence is
// replaced according to the policy.
func (p ErrorPolicy) decodeUTF8(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(b)+8))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			p.writeInvalidByte(buf, b[0])
			b = b[1:]
			continue
		}
		buf.Write(b[:size])
		b = b[size:]
	}
	return buf.String(), nil
}

// Returns a strategy decoding single-byte text in enc. Bytes the code page
// leaves undefined are replaced according to the policy.
func (p ErrorPolicy) codePageDecoder(enc encoding.Encoding) decodeStrategy {
	if cm, ok := enc.(*charmap.Charmap); ok {
		return func(b []byte) (string, error) {
			buf := bytes.NewBuffer(make([]byte, 0, len(b)+8))
			for _, c := range b {
				r := cm.DecodeByte(c)
				if r == utf8.RuneError {
					p.writeInvalidByte(buf, c)
				} else {
					buf.WriteRune(r)
				}
			}
			return buf.String(), nil
		}
	}
	return func(b []byte) (string, error) {
		text, _, err := transform.String(enc.NewDecoder(), string(b))
		if err != nil {
			return "", errors.Wrap(err, "code page decode failed")
		}
		return text, nil
	}
}

// Looks up a code page by its WHATWG label, e.g. "windows-1252" or "cp1252".
func lookupCodePage(label string) (encoding.Encoding, error) {
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, errors.Newf("unknown code page %q", label)
	}
	return enc, nil
}

// Encodes text as UTF-8. Bytes of text that are not valid UTF-8 are
// replaced according to the policy.
func (p ErrorPolicy) encodeString(text string) []byte {
	if utf8.ValidString(text) {
		return []byte(text)
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(text)+8))
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size <= 1 {
			p.writeInvalidByte(buf, text[0])
			text = text[1:]
			continue
		}
		buf.WriteString(text[:size])
		text = text[size:]
	}
	return buf.Bytes()
}

// Encodes a code point sequence as UTF-8. Surrogates and values outside
// the Unicode range are replaced according to the policy.
func (p ErrorPolicy) encodeRunes(runes []rune) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(runes)))
	for _, r := range runes {
		if utf8.ValidRune(r) {
			buf.WriteRune(r)
		} else {
			p.writeUnencodable(buf, r)
		}
	}
	return buf.Bytes()
}

// Renders a code point sequence as text with the same replacements
// encodeRunes applies.
func (p ErrorPolicy) runesToString(runes []rune) string {
	return string(p.encodeRunes(runes))
}

func lastResortDecode(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
