// Package textconv normalizes string-like values before they cross a
// foreign function boundary.
//
// A value is text (string), binary ([]byte), native unicode ([]rune), a
// numeric.Scalar, a *numeric.Array, a sequence of such values, or anything
// else. Sequences are List, Tuple, []interface{} and every other slice or
// array type, except that slices and arrays of bytes or runes count as
// binary and native unicode. ToText, ToBinary and ToUnicode convert every
// leaf of a value to the requested representation and rebuild containers
// with their original concrete type; a typed sequence whose element type
// cannot hold the converted leaves, such as a []string converted to
// binary, becomes a []interface{} of the same length. Conversions never
// fail: undecodable bytes and unencodable code points are replaced
// according to the converter's ErrorPolicy.
package textconv

import (
	"fmt"
	"reflect"

	"github.com/mdsplus/mdsgo/numeric"
)

// List is a growable ordered sequence.
type List []interface{}

// Tuple is a fixed-size ordered sequence. Conversions keep tuples as
// tuples and lists as lists.
type Tuple []interface{}

// Options configures a Converter. The zero value selects BackslashReplace
// and the Windows-1252 fallback code page.
type Options struct {
	// Replacement applied to undecodable bytes and unencodable code points.
	Errors ErrorPolicy

	// WHATWG label of the single-byte code page tried when UTF-8 decoding
	// fails. Defaults to DefaultCodePage.
	FallbackCodePage string
}

// Converter holds the resolved conversion configuration. It is immutable
// and safe for concurrent use.
type Converter struct {
	policy   ErrorPolicy
	decoders []decodeStrategy
}

// NewConverter resolves opts into a Converter. An unknown fallback code
// page falls back to Windows-1252.
func NewConverter(opts Options) *Converter {
	label := opts.FallbackCodePage
	if label == "" {
		label = DefaultCodePage
	}
	enc, err := lookupCodePage(label)
	if err != nil {
		enc, _ = lookupCodePage(DefaultCodePage)
	}
	return &Converter{
		policy: opts.Errors,
		decoders: []decodeStrategy{
			opts.Errors.decodeUTF8,
			opts.Errors.codePageDecoder(enc),
		},
	}
}

var defaultConverter = NewConverter(Options{})

// ToText converts v with the default converter. See Converter.ToText.
func ToText(v interface{}) interface{} {
	return defaultConverter.ToText(v)
}

// ToBinary converts v with the default converter. See Converter.ToBinary.
func ToBinary(v interface{}) interface{} {
	return defaultConverter.ToBinary(v)
}

// ToUnicode converts v with the default converter. See Converter.ToUnicode.
func ToUnicode(v interface{}) interface{} {
	return defaultConverter.ToUnicode(v)
}

// Decode converts b to text with the default converter.
func Decode(b []byte) string {
	return defaultConverter.Decode(b)
}

// Encode converts text to UTF-8 bytes with the default converter.
func Encode(text string) []byte {
	return defaultConverter.Encode(text)
}

// ToText converts every leaf of v to a string.
func (c *Converter) ToText(v interface{}) interface{} {
	return c.convert(v, textTarget)
}

// ToBinary converts every leaf of v to UTF-8 encoded []byte.
func (c *Converter) ToBinary(v interface{}) interface{} {
	return c.convert(v, binaryTarget)
}

// ToUnicode converts every leaf of v to a []rune.
func (c *Converter) ToUnicode(v interface{}) interface{} {
	return c.convert(v, unicodeTarget)
}

// Decode tries UTF-8 first and then the fallback code page.
func (c *Converter) Decode(b []byte) string {
	for _, decode := range c.decoders {
		if text, err := decode(b); err == nil {
			return text
		}
	}
	return lastResortDecode(b)
}

// Encode converts text to UTF-8.
func (c *Converter) Encode(text string) []byte {
	return c.policy.encodeString(text)
}

// target describes one of the three canonical representations.
type target struct {
	name string
	// dtype numeric values are cast to before conversion.
	interop numeric.DType
	// Reports whether v already is the representation.
	is func(v interface{}) bool
	// Converts a string, []byte or []rune.
	fromTextual func(c *Converter, v interface{}) interface{}
}

var textTarget = &target{
	name:    "text",
	interop: numeric.Str,
	is: func(v interface{}) bool {
		_, ok := v.(string)
		return ok
	},
	fromTextual: func(c *Converter, v interface{}) interface{} {
		return c.decodeTextual(v)
	},
}

var binaryTarget = &target{
	name:    "binary",
	interop: numeric.Bytes,
	is: func(v interface{}) bool {
		_, ok := v.([]byte)
		return ok
	},
	fromTextual: func(c *Converter, v interface{}) interface{} {
		return c.encodeTextual(v)
	},
}

var unicodeTarget = &target{
	name:    "unicode",
	interop: numeric.Str,
	is: func(v interface{}) bool {
		_, ok := v.([]rune)
		return ok
	},
	fromTextual: func(c *Converter, v interface{}) interface{} {
		return []rune(c.decodeTextual(v))
	},
}

func (c *Converter) decodeTextual(v interface{}) string {
	switch s := v.(type) {
	case string:
		return c.Decode([]byte(s))
	case []byte:
		return c.Decode(s)
	case []rune:
		return c.policy.runesToString(s)
	}
	return fmt.Sprint(v)
}

func (c *Converter) encodeTextual(v interface{}) []byte {
	switch s := v.(type) {
	case string:
		return c.policy.encodeString(s)
	case []byte:
		return s
	case []rune:
		return c.policy.encodeRunes(s)
	}
	return c.policy.encodeString(fmt.Sprint(v))
}

func (c *Converter) convert(v interface{}, t *target) interface{} {
	if t.is(v) {
		return v
	}

	switch s := v.(type) {
	case numeric.Scalar:
		return c.convertScalar(s, t)
	case *numeric.Scalar:
		if s == nil {
			break
		}
		return c.convertScalar(*s, t)
	case string, []byte, []rune:
		return t.fromTextual(c, s)
	case *numeric.Array:
		if s == nil {
			break
		}
		if cast, err := s.Astype(t.interop); err == nil {
			return c.convert(cast.ToList(), t)
		}
		return c.convert(s.ToList(), t)
	case List:
		if s == nil {
			return s
		}
		return List(c.convertAll(s, t))
	case Tuple:
		if s == nil {
			return s
		}
		return Tuple(c.convertAll(s, t))
	case []interface{}:
		if s == nil {
			return s
		}
		return c.convertAll(s, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		switch rv.Type().Elem().Kind() {
		case reflect.Uint8:
			return t.fromTextual(c, bytesOf(rv))
		case reflect.Int32:
			return t.fromTextual(c, runesOf(rv))
		}
		return c.convertSequence(rv, t)
	}
	return t.fromTextual(c, fmt.Sprint(v))
}

func (c *Converter) convertScalar(s numeric.Scalar, t *target) interface{} {
	if cast, err := s.Astype(t.interop); err == nil {
		return t.fromTextual(c, cast.Interface())
	}
	return t.fromTextual(c, s.String())
}

// Rebuilds a typed slice or array with the same type when every converted
// element fits its element type, and as a []interface{} otherwise.
func (c *Converter) convertSequence(rv reflect.Value, t *target) interface{} {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return rv.Interface()
	}

	elemType := rv.Type().Elem()
	items := make([]interface{}, rv.Len())
	fits := true
	for i := range items {
		items[i] = c.convert(rv.Index(i).Interface(), t)
		if items[i] == nil || !reflect.TypeOf(items[i]).AssignableTo(elemType) {
			fits = false
		}
	}
	if !fits {
		return items
	}

	var rebuilt reflect.Value
	if rv.Kind() == reflect.Array {
		rebuilt = reflect.New(rv.Type()).Elem()
	} else {
		rebuilt = reflect.MakeSlice(rv.Type(), len(items), len(items))
	}
	for i, item := range items {
		rebuilt.Index(i).Set(reflect.ValueOf(item))
	}
	return rebuilt.Interface()
}

func bytesOf(rv reflect.Value) []byte {
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b
}

func runesOf(rv reflect.Value) []rune {
	r := make([]rune, rv.Len())
	for i := range r {
		r[i] = rune(rv.Index(i).Int())
	}
	return r
}

func (c *Converter) convertAll(items []interface{}, t *target) []interface{} {
	converted := make([]interface{}, len(items))
	for i, item := range items {
		converted[i] = c.convert(item, t)
	}
	return converted
}
