// Package numeric models the numeric-array values a binding hands to the
// native libraries: typed scalars and n-dimensional arrays with an element
// dtype, casting between dtypes and materialization as nested lists.
package numeric

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/mdsplus/mdsgo/errors"
)

// DType identifies the element type of a Scalar or an Array.
type DType byte

const (
	Bool    = DType(0)
	Int64   = DType(1)
	Float64 = DType(2)
	// Byte strings. Only ASCII converts to and from Str.
	Bytes = DType(3)
	// Unicode strings.
	Str = DType(4)
)

func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bytes:
		return "bytes"
	case Str:
		return "str"
	default:
		return fmt.Sprintf("dtype(%d)", byte(d))
	}
}

// Scalar is a single value tagged with its dtype. Its zero value is a false
// Bool.
type Scalar struct {
	dtype DType
	// One of bool, int64, float64, []byte, string matching dtype.
	value interface{}
}

// NewBool, NewInt, NewFloat, NewBytes and NewStr wrap a native value in a
// Scalar of the matching dtype.
func NewBool(b bool) Scalar {
	return Scalar{Bool, b}
}

func NewInt(i int64) Scalar {
	return Scalar{Int64, i}
}

func NewFloat(f float64) Scalar {
	return Scalar{Float64, f}
}

func NewBytes(b []byte) Scalar {
	return Scalar{Bytes, b}
}

func NewStr(s string) Scalar {
	return Scalar{Str, s}
}

// ScalarOf wraps a native Go value in a Scalar of the dtype that naturally
// holds it.
func ScalarOf(goval interface{}) (Scalar, error) {
	switch v := goval.(type) {
	case Scalar:
		return v, nil
	case bool:
		return NewBool(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int8:
		return NewInt(int64(v)), nil
	case int16:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint8:
		return NewInt(int64(v)), nil
	case uint16:
		return NewInt(int64(v)), nil
	case uint32:
		return NewInt(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Scalar{}, errors.Newf("%d overflows int64", v)
		}
		return NewInt(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Scalar{}, errors.Newf("%d overflows int64", v)
		}
		return NewInt(int64(v)), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case []byte:
		return NewBytes(v), nil
	case string:
		return NewStr(v), nil
	default:
		return Scalar{}, errors.Newf("Unsupported scalar type %T: %v", goval, goval)
	}
}

func (s Scalar) DType() DType {
	return s.dtype
}

// Interface returns the native Go value held by s: a bool, int64, float64,
// []byte or string.
func (s Scalar) Interface() interface{} {
	if s.value == nil {
		return false
	}
	return s.value
}

// String returns the printed form of the scalar. Booleans print as
// True/False, floats always carry a fractional part or exponent, and bytes
// outside printable ASCII are escaped as \xNN.
func (s Scalar) String() string {
	switch v := s.Interface().(type) {
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case []byte:
		return escapeBytes(v)
	case string:
		return v
	}
	return ""
}

// Astype casts s to dtype d. Casting between Bytes and Str fails for
// anything outside ASCII; casting text to a number fails when it does not
// parse.
func (s Scalar) Astype(d DType) (Scalar, error) {
	if s.dtype == d {
		return s, nil
	}
	switch v := s.Interface().(type) {
	case bool:
		var i int64
		if v {
			i = 1
		}
		switch d {
		case Int64:
			return NewInt(i), nil
		case Float64:
			return NewFloat(float64(i)), nil
		case Bytes:
			return NewBytes([]byte(s.String())), nil
		case Str:
			return NewStr(s.String()), nil
		}
	case int64:
		switch d {
		case Bool:
			return NewBool(v != 0), nil
		case Float64:
			return NewFloat(float64(v)), nil
		case Bytes:
			return NewBytes([]byte(s.String())), nil
		case Str:
			return NewStr(s.String()), nil
		}
	case float64:
		switch d {
		case Bool:
			return NewBool(v != 0), nil
		case Int64:
			if math.IsNaN(v) || math.IsInf(v, 0) ||
				v >= math.MaxInt64 || v < math.MinInt64 {
				return Scalar{}, errors.Newf("cannot cast %s to int64", s)
			}
			return NewInt(int64(v)), nil
		case Bytes:
			return NewBytes([]byte(s.String())), nil
		case Str:
			return NewStr(s.String()), nil
		}
	case []byte:
		switch d {
		case Str:
			if !isASCII(v) {
				return Scalar{}, errors.Newf(
					"cannot cast bytes %s to str: not ascii", escapeBytes(v))
			}
			return NewStr(string(v)), nil
		default:
			return parseText(string(v), d)
		}
	case string:
		switch d {
		case Bytes:
			if !isASCII([]byte(v)) {
				return Scalar{}, errors.Newf(
					"cannot cast str %q to bytes: not ascii", v)
			}
			return NewBytes([]byte(v)), nil
		default:
			return parseText(v, d)
		}
	}
	return Scalar{}, errors.Newf("cannot cast %s to %s", s.dtype, d)
}

func parseText(text string, d DType) (Scalar, error) {
	switch d {
	case Bool:
		switch text {
		case "True", "true", "1":
			return NewBool(true), nil
		case "False", "false", "0", "":
			return NewBool(false), nil
		}
	case Int64:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return NewInt(i), nil
		}
	case Float64:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return NewFloat(f), nil
		}
	}
	return Scalar{}, errors.Newf("cannot parse %q as %s", text, d)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !bytes.ContainsAny([]byte(text), ".e") {
		text += ".0"
	}
	return text
}

func escapeBytes(b []byte) string {
	buf := bytes.NewBuffer(make([]byte, 0, len(b)))
	for _, c := range b {
		if c >= 0x20 && c < utf8.RuneSelf && c != '\\' {
			buf.WriteByte(c)
		} else {
			fmt.Fprintf(buf, "\\x%02x", c)
		}
	}
	return buf.String()
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
