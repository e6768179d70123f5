package cache

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind selects the live variant of a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Tag returns the one-letter wire tag for the kind.
func (k Kind) Tag() byte {
	switch k {
	case KindInt:
		return 'i'
	case KindBool:
		return 'b'
	default:
		return 's'
	}
}

// Value is a tagged union of the three storable types.
// Exactly one of Str/Int/Bool is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
	Bool bool
}

// String wraps s as a string-typed value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int wraps i as an integer-typed value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Bool wraps b as a boolean-typed value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ParseTagged interprets a raw wire value with an optional one-letter type
// tag prefix ("s|", "i|", "b|"). A missing tag defaults to string.
// The remainder after the '|' is coerced into the tagged type.
func ParseTagged(raw string) Value {
	if len(raw) >= 2 && raw[1] == '|' {
		switch raw[0] {
		case 's':
			return String(raw[2:])
		case 'i':
			return Int(CoerceInt(String(raw[2:])))
		case 'b':
			return Bool(coerceBool(raw[2:]))
		}
	}
	return String(raw)
}

// CoerceInt converts any value to a signed 64-bit integer.
// The coercion is total: non-numeric strings become 0, out-of-range
// numerals saturate at the int64 bounds, booleans map to 0/1.
func CoerceInt(v Value) int64 {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	default:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		// On ErrRange ParseInt already returned the saturated bound.
		return n
	}
}

// coerceBool mirrors the truthiness rules of the wire protocol:
// "", "0" and "false" are false, anything else is true.
func coerceBool(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "false":
		return false
	}
	return true
}

// Render formats the value as a single reply token.
func (v Value) Render() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Str
	}
}

// SatAdd adds b to a, saturating at the int64 bounds instead of wrapping.
func SatAdd(a, b int64) int64 {
	s := a + b
	if a > 0 && b > 0 && s < 0 {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && s >= 0 {
		return math.MinInt64
	}
	return s
}
