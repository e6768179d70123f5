package cache

import (
	"math"
	"testing"
)

// The type tag is optional and defaults to string; the tag itself is
// consumed, the remainder is the raw value.
func TestParseTagged(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Value
	}{
		{"hello", String("hello")},
		{"s|hello", String("hello")},
		{"s|", String("")},
		{"i|42", Int(42)},
		{"i|-7", Int(-7)},
		{"i|junk", Int(0)},
		{"b|true", Bool(true)},
		{"b|0", Bool(false)},
		{"b|false", Bool(false)},
		{"b|", Bool(false)},
		{"b|yes", Bool(true)},
		{"x|data", String("x|data")}, // unknown tag is part of the value
		{"i", String("i")},           // bare tag letter without '|' is a value
		{"42", String("42")},
	}
	for _, c := range cases {
		if got := ParseTagged(c.raw); got != c.want {
			t.Errorf("ParseTagged(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

// Integer coercion is total: every value maps to some int64, and coercing
// the result again is a fixed point.
func TestCoerceInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    Value
		want int64
	}{
		{Int(7), 7},
		{Bool(true), 1},
		{Bool(false), 0},
		{String("123"), 123},
		{String("-9"), -9},
		{String(""), 0},
		{String("12abc"), 0},
		{String("999999999999999999999999"), math.MaxInt64},
		{String("-999999999999999999999999"), math.MinInt64},
	}
	for _, c := range cases {
		got := CoerceInt(c.v)
		if got != c.want {
			t.Errorf("CoerceInt(%v) = %d, want %d", c.v, got, c.want)
		}
		if again := CoerceInt(Int(got)); again != got {
			t.Errorf("coercion of %v is not idempotent: %d then %d", c.v, got, again)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    Value
		want string
	}{
		{String("hi there"), "hi there"},
		{Int(-5), "-5"},
		{Bool(true), "true"},
		{Bool(false), "false"},
	}
	for _, c := range cases {
		if got := c.v.Render(); got != c.want {
			t.Errorf("Render(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSatAdd(t *testing.T) {
	t.Parallel()

	if got := SatAdd(math.MaxInt64, 1); got != math.MaxInt64 {
		t.Fatalf("overflow must saturate high, got %d", got)
	}
	if got := SatAdd(math.MinInt64, -1); got != math.MinInt64 {
		t.Fatalf("overflow must saturate low, got %d", got)
	}
	if got := SatAdd(40, 2); got != 42 {
		t.Fatalf("plain add broken: %d", got)
	}
}
