package util

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriceEquivalentForms(t *testing.T) {
	for _, v := range []any{"1,234.50", "$1234.50", 1234.5, "$ 1,234.50", json.Number("1234.5"), "USD 1234.50"} {
		got, ok := ParsePrice(v)
		assert.True(t, ok, "%#v", v)
		assert.Equal(t, int64(1235), got, "%#v", v)
	}
}

func TestParsePriceThreeDecimals(t *testing.T) {
	for _, v := range []any{"$2.999", "2.999", 2.999, json.Number("2.999"), "2.999 USD"} {
		got, ok := ParsePrice(v)
		assert.True(t, ok, "%#v", v)
		assert.Equal(t, int64(3), got, "%#v", v)
	}

	got, ok := ParsePrice("1.234")
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)
}

func TestParsePriceLargestValue(t *testing.T) {
	got, ok := ParsePrice(int64(1) << 52)
	assert.True(t, ok)
	assert.Equal(t, int64(1)<<52, got)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{name: "dollar", input: "$25.00", want: 25, ok: true},
		{name: "grouped comma", input: "1,000", want: 1000, ok: true},
		{name: "int cell", input: 1000, want: 1000, ok: true},
		{name: "int64 cell", input: int64(42), want: 42, ok: true},
		{name: "euro grouped dot", input: "€1.234,50", want: 1235, ok: true},
		{name: "single dot is decimal", input: "1.000", want: 1, ok: true},
		{name: "dot grouped millions", input: "1.234.567", want: 1234567, ok: true},
		{name: "dot grouped with decimal comma", input: "1.234,4", want: 1234, ok: true},
		{name: "three decimals", input: "0.125", want: 0, ok: true},
		{name: "decimal comma", input: "12,5", want: 13, ok: true},
		{name: "space grouped", input: "1 000", want: 1000, ok: true},
		{name: "nbsp grouped", input: "1\u00a0000 L.L.", want: 1000, ok: true},
		{name: "half rounds up", input: 2.5, want: 3, ok: true},
		{name: "below half", input: "19.49", want: 19, ok: true},
		{name: "zero", input: "0", want: 0, ok: true},
		{name: "text", input: "abc", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "blank", input: "   ", ok: false},
		{name: "nil", input: nil, ok: false},
		{name: "negative string", input: "-5", ok: false},
		{name: "negative float", input: -0.7, ok: false},
		{name: "mixed", input: "12abc", ok: false},
		{name: "hex", input: "0x10", ok: false},
		{name: "inf text", input: "inf", ok: false},
		{name: "nan float", input: math.NaN(), ok: false},
		{name: "bool", input: true, ok: false},
		{name: "huge float", input: 1e30, ok: false},
		{name: "twenty digits", input: "99999999999999999999", ok: false},
		{name: "two to the 63", input: float64(1 << 63), ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParsePrice(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
