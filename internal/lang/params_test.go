package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamString(t *testing.T) {
	cases := []struct {
		param Param
		want  string
	}{
		{Param{Name: "x"}, "x"},
		{Param{Name: "x", Type: "int"}, "x: int"},
		{Param{Name: "x", Optional: true}, "x?"},
		{Param{Name: "x", HasDefault: true}, "x=..."},
		// Default outranks type and optional.
		{Param{Name: "x", Type: "int", HasDefault: true}, "x=..."},
		{Param{Name: "x", Optional: true, HasDefault: true}, "x=..."},
		// Optional outranks type.
		{Param{Name: "x", Type: "int", Optional: true}, "x?"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.param.String())
	}
}

func TestParseParam(t *testing.T) {
	cases := []struct {
		encoded string
		want    Param
	}{
		{"x", Param{Name: "x"}},
		{"x: int", Param{Name: "x", Type: "int"}},
		{"x?", Param{Name: "x", Optional: true}},
		{"x=...", Param{Name: "x", HasDefault: true}},
		{"shape: Map[str, int]", Param{Name: "shape", Type: "Map[str, int]"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseParam(tc.encoded))
	}
}

func TestParamRoundTrip(t *testing.T) {
	params := []Param{
		{Name: "a"},
		{Name: "b", Type: "str"},
		{Name: "c", Optional: true},
		{Name: "d", HasDefault: true},
	}
	assert.Equal(t, params, DecodeParams(EncodeParams(params)))
}
