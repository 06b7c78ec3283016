package types

import (
	"encoding/json"
	"testing"
)

func TestEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"zero int", 0, true},
		{"zero float", 0.0, true},
		{"positive float", 10.0, false},
		{"empty string", "", true},
		{"string zero", "0", true},
		{"string 0.0 is not empty", "0.0", false},
		{"numeric string", "42", false},
		{"empty list", []any{}, true},
		{"empty map", map[string]any{}, true},
		{"json number zero", json.Number("0"), true},
		{"json number", json.Number("7"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Empty(tt.in); got != tt.want {
				t.Errorf("Empty(%#v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := Truthy(tt.in); got == tt.want {
				t.Errorf("Truthy(%#v) = %v, want %v", tt.in, got, !tt.want)
			}
		})
	}
}

func TestLooseZero(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"zero", 0, true},
		{"float zero", 0.0, true},
		{"nonzero", 12.0, false},
		{"empty string", "", true},
		{"non-numeric string", "abc", true},
		{"string zero", "0", true},
		{"leading number", "12abc", false},
		{"whitespace number", "  7", false},
		{"array", []any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooseZero(tt.in); got != tt.want {
				t.Errorf("LooseZero(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntVal(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{nil, 0},
		{true, 1},
		{false, 0},
		{42, 42},
		{int64(7), 7},
		{10.9, 10},
		{"15", 15},
		{"15abc", 15},
		{"abc", 0},
		{" -3", -3},
		{"2.5", 2},
		{json.Number("99"), 99},
	}
	for _, tt := range tests {
		if got := IntVal(tt.in); got != tt.want {
			t.Errorf("IntVal(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	for _, v := range []any{1, 2.5, "3", " 4 ", json.Number("5")} {
		if !IsNumeric(v) {
			t.Errorf("IsNumeric(%#v) = false, want true", v)
		}
	}
	for _, v := range []any{nil, true, "", "abc", "1a", []any{}} {
		if IsNumeric(v) {
			t.Errorf("IsNumeric(%#v) = true, want false", v)
		}
	}
}
