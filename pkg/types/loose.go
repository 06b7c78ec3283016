package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record values come from PHP arrays, so the helpers below reproduce the
// PHP 7 rules for empty(), truthiness, intval() and loose comparison with 0.

// Empty reports whether v is empty: nil, false, 0, 0.0, "", "0", or an
// empty array or map.
func Empty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == "" || x == "0"
	case json.Number:
		return x == "" || x == "0"
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	case URLRecord:
		return len(x) == 0
	}
	if f, ok := toFloat(v); ok {
		return f == 0
	}
	return false
}

// Truthy is the PHP boolean conversion of v.
func Truthy(v any) bool {
	return !Empty(v)
}

// LooseZero reports whether 0 == v under PHP 7 loose comparison. Strings
// compare by their leading numeric prefix, so "" and "abc" equal 0.
func LooseZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return leadingNumber(x) == 0
	case json.Number:
		return leadingNumber(string(x)) == 0
	case []any, map[string]any, URLRecord:
		return false
	}
	if f, ok := toFloat(v); ok {
		return f == 0
	}
	return false
}

// IntVal converts v to an integer the way PHP intval does.
func IntVal(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return truncate(leadingNumber(x))
	case json.Number:
		return truncate(leadingNumber(string(x)))
	}
	if f, ok := toFloat(v); ok {
		return truncate(f)
	}
	return 0
}

// IsNumeric reports whether v is a number or a numeric string.
func IsNumeric(v any) bool {
	switch x := v.(type) {
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil && strings.TrimSpace(x) != ""
	case json.Number:
		_, err := x.Float64()
		return err == nil
	case bool, nil:
		return false
	}
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// leadingNumber parses the longest numeric prefix of s, ignoring leading
// whitespace. A string without one is 0.
func leadingNumber(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
		}
		if frac > end+1 || digits > 0 {
			digits += frac - end - 1
			end = frac
		}
	}
	if digits == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}
