// Package phpserial encodes and decodes the subset of PHP serialize()
// output that WordPress stores in option and meta values.
//
// Decoded arrays become []any when their keys are exactly 0..n-1 and
// map[string]any otherwise; empty arrays decode to nil. Objects decode to
// map[string]any of their properties.
package phpserial

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed serialized input.
var ErrSyntax = errors.New("phpserial: malformed input")

// Marshal serializes v. Supported types are nil, bool, Go integer and float
// types, string, []any, and map[string]any (recursively). Map keys that are
// canonical integers are written as integer keys.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("N;")
	case bool:
		if x {
			buf.WriteString("b:1;")
		} else {
			buf.WriteString("b:0;")
		}
	case int:
		fmt.Fprintf(buf, "i:%d;", x)
	case int32:
		fmt.Fprintf(buf, "i:%d;", x)
	case int64:
		fmt.Fprintf(buf, "i:%d;", x)
	case float32:
		encodeFloat(buf, float64(x))
	case float64:
		encodeFloat(buf, x)
	case string:
		fmt.Fprintf(buf, "s:%d:\"%s\";", len(x), x)
	case []any:
		fmt.Fprintf(buf, "a:%d:{", len(x))
		for i, item := range x {
			fmt.Fprintf(buf, "i:%d;", i)
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sortKeys(keys)
		fmt.Fprintf(buf, "a:%d:{", len(x))
		for _, k := range keys {
			if n, ok := intKey(k); ok {
				fmt.Fprintf(buf, "i:%d;", n)
			} else {
				fmt.Fprintf(buf, "s:%d:\"%s\";", len(k), k)
			}
			if err := encode(buf, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("phpserial: unsupported type %T", v)
	}
	return nil
}

// encodeFloat writes integral floats as PHP integers, since values that
// reach us through JSON lose the int/float distinction.
func encodeFloat(buf *bytes.Buffer, f float64) {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		fmt.Fprintf(buf, "i:%d;", int64(f))
		return
	}
	buf.WriteString("d:")
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	buf.WriteByte(';')
}

// intKey reports whether k is a key PHP would store as an integer.
func intKey(k string) (int64, bool) {
	n, err := strconv.ParseInt(k, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != k {
		return 0, false
	}
	return n, true
}

// sortKeys orders integer keys numerically ahead of string keys.
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, aok := intKey(keys[i])
		b, bok := intKey(keys[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		}
		return keys[i] < keys[j]
	})
}

// Unmarshal decodes a single serialized value.
func Unmarshal(data []byte) (any, error) {
	d := &decoder{data: data}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: trailing data at %d", ErrSyntax, d.pos)
	}
	return v, nil
}

// IsSerialized reports whether s looks like serialized data, following
// WordPress is_serialized in strict mode.
func IsSerialized(s string) bool {
	s = strings.TrimSpace(s)
	if s == "N;" {
		return true
	}
	if len(s) < 4 || s[1] != ':' {
		return false
	}
	last := s[len(s)-1]
	if last != ';' && last != '}' {
		return false
	}
	switch s[0] {
	case 's':
		return len(s) >= 2 && s[len(s)-2] == '"'
	case 'a', 'O':
		return last == '}' && isDigitRun(s[2:], ':')
	case 'b', 'i', 'd':
		return last == ';'
	}
	return false
}

func isDigitRun(s string, term byte) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == term
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d", ErrSyntax, fmt.Sprintf(format, args...), d.pos)
}

func (d *decoder) expect(b byte) error {
	if d.pos >= len(d.data) || d.data[d.pos] != b {
		return d.errorf("expected %q", b)
	}
	d.pos++
	return nil
}

// readUntil returns the bytes up to term and consumes term.
func (d *decoder) readUntil(term byte) (string, error) {
	i := bytes.IndexByte(d.data[d.pos:], term)
	if i < 0 {
		return "", d.errorf("missing %q", term)
	}
	s := string(d.data[d.pos : d.pos+i])
	d.pos += i + 1
	return s, nil
}

func (d *decoder) readInt(term byte) (int64, error) {
	s, err := d.readUntil(term)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, d.errorf("bad integer %q", s)
	}
	return n, nil
}

// readString reads a length-prefixed quoted string: <len>:"<bytes>".
func (d *decoder) readString() (string, error) {
	n, err := d.readInt(':')
	if err != nil {
		return "", err
	}
	if n < 0 || d.pos+int(n)+2 > len(d.data) {
		return "", d.errorf("string length %d out of range", n)
	}
	if err := d.expect('"'); err != nil {
		return "", err
	}
	s := string(d.data[d.pos : d.pos+int(n)])
	d.pos += int(n)
	if err := d.expect('"'); err != nil {
		return "", err
	}
	return s, nil
}

func (d *decoder) value() (any, error) {
	if d.pos+1 >= len(d.data) {
		return nil, d.errorf("unexpected end of input")
	}
	tag := d.data[d.pos]
	d.pos++
	if tag == 'N' {
		return nil, d.expect(';')
	}
	if err := d.expect(':'); err != nil {
		return nil, err
	}

	switch tag {
	case 'b':
		n, err := d.readInt(';')
		if err != nil {
			return nil, err
		}
		return n != 0, nil
	case 'i':
		return d.readInt(';')
	case 'd':
		s, err := d.readUntil(';')
		if err != nil {
			return nil, err
		}
		switch s {
		case "INF":
			return math.Inf(1), nil
		case "-INF":
			return math.Inf(-1), nil
		case "NAN":
			return math.NaN(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, d.errorf("bad float %q", s)
		}
		return f, nil
	case 's':
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return s, d.expect(';')
	case 'a':
		return d.array()
	case 'O':
		if _, err := d.readString(); err != nil {
			return nil, err
		}
		if err := d.expect(':'); err != nil {
			return nil, err
		}
		v, err := d.array()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return map[string]any{}, nil
		}
		if list, ok := v.([]any); ok {
			return listToMap(list), nil
		}
		return v, nil
	}
	return nil, d.errorf("unknown type %q", tag)
}

// array decodes <count>:{<key><value>...}.
func (d *decoder) array() (any, error) {
	n, err := d.readInt(':')
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, d.errorf("negative array length")
	}
	if err := d.expect('{'); err != nil {
		return nil, err
	}

	keys := make([]string, 0, n)
	values := make([]any, 0, n)
	sequential := true
	for i := int64(0); i < n; i++ {
		k, err := d.value()
		if err != nil {
			return nil, err
		}
		var key string
		switch kk := k.(type) {
		case int64:
			key = strconv.FormatInt(kk, 10)
			if kk != i {
				sequential = false
			}
		case string:
			key = kk
			sequential = false
		default:
			return nil, d.errorf("invalid array key type %T", k)
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	if err := d.expect('}'); err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}
	if sequential {
		return values, nil
	}
	m := make(map[string]any, n)
	for i, k := range keys {
		m[k] = values[i]
	}
	return m, nil
}

func listToMap(list []any) map[string]any {
	m := make(map[string]any, len(list))
	for i, v := range list {
		m[strconv.Itoa(i)] = v
	}
	return m
}
