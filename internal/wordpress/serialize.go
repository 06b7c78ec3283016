package wordpress

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/urlcoupons/internal/phpserial"
)

// maybeSerialize encodes value the way WordPress stores option values:
// scalars as plain text, arrays and objects PHP-serialized. Values are
// first normalized through JSON so struct and map types serialize as
// arrays.
func maybeSerialize(value any) (string, error) {
	generic, err := toGeneric(value)
	if err != nil {
		return "", err
	}

	switch v := generic.(type) {
	case nil:
		return "", nil
	case bool:
		if v {
			return "1", nil
		}
		return "", nil
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		// Serialized-looking strings are serialized again so they round-trip.
		if !phpserial.IsSerialized(v) {
			return v, nil
		}
	}

	data, err := phpserial.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// maybeUnserialize decodes a stored option value into dst. Serialized
// values are bridged through JSON; plain text decodes as JSON when dst is
// not a string and the text is valid JSON, and as a JSON string otherwise.
func maybeUnserialize(raw string, dst any) error {
	if dst == nil {
		return nil
	}
	if s, ok := dst.(*string); ok && !phpserial.IsSerialized(raw) {
		*s = raw
		return nil
	}
	if raw == "" {
		return nil
	}

	if phpserial.IsSerialized(raw) {
		v, err := phpserial.Unmarshal([]byte(raw))
		if err != nil {
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, dst)
	}

	if json.Valid([]byte(raw)) {
		if err := json.Unmarshal([]byte(raw), dst); err == nil {
			return nil
		}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %q: %w", raw, err)
	}
	return nil
}

func toGeneric(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
