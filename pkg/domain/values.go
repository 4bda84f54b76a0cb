package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Values is a free-form JSON object (game settings, player attributes).
// Integral numbers are always held as int so that a decoded snapshot compares
// equal to the one that was encoded.
type Values map[string]any

// UnmarshalJSON decodes the object and normalizes nested numbers.
func (v *Values) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Values(normalizeValue(raw).(map[string]any))
	return nil
}

// Normalize returns a deep copy with nested numbers normalized.
func (v Values) Normalize() Values {
	if v == nil {
		return nil
	}
	return Values(normalizeValue(map[string]any(v)).(map[string]any))
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	return v.Normalize()
}

// Int returns the integer stored under key, or def when absent or not a number.
func (v Values) Int(key string, def int) int {
	if n, ok := NormalizeArg(v[key]).(int); ok {
		return n
	}
	return def
}

// String returns the string stored under key, or def.
func (v Values) String(key string, def string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return def
}

// Decode maps the values onto a typed struct using "json" tags.
func (v Values) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(v)); err != nil {
		return fmt.Errorf("failed to decode values: %w", err)
	}
	return nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	case Values:
		return normalizeValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return NormalizeArg(v)
	}
}
