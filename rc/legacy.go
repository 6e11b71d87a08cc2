package rc

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// isLegacy reports whether data is a JSON object, the format user defaults
// were stored in before TOML.
func isLegacy(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !gjson.ValidBytes(trimmed) {
		return false
	}
	return gjson.ParseBytes(trimmed).IsObject()
}

// importLegacy assigns every top-level member in document order. Dotted
// member names create sections, as they would through Set.
func (s *Store) importLegacy(data []byte) error {
	var err error
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		converted, ok := legacyValue(value)
		if !ok {
			return true
		}
		err = s.assign(key.String(), converted)
		return err == nil
	})
	return err
}

// legacyValue converts a JSON value; nulls have no TOML form and are skipped.
func legacyValue(value gjson.Result) (any, bool) {
	switch value.Type {
	case gjson.Null:
		return nil, false
	case gjson.False:
		return false, true
	case gjson.True:
		return true, true
	case gjson.String:
		return value.String(), true
	case gjson.Number:
		if !strings.ContainsAny(value.Raw, ".eE") {
			return value.Int(), true
		}
		return value.Float(), true
	}

	if value.IsArray() {
		items := value.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			if converted, ok := legacyValue(item); ok {
				out = append(out, converted)
			}
		}
		return out, true
	}
	if value.IsObject() {
		out := map[string]any{}
		value.ForEach(func(key, member gjson.Result) bool {
			if converted, ok := legacyValue(member); ok {
				out[key.String()] = converted
			}
			return true
		})
		return out, true
	}
	return nil, false
}
