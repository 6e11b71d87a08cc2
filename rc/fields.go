package rc

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes one leaf of the store.
type Field struct {
	Path  string
	Type  string
	Value any
}

// Fields flattens the store into its leaves, top-level keys in insertion
// order and section members sorted. Empty sections are reported as leaves.
func (s *Store) Fields() []Field {
	var fields []Field
	for _, key := range s.keys {
		fields = append(fields, deriveFields(s.data[key], key)...)
	}
	return fields
}

func deriveFields(value any, prefix string) []Field {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []Field{{Path: prefix, Type: "section", Value: typed}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []Field
		for _, key := range keys {
			fields = append(fields, deriveFields(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []Field{{Path: prefix, Type: "[]" + elementType, Value: typed}}
	default:
		return []Field{{Path: prefix, Type: typeName(typed), Value: typed}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
