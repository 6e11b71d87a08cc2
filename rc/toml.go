package rc

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
)

func decode(data []byte) ([]string, map[string]any, error) {
	values := map[string]any{}
	md, err := toml.Decode(string(data), &values)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(values))
	keys := make([]string, 0, len(values))
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		top := key[0]
		if _, ok := values[top]; !ok {
			continue
		}
		if _, dup := seen[top]; dup {
			continue
		}
		seen[top] = struct{}{}
		keys = append(keys, top)
	}
	if len(keys) < len(values) {
		var rest []string
		for key := range values {
			if _, ok := seen[key]; !ok {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		keys = append(keys, rest...)
	}
	return keys, values, nil
}

func (s *Store) encode() ([]byte, error) {
	var (
		buf    bytes.Buffer
		tables []string
	)
	for _, key := range s.keys {
		if isTable(s.data[key]) {
			tables = append(tables, key)
			continue
		}
		if err := encodeKey(&buf, key, s.data[key]); err != nil {
			return nil, err
		}
	}
	for _, key := range tables {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		if err := encodeKey(&buf, key, s.data[key]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeKey(w io.Writer, key string, value any) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		return fmt.Errorf("rc: encode `%s': %w", key, err)
	}
	return nil
}

func isTable(value any) bool {
	switch value.(type) {
	case map[string]any, []map[string]any:
		return true
	default:
		return false
	}
}

// ParseValue interprets text as a single TOML value ("true", "42", "[1, 2]",
// "2022-02-02"), falling back to text itself.
func ParseValue(text string) any {
	var doc map[string]any
	if _, err := toml.Decode("v = "+text, &doc); err != nil || len(doc) != 1 {
		return text
	}
	if value, ok := doc["v"]; ok {
		return value
	}
	return text
}

// FormatValue renders value the way it would appear on the right-hand side of
// a TOML assignment, or as a table when it is a section.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{"v": value}); err != nil {
		return fmt.Sprint(value)
	}
	_, rendered, _ := bytes.Cut(bytes.TrimRight(buf.Bytes(), "\n"), []byte(" = "))
	return string(rendered)
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
