// Package layering merges nested default maps, such as a command's default
// map assembled from an application file and a user defaults store.
package layering

// MergeMaps composes maps ordered from strongest to weakest, returning a new
// map that keeps keys set by stronger layers while filling any missing data
// from weaker ones. Nested map[string]any values merge recursively; a nil
// value in a stronger layer does not mask a weaker one. Inputs are never
// modified and the result shares no maps or slices with them.
func MergeMaps(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		merged = mergeInto(merged, layers[i])
	}
	return merged
}

// Clone returns a deep copy of m.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

// Lookup walks path through nested maps.
func Lookup(m map[string]any, path ...string) (any, bool) {
	var current any = m
	for _, key := range path {
		section, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = section[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func mergeInto(weak, strong map[string]any) map[string]any {
	for key, value := range strong {
		if value == nil {
			continue
		}
		strongSection, strongIsMap := value.(map[string]any)
		weakSection, weakIsMap := weak[key].(map[string]any)
		if strongIsMap && weakIsMap {
			weak[key] = mergeInto(weakSection, strongSection)
			continue
		}
		weak[key] = cloneValue(value)
	}
	return weak
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return value
	}
}
