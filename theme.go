package utilcss

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
)

// Theme is a nested map of design tokens (colors, breakpoints, spacing).
type Theme map[string]any

// Lookup walks a dotted path, e.g. "colors.red.500".
func (t Theme) Lookup(path string) (any, bool) {
	var cur any = map[string]any(t)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String looks up path and formats scalar values as text.
func (t Theme) String(path string) (string, bool) {
	v, ok := t.Lookup(path)
	if !ok {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case int, int64, float64, bool:
		return fmt.Sprint(v), true
	}
	return "", false
}

// Map returns the nested map at path.
func (t Theme) Map(path string) (map[string]any, bool) {
	v, ok := t.Lookup(path)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Theme:
		return map[string]any(m), true
	}
	return nil, false
}

// deepCopy copies nested maps and slices so a merge never mutates a preset.
func deepCopy(v any) any {
	switch v := v.(type) {
	case Theme:
		return map[string]any(deepCopyMap(v))
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = deepCopy(v[i])
		}
		return out
	}
	return v
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

// mergeThemes deep merges themes left to right, later values override.
func mergeThemes(themes ...Theme) (Theme, error) {
	dst := map[string]any{}
	for _, t := range themes {
		if len(t) == 0 {
			continue
		}
		src := deepCopyMap(t)
		if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge theme: %w", err)
		}
	}
	return Theme(dst), nil
}
