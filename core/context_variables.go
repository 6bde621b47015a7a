package core

import (
	"fmt"
	"maps"
	"slices"
)

// ContextVariables maps auxiliary state names to values. The map is threaded
// through every turn and merged, never replaced, at turn boundaries.
type ContextVariables map[string]any

// String returns the variable formatted as a string, or "" if it is absent.
func (cv ContextVariables) String(key string) string {
	v, ok := cv[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Merge copies every entry of delta into cv (last writer wins per key).
// Values are deep-copied like Clone does.
func (cv ContextVariables) Merge(delta ContextVariables) {
	for k, v := range delta {
		cv[k] = cloneValue(v)
	}
}

// Clone deep-copies cv. Nested maps and slices of the JSON-like shapes
// (map[string]any, []any, map[string]string, []string) are copied
// recursively; other values are copied by assignment. Cloning nil yields an
// empty map.
func (cv ContextVariables) Clone() ContextVariables {
	out := make(ContextVariables, len(cv))
	for k, v := range cv {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case ContextVariables:
		return t.Clone()
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = cloneValue(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = cloneValue(x)
		}
		return s
	case map[string]string:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
