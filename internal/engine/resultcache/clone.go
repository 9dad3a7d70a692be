package resultcache

import "go.trai.ch/twin/internal/core/domain"

// Clone returns a deep copy of the maps and slices of a decoded payload.
// Stored entries are cloned on the way in and on the way out, so callers
// can modify what they receive without touching the cache.
func Clone(v domain.Value) domain.Value {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	default:
		return v
	}
}
