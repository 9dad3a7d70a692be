package app

import (
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ParseArgs decodes each CLI argument as a YAML scalar or flow value, so
// `42`, `true`, `[1, 2]` and `{a: 1}` arrive typed while anything else stays a
// string. An empty argument is the empty string.
func ParseArgs(raw []string) ([]domain.Value, error) {
	args := make([]domain.Value, 0, len(raw))
	for i, s := range raw {
		if s == "" {
			args = append(args, "")
			continue
		}

		var v any
		if err := yaml.Unmarshal([]byte(s), &v); err != nil {
			return nil, zerr.With(zerr.With(domain.Tag(domain.ErrInvalidArgument, err), "argument", i), "value", s)
		}
		args = append(args, normalize(v))
	}
	return args, nil
}

// normalize converts YAML decoding artifacts into payload shapes: integers
// become int64 and maps with non-string keys are rejected later by the cache
// key encoder rather than silently stringified.
func normalize(v any) domain.Value {
	switch t := v.(type) {
	case int:
		return int64(t)
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return t
	}
}
