package comparator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/engine/comparator"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		left  any
		right any
		want  domain.ComparisonReport
	}{
		{
			name:  "flat maps",
			left:  map[string]any{"a": 1, "b": 2},
			right: map[string]any{"a": 1, "b": 3},
			want:  report([]string{"a"}, []string{"b"}, nil, nil),
		},
		{
			name:  "nested maps",
			left:  map[string]any{"a": map[string]any{"b": 1, "c": 2}},
			right: map[string]any{"a": map[string]any{"b": 1, "c": 3}},
			want:  report([]string{"a.b"}, []string{"a.c"}, nil, nil),
		},
		{
			name:  "sequence length mismatch",
			left:  map[string]any{"items": []any{1, 2, 3}},
			right: map[string]any{"items": []any{1, 2}},
			want:  report(nil, []string{"items.length"}, nil, nil),
		},
		{
			name:  "sequence of maps",
			left:  map[string]any{"items": []any{map[string]any{"id": 1}, map[string]any{"id": 2}}},
			right: map[string]any{"items": []any{map[string]any{"id": 1}, map[string]any{"id": 9}}},
			want:  report([]string{"items.0.id"}, []string{"items.1.id"}, nil, nil),
		},
		{
			name:  "missing and extra keys",
			left:  map[string]any{"a": 1, "gone": true},
			right: map[string]any{"a": 1, "new": false},
			want:  report([]string{"a"}, nil, []string{"gone"}, []string{"new"}),
		},
		{
			name:  "missing subtree reports its root only",
			left:  map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}},
			right: map[string]any{"a": map[string]any{}},
			want:  report(nil, nil, []string{"a.b"}, nil),
		},
		{
			name:  "integer versus string",
			left:  map[string]any{"n": 1},
			right: map[string]any{"n": "1"},
			want:  report(nil, []string{"n"}, nil, nil),
		},
		{
			name:  "integer versus float",
			left:  map[string]any{"n": 1},
			right: map[string]any{"n": 1.0},
			want:  report(nil, []string{"n"}, nil, nil),
		},
		{
			name:  "integer widths are normalized",
			left:  map[string]any{"n": int64(7), "u": uint8(3)},
			right: map[string]any{"n": 7, "u": int32(3)},
			want:  report([]string{"n", "u"}, nil, nil, nil),
		},
		{
			name:  "map versus sequence",
			left:  map[string]any{"x": map[string]any{"0": 1}},
			right: map[string]any{"x": []any{1}},
			want:  report(nil, []string{"x"}, nil, nil),
		},
		{
			name:  "scalar roots",
			left:  "same",
			right: "same",
			want:  report([]string{domain.RootPath}, nil, nil, nil),
		},
		{
			name:  "differing scalar roots",
			left:  true,
			right: false,
			want:  report(nil, []string{domain.RootPath}, nil, nil),
		},
		{
			name:  "nil roots",
			left:  nil,
			right: nil,
			want:  report([]string{domain.RootPath}, nil, nil, nil),
		},
		{
			name:  "empty containers contribute no paths",
			left:  map[string]any{"m": map[string]any{}, "s": []any{}},
			right: map[string]any{"m": map[string]any{}, "s": []any{}},
			want:  report(nil, nil, nil, nil),
		},
		{
			name:  "typed containers",
			left:  map[string]int{"a": 1},
			right: map[string]any{"a": []string{"x"}},
			want:  report(nil, []string{"a"}, nil, nil),
		},
		{
			name:  "typed slices",
			left:  []string{"a", "b"},
			right: []any{"a", "c"},
			want:  report([]string{"0"}, []string{"1"}, nil, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, comparator.Compare(tt.left, tt.right))
		})
	}
}

func TestCompare_PathsAreExclusive(t *testing.T) {
	left := map[string]any{
		"id":    42,
		"title": "twin",
		"tags":  []any{"a", "b"},
		"meta": map[string]any{
			"score":  0.75,
			"source": "original",
			"nested": map[string]any{"x": 1, "y": []any{1, 2}},
		},
		"only_left": nil,
	}
	right := map[string]any{
		"id":    42,
		"title": "Twin",
		"tags":  []any{"a"},
		"meta": map[string]any{
			"score":  0.75,
			"source": []any{"candidate"},
			"nested": map[string]any{"x": 1, "y": []any{1, 3}, "z": true},
		},
		"only_right": 1,
	}

	r := comparator.Compare(left, right)

	seen := make(map[string]string)
	for name, paths := range map[string][]string{
		"identical": r.Identical,
		"different": r.Different,
		"missing":   r.Missing,
		"extra":     r.Extra,
	} {
		for _, p := range paths {
			prev, dup := seen[p]
			require.Falsef(t, dup, "path %q classified as both %s and %s", p, prev, name)
			seen[p] = name
		}
	}

	assert.Equal(t, []string{"id", "meta.nested.x", "meta.nested.y.0", "meta.score"}, r.Identical)
	assert.Equal(t, []string{"meta.nested.y.1", "meta.source", "tags.length", "title"}, r.Different)
	assert.Equal(t, []string{"only_left"}, r.Missing)
	assert.Equal(t, []string{"meta.nested.z", "only_right"}, r.Extra)
	assert.False(t, r.Matches())
}

func TestCompare_SwappingSidesSwapsMissingAndExtra(t *testing.T) {
	left := map[string]any{"a": 1, "b": 2}
	right := map[string]any{"b": 2, "c": 3}

	forward := comparator.Compare(left, right)
	backward := comparator.Compare(right, left)

	assert.Equal(t, forward.Missing, backward.Extra)
	assert.Equal(t, forward.Extra, backward.Missing)
	assert.Equal(t, forward.Identical, backward.Identical)
}

func TestSummarize(t *testing.T) {
	r := comparator.Compare(
		map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": []any{1, 2}}, "e": "x"},
		map[string]any{"a": 1, "b": map[string]any{"c": 3, "d": []any{1}}, "f": true},
	)

	g := goldie.New(t)
	g.Assert(t, "summarize_mixed", []byte(comparator.Summarize(r)))
}

func TestSummarizeParallel(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		payload := map[string]any{"count": 2, "items": []any{"x", "y"}}
		candidate := domain.Succeeded(domain.Candidate, payload, 750*time.Millisecond)
		candidate.Cached = true

		p := domain.ParallelResult{
			Original:  domain.Succeeded(domain.Original, payload, 1500*time.Millisecond),
			Candidate: candidate,
		}

		g := goldie.New(t)
		g.Assert(t, "parallel_match", []byte(comparator.SummarizeParallel(p)))
	})

	t.Run("failure", func(t *testing.T) {
		p := domain.ParallelResult{
			Original: domain.OperationResult{
				Identity: domain.Original,
				Failure:  domain.NewFailure(errors.New("connection refused"), ""),
			},
			Candidate: domain.Succeeded(domain.Candidate, 1, time.Second),
		}

		g := goldie.New(t)
		g.Assert(t, "parallel_failure", []byte(comparator.SummarizeParallel(p)))
	})
}

func report(identical, different, missing, extra []string) domain.ComparisonReport {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return domain.ComparisonReport{
		Identical: orEmpty(identical),
		Different: orEmpty(different),
		Missing:   orEmpty(missing),
		Extra:     orEmpty(extra),
	}
}
