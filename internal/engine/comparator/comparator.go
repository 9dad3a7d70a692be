// Package comparator computes structural diffs between nested result trees.
package comparator

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"

	"go.trai.ch/twin/internal/core/domain"
)

// Compare walks left and right in lockstep and classifies every reachable path.
//
// Maps recurse per key, sequences of equal length recurse per index, and
// sequences of unequal length yield a single "<path>.length" difference.
// Scalars are identical only when both their kind and value match, so the
// integer 1 and the string "1" differ.
func Compare(left, right domain.Value) domain.ComparisonReport {
	w := &walker{}
	w.walk("", left, right)
	return w.report()
}

type walker struct {
	identical []string
	different []string
	missing   []string
	extra     []string
}

func (w *walker) report() domain.ComparisonReport {
	r := domain.ComparisonReport{
		Identical: nonNil(w.identical),
		Different: nonNil(w.different),
		Missing:   nonNil(w.missing),
		Extra:     nonNil(w.extra),
	}
	slices.Sort(r.Identical)
	slices.Sort(r.Different)
	slices.Sort(r.Missing)
	slices.Sort(r.Extra)
	return r
}

func (w *walker) walk(path string, left, right any) {
	lm, lIsMap := asMap(left)
	rm, rIsMap := asMap(right)
	if lIsMap && rIsMap {
		w.walkMaps(path, lm, rm)
		return
	}

	ls, lIsSeq := asSeq(left)
	rs, rIsSeq := asSeq(right)
	if lIsSeq && rIsSeq {
		w.walkSeqs(path, ls, rs)
		return
	}

	if lIsMap || rIsMap || lIsSeq || rIsSeq {
		w.different = append(w.different, display(path))
		return
	}

	if scalarEqual(left, right) {
		w.identical = append(w.identical, display(path))
	} else {
		w.different = append(w.different, display(path))
	}
}

func (w *walker) walkMaps(path string, left, right map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(left)) {
		child := join(path, k)
		rv, ok := right[k]
		if !ok {
			w.missing = append(w.missing, child)
			continue
		}
		w.walk(child, left[k], rv)
	}
	for _, k := range slices.Sorted(maps.Keys(right)) {
		if _, ok := left[k]; !ok {
			w.extra = append(w.extra, join(path, k))
		}
	}
}

func (w *walker) walkSeqs(path string, left, right []any) {
	if len(left) != len(right) {
		w.different = append(w.different, join(path, "length"))
		return
	}
	for i := range left {
		w.walk(join(path, strconv.Itoa(i)), left[i], right[i])
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func display(path string) string {
	if path == "" {
		return domain.RootPath
	}
	return path
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// asMap accepts any map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSeq accepts any slice or array except byte slices, which compare as scalars.
func asSeq(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

type scalarKind int

const (
	kindOther scalarKind = iota
	kindNil
	kindBool
	kindInt
	kindFloat
	kindString
	kindBytes
)

// normalize folds Go's numeric widths into int, uint and float families.
func normalize(v any) (scalarKind, any) {
	if v == nil {
		return kindNil, nil
	}
	if b, ok := v.([]byte); ok {
		return kindBytes, string(b)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return kindBool, rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt, rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return kindInt, int64(u)
		}
		return kindInt, u
	case reflect.Float32, reflect.Float64:
		return kindFloat, rv.Float()
	case reflect.String:
		return kindString, rv.String()
	default:
		return kindOther, v
	}
}

func scalarEqual(left, right any) bool {
	lk, lv := normalize(left)
	rk, rv := normalize(right)
	if lk != rk {
		return false
	}
	if lk == kindOther {
		return reflect.DeepEqual(lv, rv)
	}
	return lv == rv
}
