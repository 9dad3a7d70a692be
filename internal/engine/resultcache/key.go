package resultcache

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxDepth bounds argument nesting so self-referencing values are rejected.
const maxDepth = 64

// Type tags written ahead of every encoded value.
const (
	tagNil    byte = 'n'
	tagFalse  byte = 'f'
	tagTrue   byte = 't'
	tagInt    byte = 'i'
	tagUint   byte = 'u'
	tagFloat  byte = 'd'
	tagString byte = 's'
	tagBytes  byte = 'y'
	tagList   byte = 'l'
	tagMap    byte = 'm'
)

// Key derives the cache key of a call signature.
//
// Arguments are encoded with a type tag per value and map keys in sorted
// order, so logically identical calls hash identically regardless of map
// iteration order or integer width. Values that have no canonical encoding
// (functions, channels, pointers, structs, maps with non-string keys) are
// rejected with domain.ErrNotCacheable. The type and operation names are
// length-prefixed, so names containing the separator cannot collide.
func Key(typeName, operation string, args []domain.Value) (string, error) {
	h := xxhash.New()
	for i, arg := range args {
		if err := encode(h, arg, 0); err != nil {
			return "", zerr.With(err, "argument", i)
		}
	}
	return fmt.Sprintf("%d:%s|%d:%s|%016x", len(typeName), typeName, len(operation), operation, h.Sum64()), nil
}

func encode(h *xxhash.Digest, v any, depth int) error {
	if depth > maxDepth {
		return domain.Annotate(domain.ErrNotCacheable, "reason", "nesting too deep")
	}

	switch t := v.(type) {
	case nil:
		_, _ = h.Write([]byte{tagNil})
		return nil
	case string:
		writeString(h, tagString, t)
		return nil
	case []byte:
		writeString(h, tagBytes, string(t))
		return nil
	case bool:
		if t {
			_, _ = h.Write([]byte{tagTrue})
		} else {
			_, _ = h.Write([]byte{tagFalse})
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint(h, tagInt, uint64(rv.Int())) //nolint:gosec // Bit pattern is hashed, not interpreted
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			writeUint(h, tagInt, u)
		} else {
			writeUint(h, tagUint, u)
		}
		return nil
	case reflect.Float32, reflect.Float64:
		writeUint(h, tagFloat, math.Float64bits(rv.Float()))
		return nil
	case reflect.String:
		writeString(h, tagString, rv.String())
		return nil
	case reflect.Bool:
		if rv.Bool() {
			_, _ = h.Write([]byte{tagTrue})
		} else {
			_, _ = h.Write([]byte{tagFalse})
		}
		return nil
	case reflect.Slice, reflect.Array:
		writeUint(h, tagList, uint64(rv.Len())) //nolint:gosec // Lengths are non-negative
		for i := range rv.Len() {
			if err := encode(h, rv.Index(i).Interface(), depth+1); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return domain.Annotate(domain.ErrNotCacheable, "type", rv.Type().String())
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		})
		writeUint(h, tagMap, uint64(len(keys)))
		for _, k := range keys {
			writeString(h, tagString, k.String())
			if err := encode(h, rv.MapIndex(k).Interface(), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return domain.Annotate(domain.ErrNotCacheable, "type", fmt.Sprintf("%T", v))
	}
}

func writeUint(h *xxhash.Digest, tag byte, u uint64) {
	var buf [9]byte
	buf[0] = tag
	binary.LittleEndian.PutUint64(buf[1:], u)
	_, _ = h.Write(buf[:])
}

func writeString(h *xxhash.Digest, tag byte, s string) {
	writeUint(h, tag, uint64(len(s)))
	_, _ = h.WriteString(s)
}
