package resultcache_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/engine/resultcache"
)

func TestCache_TTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := resultcache.New(time.Hour, resultcache.WithClock(func() time.Time { return now }))

	c.Put("k", map[string]any{"v": 1})

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"v": 1}, got)

	now = now.Add(time.Hour)
	_, ok = c.Get("k")
	assert.True(t, ok, "an entry exactly ttl old is still fresh")

	now = now.Add(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries are evicted lazily")
}

func TestCache_ExpiresWithRealTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := resultcache.New(time.Minute)
		c.Put("k", "v")

		time.Sleep(30 * time.Second)
		got, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", got)

		time.Sleep(31 * time.Second)
		_, ok = c.Get("k")
		assert.False(t, ok)

		c.Put("k", "fresh")
		got, ok = c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "fresh", got)
	})
}

func TestCache_Miss(t *testing.T) {
	c := resultcache.New(time.Hour)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_PutOverwrites(t *testing.T) {
	c := resultcache.New(time.Hour)

	c.Put("k", 1)
	c.Put("k", 2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Disabled(t *testing.T) {
	c := resultcache.New(0)

	c.Put("k", 1)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
	assert.Zero(t, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := resultcache.New(time.Hour)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Clear()

	assert.Zero(t, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := resultcache.New(time.Hour)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := resultcache.Key("t", "op", []domain.Value{i % 10})
			if err != nil {
				t.Error(err)
				return
			}
			c.Put(key, i)
			_, _ = c.Get(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}

func TestKey_Deterministic(t *testing.T) {
	a := map[string]any{"x": 1, "y": []any{"a", true, nil}, "z": map[string]any{"k": 1.5}}
	b := map[string]any{"z": map[string]any{"k": 1.5}, "y": []any{"a", true, nil}, "x": 1}

	ka, err := resultcache.Key("analysis", "summarize", []domain.Value{a, "en"})
	require.NoError(t, err)
	kb, err := resultcache.Key("analysis", "summarize", []domain.Value{b, "en"})
	require.NoError(t, err)

	assert.Equal(t, ka, kb)
	assert.Contains(t, ka, "8:analysis|9:summarize|")
}

func TestKey_IntegerWidthsCollapse(t *testing.T) {
	k1, err := resultcache.Key("t", "op", []domain.Value{int64(3)})
	require.NoError(t, err)
	k2, err := resultcache.Key("t", "op", []domain.Value{uint8(3)})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestKey_Distinguishes(t *testing.T) {
	base := []domain.Value{"1"}
	variants := map[string]struct {
		typeName string
		op       string
		args     []domain.Value
	}{
		"int versus string":   {"t", "op", []domain.Value{1}},
		"float versus string": {"t", "op", []domain.Value{1.0}},
		"other operation":     {"t", "op2", base},
		"other type":          {"t2", "op", base},
		"extra argument":      {"t", "op", []domain.Value{"1", nil}},
		"split string":        {"t", "op", []domain.Value{"", "1"}},
		"list wrapped":        {"t", "op", []domain.Value{[]any{"1"}}},
		"separator in type":   {"t|op", "", base},
		"separator in op":     {"", "t|op", base},
	}

	want, err := resultcache.Key("t", "op", base)
	require.NoError(t, err)

	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := resultcache.Key(v.typeName, v.op, v.args)
			require.NoError(t, err)
			assert.NotEqual(t, want, got)
		})
	}
}

func TestKey_SeparatorInNames(t *testing.T) {
	k1, err := resultcache.Key("a|b", "c", []domain.Value{"x"})
	require.NoError(t, err)
	k2, err := resultcache.Key("a", "b|c", []domain.Value{"x"})
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestClone(t *testing.T) {
	src := map[string]any{"n": 1, "list": []any{map[string]any{"k": "v"}}, "raw": []byte("ab")}

	got, ok := resultcache.Clone(src).(map[string]any)
	require.True(t, ok)
	require.Equal(t, src, got)

	got["n"] = 999
	got["list"].([]any)[0].(map[string]any)["k"] = "changed"
	got["raw"].([]byte)[0] = 'z'

	assert.Equal(t, 1, src["n"])
	assert.Equal(t, "v", src["list"].([]any)[0].(map[string]any)["k"])
	assert.Equal(t, []byte("ab"), src["raw"])
	assert.Equal(t, "scalar", resultcache.Clone("scalar"))
}

func TestKey_NotCacheable(t *testing.T) {
	conn, peer := net.Pipe()
	t.Cleanup(func() {
		_ = conn.Close()
		_ = peer.Close()
	})

	cyclic := []any{nil}
	cyclic[0] = cyclic

	tests := map[string]domain.Value{
		"connection":       conn,
		"function":         func() {},
		"channel":          make(chan int),
		"context":          context.Background(),
		"struct":           struct{ A int }{A: 1},
		"non-string keys":  map[int]string{1: "a"},
		"nested function":  map[string]any{"cb": func() {}},
		"self-referencing": cyclic,
	}

	for name, arg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := resultcache.Key("t", "op", []domain.Value{"ok", arg})
			require.ErrorIs(t, err, domain.ErrNotCacheable)
		})
	}
}
