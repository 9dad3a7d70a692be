package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twin/internal/adapters/telemetry"
)

type chunks struct {
	mu   sync.Mutex
	data []string
}

func (c *chunks) add(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append(c.data, string(p))
}

func (c *chunks) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.data...)
}

func TestBatchProcessor_SizeLimit(t *testing.T) {
	var got chunks
	bp := telemetry.NewBatchProcessor(4, time.Hour, got.add)

	_, err := bp.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Empty(t, got.get())

	_, err = bp.Write([]byte("cde"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abcde"}, got.get())

	require.NoError(t, bp.Close())
}

func TestBatchProcessor_TimeLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got chunks
		bp := telemetry.NewBatchProcessor(0, 0, got.add)

		_, _ = bp.Write([]byte("line\n"))
		time.Sleep(telemetry.DefaultTimeLimit - time.Millisecond)
		synctest.Wait()
		assert.Empty(t, got.get())

		time.Sleep(time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"line\n"}, got.get())

		require.NoError(t, bp.Close())
	})
}

func TestBatchProcessor_CloseFlushes(t *testing.T) {
	var got chunks
	bp := telemetry.NewBatchProcessor(0, time.Hour, got.add)

	_, _ = bp.Write([]byte("a"))
	_, _ = bp.Write([]byte("b"))
	require.NoError(t, bp.Close())
	require.NoError(t, bp.Close())

	assert.Equal(t, []string{"ab"}, got.get())

	_, err := bp.Write([]byte("late"))
	require.ErrorIs(t, err, telemetry.ErrBatcherClosed)
	bp.Flush()
	assert.Len(t, got.get(), 1)
}
