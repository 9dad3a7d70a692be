package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twin/internal/adapters/store"
	"go.trai.ch/twin/internal/core/domain"
)

func sampleState() *domain.MonitorState {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.MonitorState{
		StartedAt:     started,
		LastReset:     started.Add(time.Hour),
		ParallelCalls: 3,
		Identities: map[domain.Identity]domain.IdentityState{
			domain.Original: {
				Calls:     4,
				Successes: 3,
				Errors: []domain.ErrorRecord{
					{Timestamp: started.Add(time.Minute), Message: "boom"},
				},
				Latencies: []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond},
				Usage:     []domain.ResourceUsage{{CPUTime: time.Millisecond, MaxRSSBytes: 1024}},
			},
			domain.Candidate: {
				Calls:         2,
				Successes:     2,
				ErrorsDropped: 1,
				Latencies:     []time.Duration{time.Millisecond, time.Millisecond},
			},
		},
	}
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), domain.StateDirName)
	s := store.NewStore()

	state := sampleState()
	require.NoError(t, s.Put(dir, state))

	got, err := s.Get(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, got)

	info, err := os.Stat(filepath.Join(dir, domain.MetricsFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())
}

func TestStore_PutOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.NewStore()

	require.NoError(t, s.Put(dir, sampleState()))

	next := sampleState()
	next.ParallelCalls = 10
	require.NoError(t, s.Put(dir, next))

	got, err := s.Get(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ParallelCalls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := store.NewStore().Get(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.MetricsFileName), []byte("{ invalid json"), domain.FilePerm))

	_, err := store.NewStore().Get(dir)
	require.ErrorIs(t, err, domain.ErrStoreUnmarshalFailed)
}

func TestStore_PutUnwritable(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, domain.FilePerm))

	err := store.NewStore().Put(filepath.Join(blocker, "state"), sampleState())
	require.ErrorIs(t, err, domain.ErrStoreCreateFailed)
}
