// Package store persists monitor state as JSON under the workspace state directory.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.MetricsStore using a single JSON document per state directory.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get loads the monitor state stored under dir. A missing file is not an error.
func (s *Store) Get(dir string) (*domain.MonitorState, error) {
	filename := s.filename(dir)
	//nolint:gosec // Path is constructed from the workspace state directory
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(domain.Tag(domain.ErrStoreReadFailed, err), "file", filename)
	}

	var state domain.MonitorState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, zerr.With(domain.Tag(domain.ErrStoreUnmarshalFailed, err), "file", filename)
	}

	return &state, nil
}

// Put stores the monitor state under dir. The file is replaced atomically.
func (s *Store) Put(dir string, state *domain.MonitorState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return domain.Tag(domain.ErrStoreMarshalFailed, err)
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(domain.Tag(domain.ErrStoreCreateFailed, err), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, domain.MetricsFileName+".*")
	if err != nil {
		return zerr.With(domain.Tag(domain.ErrStoreWriteFailed, err), "dir", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(domain.Tag(domain.ErrStoreWriteFailed, err), "file", tmp.Name())
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return zerr.With(domain.Tag(domain.ErrStoreWriteFailed, err), "file", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(domain.Tag(domain.ErrStoreWriteFailed, err), "file", tmp.Name())
	}

	filename := s.filename(dir)
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(domain.Tag(domain.ErrStoreWriteFailed, err), "file", filename)
	}

	return nil
}

func (s *Store) filename(dir string) string {
	return filepath.Join(dir, domain.MetricsFileName)
}
