package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the wallet state as a single JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore builds a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file is a freshly initialized store.
func (s *FileStore) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyState(), nil
		}
		return State{}, fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, s.path, err)
	}
	if state.Balances == nil {
		state.Balances = make(map[string]int64)
	}
	return state, nil
}

// Save writes the state atomically via a temp file and rename, so a crash
// mid-write never leaves a truncated store behind.
func (s *FileStore) Save(_ context.Context, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode state: %v", ErrWrite, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrWrite, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrWrite, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %v", ErrWrite, s.path, err)
	}
	return nil
}

func emptyState() State {
	return State{Balances: make(map[string]int64)}
}
