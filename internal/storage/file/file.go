// Package file stores the application state as a JSON document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quickspese/internal/core"
	"quickspese/internal/storage"
)

// Store reads and writes one JSON file. Writes go through a temp file and
// a rename so a crash never leaves a truncated document behind.
type Store struct {
	mu     sync.Mutex
	path   string
	mode   os.FileMode
	closed bool
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("state file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Store{path: path, mode: 0o600}, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Load implements storage.StateStore. A missing file is an empty state.
func (s *Store) Load(ctx context.Context) (core.State, error) {
	if err := ctx.Err(); err != nil {
		return core.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.State{}, storage.ErrClosed
	}

	var st core.State
	if err := readJSON(s.path, &st); err != nil {
		return core.State{}, fmt.Errorf("read state file: %w", err)
	}
	return st.Normalize(), nil
}

// Save implements storage.StateStore.
func (s *Store) Save(ctx context.Context, st core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if err := writeJSON(s.path, st.Normalize(), s.mode); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
