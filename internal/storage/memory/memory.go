// Package memory is an in-process state store, used by tests and by the
// "memory" backend.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"quickspese/internal/core"
	"quickspese/internal/storage"
)

// Store keeps a deep copy of the last saved state.
type Store struct {
	mu     sync.Mutex
	data   []byte
	saves  int
	closed bool
}

func New() *Store {
	return &Store{}
}

// NewWithState returns a store preloaded with s.
func NewWithState(s core.State) (*Store, error) {
	st := New()
	if err := st.Save(context.Background(), s); err != nil {
		return nil, err
	}
	st.saves = 0
	return st, nil
}

// Load returns a copy of the stored state.
func (s *Store) Load(_ context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.State{}, storage.ErrClosed
	}
	if s.data == nil {
		return core.State{}.Normalize(), nil
	}
	var st core.State
	if err := json.Unmarshal(s.data, &st); err != nil {
		return core.State{}, fmt.Errorf("decode state: %w", err)
	}
	return st.Normalize(), nil
}

// Save stores a copy of st. Copying through JSON keeps callers from
// mutating what was saved and matches what the durable stores round-trip.
func (s *Store) Save(_ context.Context, st core.State) error {
	b, err := json.Marshal(st.Normalize())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.data = b
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
