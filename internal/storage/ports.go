// Package storage persists the application state: expenses, budget rules
// and the undo stack.
package storage

import (
	"context"
	"errors"

	"quickspese/internal/core"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// StateStore loads and saves the whole application state at once. A store
// that has never been written returns an empty, normalised State.
type StateStore interface {
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, s core.State) error
	Close() error
}
