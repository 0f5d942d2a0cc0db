// Package storagetest holds a conformance suite shared by the StateStore
// implementations.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quickspese/internal/core"
	"quickspese/internal/storage"
)

// SampleState returns a state with one expense, one budget and one undo
// snapshot.
func SampleState() core.State {
	e := core.Expense{
		ID:          "exp_m7x2k1_ab12cd",
		Description: "lunch",
		Category:    "lunch",
		AmountCents: 2000,
		Currency:    core.USD,
		Date:        time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC),
	}
	b := core.BudgetRule{ID: "food-monthly", Category: "food", AmountCents: 30000, Period: core.Monthly, Currency: core.USD}
	return core.State{
		Expenses:  []core.Expense{e},
		Budgets:   []core.BudgetRule{b},
		UndoStack: []core.Snapshot{{Expenses: []core.Expense{}, Budgets: []core.BudgetRule{}}},
	}
}

// Run exercises newStore against the StateStore contract. newStore must
// return a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.StateStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store loads normalised state", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, got.Expenses)
		require.NotNil(t, got.Budgets)
		require.NotNil(t, got.UndoStack)
		require.Empty(t, got.Expenses)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		s := newStore(t)
		want := SampleState()
		require.NoError(t, s.Save(ctx, want))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("later save replaces earlier", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, SampleState()))
		require.NoError(t, s.Save(ctx, core.State{}))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got.Expenses)
		require.Empty(t, got.Budgets)
	})

	t.Run("loaded state is independent of the store", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, SampleState()))

		first, err := s.Load(ctx)
		require.NoError(t, err)
		first.Expenses[0].Description = "changed"

		second, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "lunch", second.Expenses[0].Description)
	})

	t.Run("closed store rejects calls", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Close())
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, storage.ErrClosed)
		require.ErrorIs(t, s.Save(ctx, SampleState()), storage.ErrClosed)
	})
}
