package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quickspese/internal/core"
)

var testNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "exp_test_" + string(rune('a'+n-1))
	}
}

func testEnv() Env {
	return Env{Now: testNow, NewID: seqIDs()}
}

func add(desc string, cents int64) core.AddExpense {
	return core.AddExpense{Description: desc, Category: desc, AmountCents: cents, Currency: core.USD, Date: testNow}
}

func mustApply(t *testing.T, s core.State, cmd core.Command, env Env) (core.State, Outcome) {
	t.Helper()
	next, out, err := Apply(s, cmd, env)
	require.NoError(t, err)
	return next, out
}

func TestApplyAddPrependsAndPushesUndo(t *testing.T) {
	env := testEnv()
	s, out := mustApply(t, core.State{}, add("coffee", 450), env)
	s, _ = mustApply(t, s, add("lunch", 2000), env)

	require.Len(t, s.Expenses, 2)
	require.Equal(t, "lunch", s.Expenses[0].Description)
	require.Equal(t, "exp_test_b", s.Expenses[0].ID)
	require.Len(t, s.UndoStack, 2)
	require.Empty(t, s.UndoStack[0].Expenses)
	require.Equal(t, "Added coffee for 4.50 USD", out.Message)
	require.True(t, out.Changed)
}

func TestApplyAddDefaultsDate(t *testing.T) {
	cmd := add("coffee", 450)
	cmd.Date = time.Time{}
	s, _ := mustApply(t, core.State{}, cmd, testEnv())
	require.Equal(t, testNow, s.Expenses[0].Date)
}

func TestApplyRejectsInvalidValues(t *testing.T) {
	before := core.State{Expenses: []core.Expense{{ID: "exp_a", Description: "x", Category: "x", AmountCents: 1, Currency: core.USD, Date: testNow}}}.Normalize()

	cases := []struct {
		name string
		cmd  core.Command
		msg  string
	}{
		{"zero amount", add("free", 0), "Could not add expense: invalid amount"},
		{"long description", add(strings.Repeat("a", 210), 100), "Could not add expense: description too long (max 200 characters)"},
		{"zero budget", core.SetBudget{Category: "food", Period: core.Monthly, Currency: core.USD}, "Could not set budget: invalid amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, out, err := Apply(before, tc.cmd, testEnv())
			require.NoError(t, err)
			require.Equal(t, before, next)
			require.True(t, out.Rejected)
			require.False(t, out.Changed)
			require.Equal(t, tc.cmd.Kind(), out.Kind)
			require.Equal(t, tc.msg, out.Message)
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	env := testEnv()
	s, _ := mustApply(t, core.State{}, add("coffee", 450), env)
	s, _ = mustApply(t, s, add("lunch", 2000), env)
	saved := s.Snapshot()

	_, _ = mustApply(t, s, core.DeleteLast{}, env)
	_, _ = mustApply(t, s, core.ClearAll{}, env)

	require.Equal(t, saved.Expenses, s.Expenses)
}

func TestApplyUndoRestoresSnapshot(t *testing.T) {
	env := testEnv()
	s, _ := mustApply(t, core.State{}, add("coffee", 450), env)
	s, _ = mustApply(t, s, core.SetBudget{Category: "food", AmountCents: 10000, Period: core.Monthly, Currency: core.USD}, env)
	s, _ = mustApply(t, s, core.ClearAll{}, env)
	require.Empty(t, s.Expenses)
	require.Empty(t, s.Budgets)

	s, out := mustApply(t, s, core.Undo{}, env)
	require.Equal(t, "Undid last change", out.Message)
	require.Len(t, s.Expenses, 1)
	require.Len(t, s.Budgets, 1)
	require.Len(t, s.UndoStack, 2)

	s, _ = mustApply(t, s, core.Undo{}, env)
	s, _ = mustApply(t, s, core.Undo{}, env)
	require.Empty(t, s.Expenses)

	s, out = mustApply(t, s, core.Undo{}, env)
	require.False(t, out.Changed)
	require.Equal(t, "Nothing to undo", out.Message)
	require.Empty(t, s.UndoStack)
}

func TestApplyUndoLimit(t *testing.T) {
	env := testEnv()
	env.UndoLimit = 2
	s := core.State{}
	for i := 0; i < 5; i++ {
		s, _ = mustApply(t, s, add("coffee", 100), env)
	}
	require.Len(t, s.UndoStack, 2)
	require.Len(t, s.UndoStack[1].Expenses, 4)
}

func TestApplyDeletes(t *testing.T) {
	env := testEnv()
	s, _ := mustApply(t, core.State{}, add("coffee", 450), env)
	s, _ = mustApply(t, s, add("lunch", 2000), env)
	s, _ = mustApply(t, s, add("dinner", 3000), env)

	s, out := mustApply(t, s, core.DeleteLast{}, env)
	require.Equal(t, "Deleted last expense dinner", out.Message)
	require.Len(t, s.Expenses, 2)

	s, out = mustApply(t, s, core.DeleteByID{ID: "exp_test_a"}, env)
	require.Equal(t, "Deleted exp_test_a", out.Message)
	require.Len(t, s.Expenses, 1)
	require.Equal(t, "lunch", s.Expenses[0].Description)

	depth := len(s.UndoStack)
	s, out = mustApply(t, s, core.DeleteByID{ID: "exp_missing_x"}, env)
	require.False(t, out.Changed)
	require.Len(t, s.UndoStack, depth)

	empty, out := mustApply(t, core.State{}, core.DeleteLast{}, env)
	require.Equal(t, "No expenses to delete", out.Message)
	require.Empty(t, empty.UndoStack)
}

func TestApplySetBudgetUpserts(t *testing.T) {
	env := testEnv()
	s, out := mustApply(t, core.State{}, core.SetBudget{Category: "Food", AmountCents: 10000, Period: core.Monthly, Currency: core.USD}, env)
	require.Equal(t, "Budget set for food (monthly)", out.Message)
	s, _ = mustApply(t, s, core.SetBudget{Category: "food", AmountCents: 20000, Period: core.Monthly, Currency: core.USD}, env)
	s, _ = mustApply(t, s, core.SetBudget{Category: "food", AmountCents: 5000, Period: core.Weekly, Currency: core.USD}, env)

	require.Len(t, s.Budgets, 2)
	require.Equal(t, "food-monthly", s.Budgets[0].ID)
	require.Equal(t, int64(20000), s.Budgets[0].AmountCents)
	require.Equal(t, "food-weekly", s.Budgets[1].ID)

	_, _, err := Apply(s, core.SetBudget{Category: "food", Period: core.Monthly, Currency: core.USD}, env)
	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestApplyShowAndTotal(t *testing.T) {
	env := testEnv()
	s, _ := mustApply(t, core.State{}, add("coffee", 450), env)
	eur := add("lunch", 2000)
	eur.Currency = core.EUR
	s, _ = mustApply(t, s, eur, env)

	coffee := "coffee"
	_, out := mustApply(t, s, core.Show{Filters: core.QueryFilters{Category: &coffee}}, env)
	require.False(t, out.Changed)
	require.Len(t, out.Expenses, 1)

	_, out = mustApply(t, s, core.Total{Filters: core.QueryFilters{Category: &coffee}}, env)
	require.Equal(t, "Total: $4.50", out.Message)

	_, out = mustApply(t, s, core.Total{}, env)
	require.Equal(t, core.Money{Cents: 2450, Currency: core.EUR}, *out.Total)

	none := "none"
	_, out = mustApply(t, s, core.Total{Filters: core.QueryFilters{Category: &none}}, env)
	require.Equal(t, "Total: €0.00", out.Message)

	_, out = mustApply(t, core.State{}, core.Total{}, env)
	require.Equal(t, "Total: $0.00", out.Message)
}

func TestApplyHelp(t *testing.T) {
	s, out := mustApply(t, core.State{}, core.Help{}, testEnv())
	require.True(t, strings.HasPrefix(out.Message, "Commands:"))
	require.Empty(t, s.UndoStack)
}

func TestApplyRequiresIDGenerator(t *testing.T) {
	_, _, err := Apply(core.State{}, add("coffee", 1), Env{Now: testNow})
	require.Error(t, err)
}

func TestNewIDGenerator(t *testing.T) {
	gen := NewIDGenerator("exp", func() time.Time { return testNow })
	id := gen()
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	require.Equal(t, "exp", parts[0])
	require.Len(t, parts[2], 6)
	require.NotEqual(t, id, gen())
	require.Regexp(t, `^exp_[a-z0-9]+_[a-z0-9]{6}$`, id)
}
