package services

import (
	"fmt"
	"strings"
	"time"

	"quickspese/internal/core"
)

// HelpText lists the sentences the interpreter understands.
const HelpText = "Commands: add/spent ..., show/list ..., total/sum ..., set budget X for CATEGORY, delete last, undo, clear all"

// Env carries the inputs of Apply that are not part of State.
type Env struct {
	Now   time.Time
	NewID func() string
	// UndoLimit caps the undo stack depth; zero keeps every snapshot.
	UndoLimit int
}

// Outcome describes what a command did, for display and event publishing.
type Outcome struct {
	Kind     core.CommandKind   `json:"kind"`
	Message  string             `json:"message"`
	Changed  bool               `json:"changed"`
	// Rejected is set when the command carried values the domain refuses,
	// such as a zero amount. The state is left as it was.
	Rejected bool               `json:"rejected,omitempty"`
	Expense  *core.Expense      `json:"expense,omitempty"`
	Budget   *core.BudgetRule   `json:"budget,omitempty"`
	Expenses []core.Expense     `json:"expenses,omitempty"`
	Filters  *core.QueryFilters `json:"filters,omitempty"`
	Total    *core.Money        `json:"total,omitempty"`
}

// Apply runs cmd against state and returns the next state. It never
// modifies the slices of the state it is given.
//
// Every mutating command first pushes a snapshot of the current expenses
// and budgets; Undo pops the newest snapshot and restores it wholesale.
// Commands that find nothing to do leave the state and undo stack alone.
func Apply(state core.State, cmd core.Command, env Env) (core.State, Outcome, error) {
	state = state.Normalize()
	out := Outcome{Kind: cmd.Kind()}

	switch c := cmd.(type) {
	case core.Help:
		out.Message = HelpText
		return state, out, nil

	case core.Undo:
		n := len(state.UndoStack)
		if n == 0 {
			out.Message = "Nothing to undo"
			return state, out, nil
		}
		snap := state.UndoStack[n-1]
		next := core.State{
			Expenses:  append([]core.Expense{}, snap.Expenses...),
			Budgets:   append([]core.BudgetRule{}, snap.Budgets...),
			UndoStack: append([]core.Snapshot{}, state.UndoStack[:n-1]...),
		}
		out.Message = "Undid last change"
		out.Changed = true
		return next, out, nil

	case core.ClearAll:
		next := pushUndo(state, env.UndoLimit)
		next.Expenses = []core.Expense{}
		next.Budgets = []core.BudgetRule{}
		out.Message = "Cleared all data"
		out.Changed = true
		return next, out, nil

	case core.DeleteLast:
		if len(state.Expenses) == 0 {
			out.Message = "No expenses to delete"
			return state, out, nil
		}
		last := state.Expenses[0]
		next := pushUndo(state, env.UndoLimit)
		next.Expenses = removeExpense(state.Expenses, 0)
		out.Message = "Deleted last expense " + last.Description
		out.Expense = &last
		out.Changed = true
		return next, out, nil

	case core.DeleteByID:
		i := state.FindExpense(c.ID)
		if i < 0 {
			out.Message = "No expense with id " + c.ID
			return state, out, nil
		}
		removed := state.Expenses[i]
		next := pushUndo(state, env.UndoLimit)
		next.Expenses = removeExpense(state.Expenses, i)
		out.Message = "Deleted " + c.ID
		out.Expense = &removed
		out.Changed = true
		return next, out, nil

	case core.AddExpense:
		if env.NewID == nil {
			return state, Outcome{}, fmt.Errorf("add expense: no id generator")
		}
		e := core.Expense{
			ID:          env.NewID(),
			Description: c.Description,
			Category:    c.Category,
			AmountCents: c.AmountCents,
			Currency:    c.Currency,
			Date:        c.Date,
		}
		if e.Date.IsZero() {
			e.Date = env.Now
		}
		if err := e.Validate(); err != nil {
			return state, reject(out, "Could not add expense", err), nil
		}
		next := pushUndo(state, env.UndoLimit)
		next.Expenses = append([]core.Expense{e}, state.Expenses...)
		out.Message = fmt.Sprintf("Added %s for %s %s", e.Description, core.FormatPlain(e.AmountCents), e.Currency)
		out.Expense = &e
		out.Changed = true
		return next, out, nil

	case core.SetBudget:
		category := strings.ToLower(strings.TrimSpace(c.Category))
		rule := core.BudgetRule{
			ID:          category + "-" + string(c.Period),
			Category:    category,
			AmountCents: c.AmountCents,
			Period:      c.Period,
			Currency:    c.Currency,
		}
		if err := rule.Validate(); err != nil {
			return state, reject(out, "Could not set budget", err), nil
		}
		next := pushUndo(state, env.UndoLimit)
		next.Budgets = upsertBudget(state.Budgets, rule)
		out.Message = fmt.Sprintf("Budget set for %s (%s)", rule.Category, rule.Period)
		out.Budget = &rule
		out.Changed = true
		return next, out, nil

	case core.Show:
		filters := c.Filters
		out.Expenses = filters.Apply(state.Expenses)
		out.Filters = &filters
		out.Message = fmt.Sprintf("Applied filters (%d matching)", len(out.Expenses))
		return state, out, nil

	case core.Total:
		filters := c.Filters
		subset := filters.Apply(state.Expenses)
		total := core.Money{Cents: sumCents(subset), Currency: totalCurrency(subset, state.Expenses)}
		out.Expenses = subset
		out.Filters = &filters
		out.Total = &total
		out.Message = "Total: " + total.String()
		return state, out, nil
	}

	return state, Outcome{}, fmt.Errorf("unsupported command %T", cmd)
}

func reject(out Outcome, what string, err error) Outcome {
	out.Message = what + ": " + err.Error()
	out.Rejected = true
	return out
}

// pushUndo returns a copy of s with a snapshot of its current data on top of
// the undo stack, dropping the oldest entries beyond limit.
func pushUndo(s core.State, limit int) core.State {
	stack := make([]core.Snapshot, 0, len(s.UndoStack)+1)
	stack = append(stack, s.UndoStack...)
	stack = append(stack, s.Snapshot())
	if limit > 0 && len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	return core.State{
		Expenses:  s.Expenses,
		Budgets:   s.Budgets,
		UndoStack: stack,
	}
}

func removeExpense(list []core.Expense, i int) []core.Expense {
	out := make([]core.Expense, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// upsertBudget replaces the rule with the same category and period, or
// appends rule when none exists.
func upsertBudget(list []core.BudgetRule, rule core.BudgetRule) []core.BudgetRule {
	out := make([]core.BudgetRule, 0, len(list)+1)
	replaced := false
	for _, b := range list {
		if strings.EqualFold(b.Category, rule.Category) && b.Period == rule.Period {
			out = append(out, rule)
			replaced = true
			continue
		}
		out = append(out, b)
	}
	if !replaced {
		out = append(out, rule)
	}
	return out
}

func sumCents(list []core.Expense) int64 {
	var total int64
	for _, e := range list {
		total += e.AmountCents
	}
	return total
}

// totalCurrency is the currency of the first matching expense, else of the
// newest expense overall, else the default.
func totalCurrency(subset, all []core.Expense) core.Currency {
	if len(subset) > 0 {
		return subset[0].Currency
	}
	if len(all) > 0 {
		return all[0].Currency
	}
	return core.DefaultCurrency
}
