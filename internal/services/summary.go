package services

import (
	"strings"
	"time"

	"quickspese/internal/core"
)

// PeriodBounds returns the calendar month or week containing now, with an
// inclusive end.
func PeriodBounds(p core.Period, now time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	y, m, d := now.Date()
	if p == core.Weekly {
		offset := (int(now.Weekday()) - int(weekStart) + 7) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	}
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Applies reports whether rule counts e. Rules for "overall" count every
// expense.
func Applies(rule core.BudgetRule, e core.Expense) bool {
	return rule.Category == core.OverallCategory || strings.EqualFold(e.Category, rule.Category)
}

// Usage measures rule against the expenses dated in its current period.
// PercentUsed is capped at 100 and LeftCents never goes below zero.
func Usage(rule core.BudgetRule, expenses []core.Expense, now time.Time, weekStart time.Weekday) core.BudgetUsage {
	start, end := PeriodBounds(rule.Period, now, weekStart)
	inPeriod := core.QueryFilters{}.WithRange(start, end)

	var spent int64
	for _, e := range expenses {
		if Applies(rule, e) && inPeriod.Match(e) {
			spent += e.AmountCents
		}
	}

	u := core.BudgetUsage{Rule: rule, SpentCents: spent}
	if left := rule.AmountCents - spent; left > 0 {
		u.LeftCents = left
	}
	if rule.AmountCents > 0 {
		pct := (spent*100 + rule.AmountCents/2) / rule.AmountCents
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
		u.PercentUsed = int(pct)
	}
	return u
}

// Summarize builds the overview shown next to the expense list: this
// month's total, the all-time total, what is left of the overall monthly
// budget and the usage of every rule.
func Summarize(state core.State, now time.Time, weekStart time.Weekday) core.Summary {
	monthStart, monthEnd := PeriodBounds(core.Monthly, now, weekStart)
	thisMonth := core.QueryFilters{}.WithRange(monthStart, monthEnd).Apply(state.Expenses)

	s := core.Summary{
		Currency:        core.DefaultCurrency,
		MonthTotalCents: sumCents(thisMonth),
		AllTimeCents:    sumCents(state.Expenses),
		Budgets:         make([]core.BudgetUsage, 0, len(state.Budgets)),
	}

	var overall *core.BudgetRule
	for i, b := range state.Budgets {
		if b.Category == core.OverallCategory && b.Period == core.Monthly {
			overall = &state.Budgets[i]
			break
		}
	}

	switch {
	case len(state.Expenses) > 0:
		s.Currency = state.Expenses[0].Currency
	case overall != nil:
		s.Currency = overall.Currency
	}

	if overall != nil {
		left := overall.AmountCents - s.MonthTotalCents
		if left < 0 {
			left = 0
		}
		s.OverallLeft = &left
	}

	for _, b := range state.Budgets {
		s.Budgets = append(s.Budgets, Usage(b, state.Expenses, now, weekStart))
	}
	return s
}
