package core

import (
	"strings"
	"time"
)

// QueryFilters narrows a list of expenses. A nil field places no
// constraint on that axis.
type QueryFilters struct {
	Text     *string    `json:"text,omitempty"`
	Category *string    `json:"category,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	MinCents *int64     `json:"minCents,omitempty"`
	MaxCents *int64     `json:"maxCents,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f QueryFilters) IsEmpty() bool {
	return f.Text == nil && f.Category == nil && f.Start == nil &&
		f.End == nil && f.MinCents == nil && f.MaxCents == nil
}

// Match reports whether e satisfies every set constraint. Bounds are
// inclusive on both ends.
func (f QueryFilters) Match(e Expense) bool {
	if f.Text != nil && *f.Text != "" {
		hay := strings.ToLower(e.Description + " " + e.Category)
		if !strings.Contains(hay, strings.ToLower(*f.Text)) {
			return false
		}
	}
	if f.Category != nil && !strings.EqualFold(e.Category, *f.Category) {
		return false
	}
	if f.Start != nil && e.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Date.After(*f.End) {
		return false
	}
	if f.MinCents != nil && e.AmountCents < *f.MinCents {
		return false
	}
	if f.MaxCents != nil && e.AmountCents > *f.MaxCents {
		return false
	}
	return true
}

// Apply returns the expenses matching f, preserving order.
func (f QueryFilters) Apply(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// WithRange sets both date bounds.
func (f QueryFilters) WithRange(start, end time.Time) QueryFilters {
	f.Start = &start
	f.End = &end
	return f
}
