package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly Period = "monthly"
	Weekly  Period = "weekly"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
	INR Currency = "INR"
	JPY Currency = "JPY"

	DefaultCurrency = USD
)

// GeneralCategory is assigned when no category can be inferred.
const GeneralCategory = "general"

// OverallCategory is the budget category that applies to every expense.
const OverallCategory = "overall"

type (
	Period   string
	Currency string

	Expense struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		AmountCents int64     `json:"amountCents"`
		Currency    Currency  `json:"currency"`
		Date        time.Time `json:"date"`
	}

	BudgetRule struct {
		ID          string   `json:"id"`
		Category    string   `json:"category"`
		AmountCents int64    `json:"amountCents"`
		Period      Period   `json:"period"`
		Currency    Currency `json:"currency"`
	}

	// Snapshot is a full copy of the undoable part of State.
	Snapshot struct {
		Expenses []Expense    `json:"expenses"`
		Budgets  []BudgetRule `json:"budgets"`
	}

	// State is everything the host application persists.
	State struct {
		Expenses  []Expense    `json:"expenses"`
		Budgets   []BudgetRule `json:"budgets"`
		UndoStack []Snapshot   `json:"undoStack"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrUnknownPeriod     = errors.New("unknown budget period")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrMissingExpenseID  = errors.New("missing expense id")
	ErrZeroExpenseDate   = errors.New("expense date cannot be zero")
	ErrDescriptionTooBig = errors.New("description too long (max 200 characters)")
)

var currencies = []Currency{USD, EUR, GBP, CAD, AUD, INR, JPY}

// Currencies returns the supported currency codes.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

func (c Currency) Validate() error {
	for _, known := range currencies {
		if c == known {
			return nil
		}
	}
	return ErrUnknownCurrency
}

// ParseCurrency maps a case-insensitive code to a Currency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (p Period) Validate() error {
	switch p {
	case Monthly, Weekly:
		return nil
	default:
		return ErrUnknownPeriod
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingExpenseID
	}
	if e.Date.IsZero() {
		return ErrZeroExpenseDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooBig
	}
	if e.AmountCents == 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Currency.Validate()
}

func (b BudgetRule) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	return b.Currency.Validate()
}

// Snapshot copies the expenses and budgets so later edits to s do not leak
// into the returned value.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Expenses: append([]Expense(nil), s.Expenses...),
		Budgets:  append([]BudgetRule(nil), s.Budgets...),
	}
}

// Normalize replaces nil slices with empty ones so the JSON form always
// carries arrays.
func (s State) Normalize() State {
	if s.Expenses == nil {
		s.Expenses = []Expense{}
	}
	if s.Budgets == nil {
		s.Budgets = []BudgetRule{}
	}
	if s.UndoStack == nil {
		s.UndoStack = []Snapshot{}
	}
	return s
}

// FindExpense returns the index of the expense with the given id or -1.
func (s State) FindExpense(id string) int {
	for i, e := range s.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
