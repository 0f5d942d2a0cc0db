package core

import "time"

// CommandKind names a Command variant. The values double as the wire form.
type CommandKind string

const (
	KindAdd        CommandKind = "add"
	KindDeleteLast CommandKind = "delete_last"
	KindDeleteByID CommandKind = "delete_id"
	KindClearAll   CommandKind = "clear_all"
	KindUndo       CommandKind = "undo"
	KindShow       CommandKind = "show"
	KindTotal      CommandKind = "total"
	KindSetBudget  CommandKind = "set_budget"
	KindHelp       CommandKind = "help"
)

// Command is the closed set of intents a sentence can resolve to.
// Only the types in this file implement it.
type Command interface {
	Kind() CommandKind
	command()
}

type (
	AddExpense struct {
		Description string    `json:"description"`
		Category    string    `json:"category"`
		AmountCents int64     `json:"amountCents"`
		Currency    Currency  `json:"currency"`
		Date        time.Time `json:"date"`
	}

	DeleteLast struct{}

	DeleteByID struct {
		ID string `json:"id"`
	}

	ClearAll struct{}

	Undo struct{}

	Show struct {
		Filters QueryFilters `json:"filters"`
	}

	Total struct {
		Filters QueryFilters `json:"filters"`
	}

	SetBudget struct {
		Category    string   `json:"category"`
		AmountCents int64    `json:"amountCents"`
		Period      Period   `json:"period"`
		Currency    Currency `json:"currency"`
	}

	Help struct{}
)

func (AddExpense) Kind() CommandKind { return KindAdd }
func (DeleteLast) Kind() CommandKind { return KindDeleteLast }
func (DeleteByID) Kind() CommandKind { return KindDeleteByID }
func (ClearAll) Kind() CommandKind   { return KindClearAll }
func (Undo) Kind() CommandKind       { return KindUndo }
func (Show) Kind() CommandKind       { return KindShow }
func (Total) Kind() CommandKind      { return KindTotal }
func (SetBudget) Kind() CommandKind  { return KindSetBudget }
func (Help) Kind() CommandKind       { return KindHelp }

func (AddExpense) command() {}
func (DeleteLast) command() {}
func (DeleteByID) command() {}
func (ClearAll) command()   {}
func (Undo) command()       {}
func (Show) command()       {}
func (Total) command()      {}
func (SetBudget) command()  {}
func (Help) command()       {}

// Mutates reports whether applying a command of this kind can change State.
func (k CommandKind) Mutates() bool {
	switch k {
	case KindAdd, KindDeleteLast, KindDeleteByID, KindClearAll, KindUndo, KindSetBudget:
		return true
	default:
		return false
	}
}
