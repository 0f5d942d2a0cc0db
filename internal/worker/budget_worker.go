package worker

import (
	"context"
	"fmt"
	"time"

	"quickspese/internal/amqp"
	"quickspese/internal/cache"
	"quickspese/internal/core"
	"quickspese/internal/log"
	"quickspese/internal/services"
)

// StateReader is the part of the state store the worker needs.
type StateReader interface {
	Load(ctx context.Context) (core.State, error)
}

// AlertLevel tells how far a budget has gone.
type AlertLevel string

const (
	AlertNearLimit AlertLevel = "near_limit"
	AlertExceeded  AlertLevel = "exceeded"
)

// Alert reports a budget whose usage crossed a threshold because of one
// expense.
type Alert struct {
	Level     AlertLevel
	Usage     core.BudgetUsage
	ExpenseID string
}

// BudgetWorker watches command events and warns when a new expense pushes a
// budget over the alert threshold or over its full amount.
type BudgetWorker struct {
	store        StateReader
	logger       *log.Logger
	now          func() time.Time
	weekStart    time.Weekday
	alertPercent int
	notify       func(context.Context, Alert)
	seen         *cache.LRUCache[struct{}]
}

// Option configures a BudgetWorker.
type Option func(*BudgetWorker)

// WithClock overrides the clock used to pick the current budget period.
func WithClock(now func() time.Time) Option {
	return func(w *BudgetWorker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWeekStart sets the first day of weekly budget periods.
func WithWeekStart(d time.Weekday) Option {
	return func(w *BudgetWorker) { w.weekStart = d }
}

// WithNotifier adds a callback run for every alert after it is logged.
func WithNotifier(fn func(context.Context, Alert)) Option {
	return func(w *BudgetWorker) { w.notify = fn }
}

// WithSeenEvents sets the cache of already handled expense ids used to
// skip redelivered events.
func WithSeenEvents(c *cache.LRUCache[struct{}]) Option {
	return func(w *BudgetWorker) {
		if c != nil {
			w.seen = c
		}
	}
}

func NewBudgetWorker(store StateReader, logger *log.Logger, alertPercent int, opts ...Option) *BudgetWorker {
	if logger == nil {
		logger = log.Nop()
	}
	if alertPercent < 1 || alertPercent > 100 {
		alertPercent = 80
	}
	w := &BudgetWorker{
		store:        store,
		logger:       logger.WithComponent(log.ComponentBudget),
		now:          time.Now,
		weekStart:    time.Sunday,
		alertPercent: alertPercent,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.seen == nil {
		w.seen = NewSeenEvents()
	}
	return w
}

// NewSeenEvents returns the default redelivery cache: the last 1024 expense
// ids, each remembered for an hour.
func NewSeenEvents() *cache.LRUCache[struct{}] {
	return cache.NewLRUCache[struct{}](1024, time.Hour)
}

// HandleCommandEvent processes a single command event from AMQP. Only add
// events carry an expense that can move a budget; the rest are ignored.
func (w *BudgetWorker) HandleCommandEvent(ctx context.Context, ev *amqp.CommandEvent) error {
	if ev == nil || ev.Kind != core.KindAdd || ev.Expense == nil {
		return nil
	}

	id := ev.Expense.ID
	if !w.seen.SetIfAbsent(id, struct{}{}) {
		w.logger.DebugContext(ctx, "Skipping redelivered command event", log.FieldExpenseID, id)
		return nil
	}

	w.logger.DebugContext(ctx, "Processing command event",
		log.FieldCommandKind, ev.Kind,
		log.FieldExpenseID, id)

	state, err := w.store.Load(ctx)
	if err != nil {
		w.seen.Delete(id)
		return fmt.Errorf("load state: %w", err)
	}

	alerts := w.Check(state, *ev.Expense)
	for _, a := range alerts {
		w.report(ctx, a)
	}
	return nil
}

// Check returns the alerts caused by expense: budgets it applies to whose
// usage reaches a threshold with it and stayed below that threshold
// without it.
func (w *BudgetWorker) Check(state core.State, expense core.Expense) []Alert {
	now := w.now()
	without := withoutExpense(state.Expenses, expense.ID)
	if len(without) == len(state.Expenses) {
		// Undone or cleared since the event was published.
		return nil
	}

	var alerts []Alert
	for _, rule := range state.Budgets {
		if !services.Applies(rule, expense) {
			continue
		}
		after := services.Usage(rule, state.Expenses, now, w.weekStart)
		before := services.Usage(rule, without, now, w.weekStart)

		switch {
		case after.PercentUsed >= 100 && before.PercentUsed < 100:
			alerts = append(alerts, Alert{Level: AlertExceeded, Usage: after, ExpenseID: expense.ID})
		case after.PercentUsed >= w.alertPercent && before.PercentUsed < w.alertPercent:
			alerts = append(alerts, Alert{Level: AlertNearLimit, Usage: after, ExpenseID: expense.ID})
		}
	}
	return alerts
}

// StartupCheck logs every budget already at or above the alert threshold,
// so alerts missed while the worker was down still show up once.
func (w *BudgetWorker) StartupCheck(ctx context.Context) error {
	state, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state for startup check: %w", err)
	}

	now := w.now()
	flagged := 0
	for _, rule := range state.Budgets {
		u := services.Usage(rule, state.Expenses, now, w.weekStart)
		if u.PercentUsed < w.alertPercent {
			continue
		}
		level := AlertNearLimit
		if u.PercentUsed >= 100 {
			level = AlertExceeded
		}
		w.report(ctx, Alert{Level: level, Usage: u})
		flagged++
	}

	w.logger.InfoContext(ctx, "Startup budget check completed",
		"budgets", len(state.Budgets),
		"flagged", flagged)
	return nil
}

func (w *BudgetWorker) report(ctx context.Context, a Alert) {
	rule := a.Usage.Rule
	msg := "Budget nearly used"
	if a.Level == AlertExceeded {
		msg = "Budget exceeded"
	}
	w.logger.WarnContext(ctx, msg,
		log.FieldCategory, rule.Category,
		log.FieldPeriod, rule.Period,
		log.FieldPercentUsed, a.Usage.PercentUsed,
		"spent", core.FormatMoney(a.Usage.SpentCents, rule.Currency),
		"left", core.FormatMoney(a.Usage.LeftCents, rule.Currency),
		log.FieldExpenseID, a.ExpenseID)
	if w.notify != nil {
		w.notify(ctx, a)
	}
}

func withoutExpense(list []core.Expense, id string) []core.Expense {
	out := make([]core.Expense, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
