package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quickspese/internal/amqp"
	"quickspese/internal/core"
	"quickspese/internal/log"
	"quickspese/internal/nlp"
	"quickspese/internal/storage"
)

// EventPublisher announces applied commands. *amqp.Client implements it.
type EventPublisher interface {
	PublishCommandEvent(ctx context.Context, ev amqp.CommandEvent) error
}

// CommandService runs sentences end to end: interpret, apply, persist and
// publish. Executions are serialised so each one sees the previous result.
type CommandService struct {
	mu        sync.Mutex
	store     storage.StateStore
	parser    *nlp.Parser
	publisher EventPublisher
	logger    *log.Logger
	sl        *log.StructuredLogger

	now       func() time.Time
	newID     func() string
	undoLimit int
	weekStart time.Weekday
}

// Option configures a CommandService.
type Option func(*CommandService)

// WithPublisher enables command events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *CommandService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *CommandService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for expense ids, default dates and
// summaries. The parser keeps its own clock.
func WithClock(now func() time.Time) Option {
	return func(s *CommandService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *CommandService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithUndoLimit caps the undo stack; zero or less keeps every snapshot.
func WithUndoLimit(n int) Option {
	return func(s *CommandService) { s.undoLimit = n }
}

// WithWeekStart sets the first day of the week for weekly budgets.
func WithWeekStart(d time.Weekday) Option {
	return func(s *CommandService) { s.weekStart = d }
}

func NewCommandService(store storage.StateStore, parser *nlp.Parser, opts ...Option) *CommandService {
	s := &CommandService{
		store:     store,
		parser:    parser,
		logger:    log.Nop(),
		now:       time.Now,
		weekStart: time.Sunday,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = nlp.New(nlp.WithClock(s.now), nlp.WithWeekStart(s.weekStart))
	}
	if s.newID == nil {
		s.newID = NewIDGenerator("exp", s.now)
	}
	s.logger = s.logger.WithComponent(log.ComponentCommand)
	s.sl = log.NewStructuredLogger(s.logger)
	return s
}

// Execute interprets text and applies the resulting command.
func (s *CommandService) Execute(ctx context.Context, text string) (Outcome, error) {
	cmd := s.parser.Parse(text)
	s.logger.DebugContext(ctx, "Sentence interpreted", log.FieldInput, text, log.FieldCommandKind, cmd.Kind())
	return s.apply(ctx, text, cmd)
}

// ExecuteCommand applies an already-built command, such as a delete issued
// from a list view.
func (s *CommandService) ExecuteCommand(ctx context.Context, cmd core.Command) (Outcome, error) {
	if cmd == nil {
		return Outcome{}, errors.New("nil command")
	}
	return s.apply(ctx, "", cmd)
}

func (s *CommandService) apply(ctx context.Context, input string, cmd core.Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		s.sl.LogError(ctx, "Failed to load state", err, log.OpLoad, nil)
		return Outcome{}, fmt.Errorf("load state: %w", err)
	}

	next, out, err := Apply(state, cmd, Env{Now: s.now(), NewID: s.newID, UndoLimit: s.undoLimit})
	if err != nil {
		return Outcome{}, err
	}

	if out.Changed {
		if err := s.store.Save(ctx, next); err != nil {
			s.sl.LogError(ctx, "Failed to save state", err, log.OpSave, log.NewFields().WithCommand(cmd.Kind()))
			return Outcome{}, fmt.Errorf("save state: %w", err)
		}
		s.publish(ctx, input, out)
	}

	fields := log.NewFields().WithCommand(out.Kind)
	if out.Expense != nil {
		fields = fields.WithExpense(*out.Expense)
	}
	if out.Budget != nil {
		fields = fields.WithBudget(*out.Budget)
	}
	s.sl.LogCommand(ctx, input, fields)
	return out, nil
}

// publish never fails the command: the state is already saved.
func (s *CommandService) publish(ctx context.Context, input string, out Outcome) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewCommandEvent(out.Kind, input, out.Message)
	ev.Expense = out.Expense
	ev.Budget = out.Budget
	if err := s.publisher.PublishCommandEvent(ctx, *ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish command event",
			log.FieldCommandKind, out.Kind, log.FieldError, err)
	}
}

// List returns the expenses matching f, newest first.
func (s *CommandService) List(ctx context.Context, f core.QueryFilters) ([]core.Expense, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(state.Expenses), nil
}

// Summary computes the overview for the current clock.
func (s *CommandService) Summary(ctx context.Context) (core.Summary, error) {
	state, err := s.load(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return Summarize(state, s.now(), s.weekStart), nil
}

// State returns the persisted state.
func (s *CommandService) State(ctx context.Context) (core.State, error) {
	return s.load(ctx)
}

func (s *CommandService) load(ctx context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.store.Load(ctx)
	if err != nil {
		return core.State{}, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}

// Close releases the store.
func (s *CommandService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
