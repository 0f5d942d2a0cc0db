// Package nlp turns short English sentences such as "spent 12.50 on lunch
// yesterday" into typed commands.
//
// Interpretation is deterministic for a given clock: the Parser reads the
// time once per call and every relative date is resolved against it.
package nlp

import (
	"strings"
	"time"

	"quickspese/internal/core"
)

// Parser classifies free text into core.Command values. The zero value is
// not usable; construct one with New.
type Parser struct {
	now       func() time.Time
	weekStart time.Weekday
	rules     []Rule
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the reference clock used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithWeekStart sets the first day of the week for "this week" style spans.
func WithWeekStart(d time.Weekday) Option {
	return func(p *Parser) { p.weekStart = d }
}

// WithRules replaces the classification table.
func WithRules(rules []Rule) Option {
	return func(p *Parser) { p.rules = rules }
}

// New returns a Parser using the system clock, Sunday week start and the
// default rule table unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{
		now:       time.Now,
		weekStart: time.Sunday,
		rules:     Rules(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse classifies text with a Parser on the system clock.
func Parse(text string) core.Command {
	return defaultParser.Parse(text)
}

// Parse classifies text. It never fails: unrecognised input yields
// core.Help.
func (p *Parser) Parse(text string) core.Command {
	trimmed := strings.TrimSpace(text)
	in := Input{
		Text:  trimmed,
		Lower: strings.ToLower(trimmed),
		Now:   p.now(),
	}
	for _, r := range p.rules {
		if cmd, ok := r.Match(p, in); ok {
			return cmd
		}
	}
	return core.Help{}
}

// ResolveDate returns the instant named by the first date phrase in text,
// preferring future interpretations of bare weekdays and month-days. Text
// without a date phrase resolves to now.
func (p *Parser) ResolveDate(text string) time.Time {
	return p.resolveDate(text, p.now())
}

func (p *Parser) resolveDate(text string, now time.Time) time.Time {
	if t, ok := resolvePoint(strings.ToLower(text), now, biasForward, p.weekStart); ok {
		return t
	}
	return now
}

// ResolveRange returns the inclusive bounds named by text: an explicit
// span ("from march 1 to march 5"), a calendar period ("last month"), or a
// single day widened to midnight through 23:59:59.999999999. ok is false
// when text names no date.
func (p *Parser) ResolveRange(text string) (start, end time.Time, ok bool) {
	return resolveSpan(strings.ToLower(text), p.now(), p.weekStart)
}
