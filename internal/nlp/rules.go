package nlp

import (
	"regexp"
	"strings"
	"time"

	"quickspese/internal/core"
)

// Input is the normalised sentence handed to each Rule.
type Input struct {
	Text  string // trimmed original casing
	Lower string
	Now   time.Time
}

// Rule is one row of the classification table. Match returns false to let
// the next rule try.
type Rule struct {
	Name  string
	Match func(p *Parser, in Input) (core.Command, bool)
}

var (
	helpPattern       = regexp.MustCompile(`\bhelp\b|\bwhat\s+can\s+i\s+say\b`)
	undoPattern       = regexp.MustCompile(`\bundo\b`)
	clearAllPattern   = regexp.MustCompile(`\bclear\s+all\b`)
	deleteLastPattern = regexp.MustCompile(`\b(?:delete|remove)\s+last\b`)
	deleteIDPattern   = regexp.MustCompile(`\b(?:delete|remove)\s+([a-z0-9]+_[a-z0-9]+_[a-z0-9]+)\b`)
	showPattern       = regexp.MustCompile(`\b(?:show|list|filter)\b`)
	totalPattern      = regexp.MustCompile(`\btotal\b|\bsum\b|\bhow\s+much\b|\bspent\s+in\s+total\b`)
	budgetPattern     = regexp.MustCompile(`(?i)\bset\s+budget\s+([\$€£]?\s*\d[\d,]*(?:\.\d{1,2})?)\s+(?:for\s+)?([\w-]+)(?:\s+(monthly|weekly))?`)
	addVerbPattern    = regexp.MustCompile(`(?i)\b(?:add|spent|spend|buy|bought|record|log)\b`)
	temporalPattern   = regexp.MustCompile(`\b(?:this|last|today|yesterday|week|month|year)\b`)

	forWord         = regexp.MustCompile(`(?i)\bfor\b`)
	amountStrip     = regexp.MustCompile(`(?i)[\$€£₹¥]?\s*\d+[\d,.]*(?:\.\d{1,2})?(?:\s*(?:[€£₹¥$]|\b(?:usd|eur|gbp|cad|aud|inr|jpy)\b))?`)
	amountLoc       = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
	edgeConnectives = regexp.MustCompile(`(?i)^(?:(?:on|at|for)\s+)+|(?:\s+(?:on|at|for))+$`)
)

// Rules returns the default classification table. Order matters: the first
// matching rule decides the command.
func Rules() []Rule {
	return []Rule{
		{Name: "blank", Match: matchBlank},
		{Name: "help", Match: matchPattern(helpPattern, core.Help{})},
		{Name: "undo", Match: matchPattern(undoPattern, core.Undo{})},
		{Name: "clear_all", Match: matchPattern(clearAllPattern, core.ClearAll{})},
		{Name: "delete_last", Match: matchPattern(deleteLastPattern, core.DeleteLast{})},
		{Name: "delete_id", Match: matchDeleteByID},
		{Name: "show", Match: matchShow},
		{Name: "total", Match: matchTotal},
		{Name: "set_budget", Match: matchSetBudget},
		{Name: "add_verb", Match: matchAddVerb},
		{Name: "add_amount", Match: matchBareAmount},
		{Name: "temporal_show", Match: matchTemporal},
		{Name: "fallback", Match: func(*Parser, Input) (core.Command, bool) { return core.Help{}, true }},
	}
}

func matchBlank(_ *Parser, in Input) (core.Command, bool) {
	return core.Help{}, in.Text == ""
}

func matchPattern(re *regexp.Regexp, cmd core.Command) func(*Parser, Input) (core.Command, bool) {
	return func(_ *Parser, in Input) (core.Command, bool) {
		return cmd, re.MatchString(in.Lower)
	}
}

func matchDeleteByID(_ *Parser, in Input) (core.Command, bool) {
	m := deleteIDPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}
	return core.DeleteByID{ID: m[1]}, true
}

func matchShow(p *Parser, in Input) (core.Command, bool) {
	if !showPattern.MatchString(in.Lower) {
		return nil, false
	}
	return core.Show{Filters: p.buildFilters(in.Text, in.Now)}, true
}

func matchTotal(p *Parser, in Input) (core.Command, bool) {
	if !totalPattern.MatchString(in.Lower) {
		return nil, false
	}
	return core.Total{Filters: p.buildFilters(in.Text, in.Now)}, true
}

func matchSetBudget(_ *Parser, in Input) (core.Command, bool) {
	m := budgetPattern.FindStringSubmatch(in.Text)
	if m == nil {
		return nil, false
	}
	cents, _ := ParseAmountCents(m[1])
	period := core.Monthly
	if strings.EqualFold(m[3], string(core.Weekly)) {
		period = core.Weekly
	}
	return core.SetBudget{
		Category:    CanonicalCategory(m[2]),
		AmountCents: cents,
		Period:      period,
		Currency:    DetectCurrency(m[1]),
	}, true
}

func matchAddVerb(p *Parser, in Input) (core.Command, bool) {
	if !addVerbPattern.MatchString(in.Text) {
		return nil, false
	}
	cents, ok := ParseAmountCents(in.Text)
	if !ok {
		return nil, false
	}
	category := ExtractCategory(in.Text)
	date, rest := p.addDate(in.Text, in.Now)
	description := cleanDescription(rest)
	if description == "" {
		description = category
	}
	return core.AddExpense{
		Description: description,
		Category:    category,
		AmountCents: cents,
		Currency:    DetectCurrency(in.Text),
		Date:        date,
	}, true
}

// matchBareAmount handles sentences like "20 lunch" that carry an amount
// but no verb. The category doubles as the description.
func matchBareAmount(p *Parser, in Input) (core.Command, bool) {
	cents, ok := ParseAmountCents(in.Text)
	if !ok {
		return nil, false
	}
	category := ExtractCategory(in.Text)
	date, _ := p.addDate(in.Text, in.Now)
	return core.AddExpense{
		Description: category,
		Category:    category,
		AmountCents: cents,
		Currency:    DetectCurrency(in.Text),
		Date:        date,
	}, true
}

func matchTemporal(p *Parser, in Input) (core.Command, bool) {
	if !temporalPattern.MatchString(in.Lower) {
		return nil, false
	}
	return core.Show{Filters: p.buildFilters(in.Text, in.Now)}, true
}

// addDate resolves the date of an add sentence with the amount blanked
// out, so "bought 2 may 5" is May 5 and not May 2. rest is text without
// the date and time-of-day phrases.
func (p *Parser) addDate(text string, now time.Time) (date time.Time, rest string) {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding moved byte offsets; spans would not line up.
		return p.resolveDate(text, now), text
	}
	if loc := amountLoc.FindStringIndex(lower); loc != nil {
		lower = lower[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + lower[loc[1]:]
	}
	at, spans, ok := locatePoint(lower, now, biasForward, p.weekStart)
	if !ok {
		return now, text
	}
	return at, cutSpans(text, spans)
}

// cleanDescription strips the verb, the first "for", the amount and any
// relative date words, then trims dangling connectives.
func cleanDescription(text string) string {
	s := replaceFirst(addVerbPattern, text, "")
	s = replaceFirst(forWord, s, "")
	s = replaceFirst(amountStrip, s, "")
	s = relativeDatePattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(edgeConnectives.ReplaceAllString(s, ""))
}
