package nlp

import (
	"regexp"
	"strings"
	"time"

	"quickspese/internal/core"
)

var (
	overPattern  = regexp.MustCompile(`(?i)\b(?:over|above|more\s+than)\s+([\$€£]?\s*\d+[\d,.]*(?:\.\d{1,2})?)`)
	underPattern = regexp.MustCompile(`(?i)\b(?:under|below|less\s+than)\s+([\$€£]?\s*\d+[\d,.]*(?:\.\d{1,2})?)`)
	categoryWord = regexp.MustCompile(`(?i)\bcategory\b`)

	todayWord     = regexp.MustCompile(`\btoday\b`)
	yesterdayWord = regexp.MustCompile(`\byesterday\b`)
	thisWeek      = regexp.MustCompile(`\bthis\s+week\b`)
	thisMonth     = regexp.MustCompile(`\bthis\s+month\b`)
	thisYear      = regexp.MustCompile(`\bthis\s+year\b`)
)

// BuildFilters extracts query constraints from a show or total request.
// Free-text search is never derived from the sentence.
func (p *Parser) BuildFilters(text string) core.QueryFilters {
	return p.buildFilters(text, p.now())
}

func (p *Parser) buildFilters(text string, now time.Time) core.QueryFilters {
	var f core.QueryFilters
	lower := strings.ToLower(text)

	if m := overPattern.FindStringSubmatch(text); m != nil {
		if cents, ok := ParseAmountCents(m[1]); ok {
			f.MinCents = &cents
		}
	}
	if m := underPattern.FindStringSubmatch(text); m != nil {
		if cents, ok := ParseAmountCents(m[1]); ok {
			f.MaxCents = &cents
		}
	}

	if cat := ExtractCategory(text); cat != core.GeneralCategory || categoryWord.MatchString(text) {
		f.Category = &cat
	}

	var (
		start, end time.Time
		ok         bool
	)
	// Fixed phrases are tried in this order, not by position in the text.
	switch {
	case todayWord.MatchString(lower):
		start, end, ok = startOfDay(now), endOfDay(now), true
	case yesterdayWord.MatchString(lower):
		y := now.AddDate(0, 0, -1)
		start, end, ok = startOfDay(y), endOfDay(y), true
	case thisWeek.MatchString(lower):
		start, end = calendarSpan(now, "week", 0, p.weekStart)
		ok = true
	case thisMonth.MatchString(lower):
		start, end = calendarSpan(now, "month", 0, p.weekStart)
		ok = true
	case thisYear.MatchString(lower):
		start, end = calendarSpan(now, "year", 0, p.weekStart)
		ok = true
	default:
		start, end, ok = resolveSpan(lower, now, p.weekStart)
	}
	if ok {
		f = f.WithRange(start, end)
	}
	return f
}
