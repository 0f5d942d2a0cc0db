package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// bias picks a year or week for ambiguous dates such as "friday" or "3/5".
type bias int

const (
	// biasForward prefers the next occurrence, counting today.
	biasForward bias = iota
	// biasBackward prefers the most recent occurrence, counting today.
	biasBackward
)

const (
	monthNames   = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`
	weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	weekdayShort = weekdayNames + `|mon|tues?|wed|thu(?:rs?)?|fri|sat|sun`
	countWords   = `\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten`
)

var countValues = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// dateRule recognises one family of calendar phrases. resolve receives the
// submatches of re and returns the instant the phrase names.
type dateRule struct {
	name    string
	re      *regexp.Regexp
	resolve func(m []string, now time.Time, b bias, weekStart time.Weekday) (time.Time, bool)
}

// dateRules are tried against the whole text; the match that starts
// earliest wins, ties going to the rule listed first.
var dateRules = []dateRule{
	{
		name: "iso",
		re:   regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), now.Location())
		},
	},
	{
		name: "slash",
		re:   regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?\b`),
		resolve: func(m []string, now time.Time, b bias, _ time.Weekday) (time.Time, bool) {
			return monthDay(atoi(m[1]), atoi(m[2]), m[3], now, b)
		},
	},
	{
		name: "month-day",
		re:   regexp.MustCompile(`\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`),
		resolve: func(m []string, now time.Time, b bias, _ time.Weekday) (time.Time, bool) {
			return monthDay(monthIndex(m[1]), atoi(m[2]), m[3], now, b)
		},
	},
	{
		name: "day-month",
		re:   regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\b\.?(?:,?\s+(\d{4})\b)?`),
		resolve: func(m []string, now time.Time, b bias, _ time.Weekday) (time.Time, bool) {
			return monthDay(monthIndex(m[2]), atoi(m[1]), m[3], now, b)
		},
	},
	{
		name: "day-before-after",
		re:   regexp.MustCompile(`\b(?:the\s+)?day\s+(before\s+yesterday|after\s+tomorrow)\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			if strings.HasPrefix(m[1], "before") {
				return now.AddDate(0, 0, -2), true
			}
			return now.AddDate(0, 0, 2), true
		},
	},
	{
		name: "relative-day",
		re:   regexp.MustCompile(`\b(today|tonight|yesterday|tomorrow)\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			switch m[1] {
			case "yesterday":
				return now.AddDate(0, 0, -1), true
			case "tomorrow":
				return now.AddDate(0, 0, 1), true
			default:
				return now, true
			}
		},
	},
	{
		name: "modified-weekday",
		re:   regexp.MustCompile(`\b(last|past|previous|next|coming|this)\s+(` + weekdayShort + `)\b`),
		resolve: func(m []string, now time.Time, _ bias, weekStart time.Weekday) (time.Time, bool) {
			target, ok := weekdayIndex(m[2])
			if !ok {
				return time.Time{}, false
			}
			var day time.Time
			switch m[1] {
			case "last", "past", "previous":
				diff := (int(now.Weekday()) - int(target) + 7) % 7
				if diff == 0 {
					diff = 7
				}
				day = now.AddDate(0, 0, -diff)
			case "next", "coming":
				diff := (int(target) - int(now.Weekday()) + 7) % 7
				if diff == 0 {
					diff = 7
				}
				day = now.AddDate(0, 0, diff)
			default:
				offset := (int(target) - int(weekStart) + 7) % 7
				day = startOfWeek(now, weekStart).AddDate(0, 0, offset)
			}
			return atNoon(day), true
		},
	},
	{
		name: "period-offset",
		re:   regexp.MustCompile(`\b(last|past|previous|next|this)\s+(week|month|year)\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			n := 0
			switch m[1] {
			case "last", "past", "previous":
				n = -1
			case "next":
				n = 1
			}
			return shift(now, m[2], n), true
		},
	},
	{
		name: "ago",
		re:   regexp.MustCompile(`\b(` + countWords + `)\s+(day|week|month|year)s?\s+ago\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			n, ok := count(m[1])
			if !ok {
				return time.Time{}, false
			}
			return shift(now, m[2], -n), true
		},
	},
	{
		name: "in",
		re:   regexp.MustCompile(`\bin\s+(` + countWords + `)\s+(day|week|month|year)s?\b`),
		resolve: func(m []string, now time.Time, _ bias, _ time.Weekday) (time.Time, bool) {
			n, ok := count(m[1])
			if !ok {
				return time.Time{}, false
			}
			return shift(now, m[2], n), true
		},
	},
	{
		name: "weekday",
		re:   regexp.MustCompile(`\b(` + weekdayNames + `)\b`),
		resolve: func(m []string, now time.Time, b bias, _ time.Weekday) (time.Time, bool) {
			target, ok := weekdayIndex(m[1])
			if !ok {
				return time.Time{}, false
			}
			if b == biasBackward {
				diff := (int(now.Weekday()) - int(target) + 7) % 7
				return atNoon(now.AddDate(0, 0, -diff)), true
			}
			diff := (int(target) - int(now.Weekday()) + 7) % 7
			return atNoon(now.AddDate(0, 0, diff)), true
		},
	},
}

var (
	meridiemPattern = regexp.MustCompile(`\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm)\b`)
	clockPattern    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	namedTime       = regexp.MustCompile(`\b(noon|midday|midnight)\b`)

	spanPattern     = regexp.MustCompile(`\b(?:from|between)\s+(.+?)\s+(?:to|until|till|through|and)\s+(.+)`)
	sincePattern    = regexp.MustCompile(`\bsince\s+(.+)`)
	calendarPattern = regexp.MustCompile(`\b(last|past|previous|next|this)\s+(week|month|year)\b`)
	inMonthPattern  = regexp.MustCompile(`\bin\s+(` + monthNames + `)\b(?:\s+(\d{4})\b)?`)
)

// resolvePoint finds the first calendar phrase in lower and an optional time
// of day. found is false when text names neither.
func resolvePoint(lower string, now time.Time, b bias, weekStart time.Weekday) (at time.Time, found bool) {
	at, _, found = locatePoint(lower, now, b, weekStart)
	return at, found
}

// locatePoint is resolvePoint that also returns the byte ranges of the
// calendar and time-of-day phrases it used.
func locatePoint(lower string, now time.Time, b bias, weekStart time.Weekday) (at time.Time, spans [][2]int, found bool) {
	best := -1
	var bestSpan [2]int
	for _, r := range dateRules {
		idx := r.re.FindStringSubmatchIndex(lower)
		if idx == nil || (best != -1 && idx[0] >= best) {
			continue
		}
		t, ok := r.resolve(submatches(lower, idx), now, b, weekStart)
		if !ok {
			continue
		}
		best, at = idx[0], t
		bestSpan = [2]int{idx[0], idx[1]}
	}
	found = best != -1
	if found {
		spans = append(spans, bestSpan)
	}

	hour, minute, clockSpan, hasClock := timeOfDay(lower)
	if !hasClock {
		return at, spans, found
	}
	if !found {
		at = now
	}
	y, mo, d := at.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, at.Location()), append(spans, clockSpan), true
}

// cutSpans removes the byte ranges in spans from s.
func cutSpans(s string, spans [][2]int) string {
	drop := make([]bool, len(s))
	for _, sp := range spans {
		for i := sp[0]; i < sp[1] && i < len(s); i++ {
			drop[i] = true
		}
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if !drop[i] {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// resolveSpan interprets lower as a date range. Single instants widen to
// their whole calendar day.
func resolveSpan(lower string, now time.Time, weekStart time.Weekday) (start, end time.Time, ok bool) {
	if m := spanPattern.FindStringSubmatch(lower); m != nil {
		a, okA := resolvePoint(m[1], now, biasBackward, weekStart)
		b, okB := resolvePoint(m[2], now, biasBackward, weekStart)
		if okA && okB {
			if b.Before(a) {
				a, b = b, a
			}
			return startOfDay(a), endOfDay(b), true
		}
	}
	if m := sincePattern.FindStringSubmatch(lower); m != nil {
		if a, ok := resolvePoint(m[1], now, biasBackward, weekStart); ok {
			return startOfDay(a), endOfDay(now), true
		}
	}
	if m := calendarPattern.FindStringSubmatch(lower); m != nil {
		n := 0
		switch m[1] {
		case "last", "past", "previous":
			n = -1
		case "next":
			n = 1
		}
		start, end = calendarSpan(now, m[2], n, weekStart)
		return start, end, true
	}
	if m := inMonthPattern.FindStringSubmatch(lower); m != nil {
		year := now.Year()
		if m[2] != "" {
			year = atoi(m[2])
		}
		start = time.Date(year, time.Month(monthIndex(m[1])), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), true
	}
	if t, ok := resolvePoint(lower, now, biasBackward, weekStart); ok {
		return startOfDay(t), endOfDay(t), true
	}
	return time.Time{}, time.Time{}, false
}

// calendarSpan returns the bounds of the week, month or year containing now,
// moved by n units.
func calendarSpan(now time.Time, unit string, n int, weekStart time.Weekday) (time.Time, time.Time) {
	y, mo, _ := now.Date()
	loc := now.Location()
	switch unit {
	case "week":
		start := startOfWeek(now, weekStart).AddDate(0, 0, 7*n)
		return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case "year":
		start := time.Date(y+n, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default:
		start := time.Date(y, mo+time.Month(n), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
}

func timeOfDay(lower string) (hour, minute int, span [2]int, ok bool) {
	if m := meridiemPattern.FindStringSubmatchIndex(lower); m != nil {
		h := atoi(lower[m[2]:m[3]])
		if h >= 1 && h <= 12 {
			if m[4] >= 0 {
				minute = atoi(lower[m[4]:m[5]])
			}
			h %= 12
			if lower[m[6]:m[7]] == "pm" {
				h += 12
			}
			return h, minute, [2]int{m[0], m[1]}, true
		}
	}
	if m := clockPattern.FindStringSubmatchIndex(lower); m != nil {
		return atoi(lower[m[2]:m[3]]), atoi(lower[m[4]:m[5]]), [2]int{m[0], m[1]}, true
	}
	if m := namedTime.FindStringSubmatchIndex(lower); m != nil {
		if lower[m[2]:m[3]] == "midnight" {
			return 0, 0, [2]int{m[0], m[1]}, true
		}
		return 12, 0, [2]int{m[0], m[1]}, true
	}
	return 0, 0, [2]int{}, false
}

// monthDay builds a calendar date, choosing the year by bias when rawYear is
// empty. Two-digit years fall in the 2000s.
func monthDay(month, day int, rawYear string, now time.Time, b bias) (time.Time, bool) {
	if rawYear != "" {
		year := atoi(rawYear)
		if len(rawYear) == 2 {
			year += 2000
		}
		return calendarDate(year, month, day, now.Location())
	}
	t, ok := calendarDate(now.Year(), month, day, now.Location())
	if !ok {
		// Feb 29 outside a leap year: try the neighbouring year.
		step := 1
		if b == biasBackward {
			step = -1
		}
		return calendarDate(now.Year()+step, month, day, now.Location())
	}
	today := startOfDay(now)
	switch {
	case b == biasForward && t.Before(today):
		return calendarDate(now.Year()+1, month, day, now.Location())
	case b == biasBackward && t.After(endOfDay(now)):
		return calendarDate(now.Year()-1, month, day, now.Location())
	}
	return t, true
}

// calendarDate returns noon on the given day, rejecting overflowing dates
// such as 2/30.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func shift(t time.Time, unit string, n int) time.Time {
	switch unit {
	case "day":
		return t.AddDate(0, 0, n)
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(n, 0, 0)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func atNoon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func monthIndex(name string) int {
	switch {
	case strings.HasPrefix(name, "jan"):
		return 1
	case strings.HasPrefix(name, "feb"):
		return 2
	case strings.HasPrefix(name, "mar"):
		return 3
	case strings.HasPrefix(name, "apr"):
		return 4
	case strings.HasPrefix(name, "may"):
		return 5
	case strings.HasPrefix(name, "jun"):
		return 6
	case strings.HasPrefix(name, "jul"):
		return 7
	case strings.HasPrefix(name, "aug"):
		return 8
	case strings.HasPrefix(name, "sep"):
		return 9
	case strings.HasPrefix(name, "oct"):
		return 10
	case strings.HasPrefix(name, "nov"):
		return 11
	case strings.HasPrefix(name, "dec"):
		return 12
	}
	return 0
}

func weekdayIndex(name string) (time.Weekday, bool) {
	switch {
	case strings.HasPrefix(name, "sun"):
		return time.Sunday, true
	case strings.HasPrefix(name, "mon"):
		return time.Monday, true
	case strings.HasPrefix(name, "tue"):
		return time.Tuesday, true
	case strings.HasPrefix(name, "wed"):
		return time.Wednesday, true
	case strings.HasPrefix(name, "thu"):
		return time.Thursday, true
	case strings.HasPrefix(name, "fri"):
		return time.Friday, true
	case strings.HasPrefix(name, "sat"):
		return time.Saturday, true
	}
	return 0, false
}

// ParseWeekday maps a day name such as "monday" or "Sun" to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	return weekdayIndex(strings.ToLower(strings.TrimSpace(name)))
}

func count(word string) (int, bool) {
	if n, ok := countValues[word]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	return n, err == nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}
