package nlp

import (
	"regexp"
	"strings"

	"quickspese/internal/core"
)

var (
	// "for the" is listed first so the article is skipped when present.
	connectivePattern   = regexp.MustCompile(`(?i)\b(?:for\s+the|for|on|at)\s+([\w\s-]{2,})`)
	relativeDatePattern = regexp.MustCompile(`(?i)\b(?:yesterday|today|tomorrow|last\s+\w+|next\s+\w+)\b`)
	bareTimePattern     = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\b`)
	knownCategories     = regexp.MustCompile(`(?i)\b(grocer(?:y|ies)|food|lunch|dinner|coffee|transport|gas|fuel|uber|lyft|rent|utilities|entertainment|shopping|health|medical|travel|flight|hotel|subscriptions?)\b`)
)

// ExtractCategory infers a short lowercase category label for text.
//
// The phrase after the first "for", "on" or "at" wins, minus relative date
// words and a bare time of day. Otherwise the first known category keyword
// is used. Failing both, the category is "general".
func ExtractCategory(text string) string {
	if m := connectivePattern.FindStringSubmatch(text); m != nil {
		phrase := replaceFirst(relativeDatePattern, m[1], "")
		phrase = replaceFirst(bareTimePattern, phrase, "")
		if fields := strings.Fields(phrase); len(fields) > 0 {
			return CanonicalCategory(fields[0])
		}
	}
	if m := knownCategories.FindString(text); m != "" {
		return CanonicalCategory(m)
	}
	return core.GeneralCategory
}

// CanonicalCategory lowercases word and folds the plural "-ies" form of a
// known category keyword ("groceries", "utilities") to "-y", so that budget
// rules and expenses agree on one spelling.
func CanonicalCategory(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if strings.HasSuffix(w, "ies") && knownCategories.MatchString(w) {
		return strings.TrimSuffix(w, "ies") + "y"
	}
	return w
}

// replaceFirst replaces only the leftmost match of re in s.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
