package nlp

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// amountPattern finds the first optionally symbol-prefixed signed number.
	amountPattern = regexp.MustCompile(`(?:\$|€|£)?\s*(-?\d+(?:\.\d+)?)`)

	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseAmountCents extracts the first monetary quantity in text and returns
// it in cents, rounded half away from zero. Thousands separators are
// ignored. The second result is false when no number is present or the
// value does not fit in an int64.
//
// Examples:
//
//	ParseAmountCents("$4.50")   -> 450, true
//	ParseAmountCents("1,234.5") -> 123450, true
//	ParseAmountCents("4.455")   -> 446, true
//	ParseAmountCents("abc")     -> 0, false
func ParseAmountCents(text string) (int64, bool) {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	m := amountPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, false
	}
	value, err := decimal.NewFromString(m[1])
	if err != nil {
		return 0, false
	}
	cents := value.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, false
	}
	return cents.IntPart(), true
}
