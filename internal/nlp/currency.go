package nlp

import (
	"regexp"

	"quickspese/internal/core"
)

// currencyChecks run in order; the first hit wins.
var currencyChecks = []struct {
	re       *regexp.Regexp
	currency core.Currency
}{
	{regexp.MustCompile(`€|\bEUR\b`), core.EUR},
	{regexp.MustCompile(`£|\bGBP\b`), core.GBP},
	{regexp.MustCompile(`\bINR\b|₹`), core.INR},
	{regexp.MustCompile(`\bCAD\b`), core.CAD},
	{regexp.MustCompile(`\bAUD\b`), core.AUD},
	{regexp.MustCompile(`\bJPY\b|¥`), core.JPY},
}

// DetectCurrency infers the currency of text from symbols and upper-case
// ISO codes, defaulting to USD.
func DetectCurrency(text string) core.Currency {
	for _, c := range currencyChecks {
		if c.re.MatchString(text) {
			return c.currency
		}
	}
	return core.DefaultCurrency
}
