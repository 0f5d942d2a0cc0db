package nlp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quickspese/internal/core"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"$4.50", 450, true},
		{"1,234.5", 123450, true},
		{"4.455", 446, true},
		{"4.445", 445, true},
		{"-3", -300, true},
		{"€20", 2000, true},
		{"spent 20 on lunch", 2000, true},
		{"over 20 under 50", 2000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseAmountCents(tc.in)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	cases := map[string]core.Currency{
		"20€ lunch":   core.EUR,
		"£5 sandwich": core.GBP,
		"500 INR":     core.INR,
		"₹500":        core.INR,
		"10 CAD":      core.CAD,
		"10 cad":      core.USD,
		"AUD 3":       core.AUD,
		"¥100":        core.JPY,
		"20 lunch":    core.USD,
	}
	for in, want := range cases {
		require.Equal(t, want, DetectCurrency(in), in)
	}
}

func TestExtractCategory(t *testing.T) {
	cases := map[string]string{
		"spent 20 on lunch":               "lunch",
		"total for uber last month":       "uber",
		"show groceries this month":       "grocery",
		"paid 5 for the movie":            "movie",
		"spent 12 at Starbucks yesterday": "starbucks",
		"lunch on today":                  "lunch",
		"bought stuff":                    core.GeneralCategory,
		"utilities 80":                    "utility",
		"subscriptions":                   "subscriptions",
	}
	for in, want := range cases {
		require.Equal(t, want, ExtractCategory(in), in)
	}
}

func TestCanonicalCategory(t *testing.T) {
	require.Equal(t, "grocery", CanonicalCategory("Groceries"))
	require.Equal(t, "series", CanonicalCategory("series"))
	require.Equal(t, "food", CanonicalCategory(" food "))
}
