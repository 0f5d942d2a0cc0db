package core

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		cents int64
		cur   Currency
		out   string
	}{
		{450, USD, "$4.50"},
		{5, EUR, "€0.05"},
		{-300, EUR, "-€3.00"},
		{123450, USD, "$1,234.50"},
		{100, GBP, "£1.00"},
		{2000, INR, "₹20.00"},
		{700, "", "$7.00"},
		{100, CAD, "CA$1.00"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.cents, tc.cur); got != tc.out {
			t.Fatalf("FormatMoney(%d, %q) = %q, want %q", tc.cents, tc.cur, got, tc.out)
		}
	}
}

func TestFormatPlain(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		450:   "4.50",
		-1205: "-12.05",
		99:    "0.99",
	}
	for in, want := range cases {
		if got := FormatPlain(in); got != want {
			t.Fatalf("FormatPlain(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	m := Money{Cents: 1234, Currency: USD}
	if m.Units() != 12.34 {
		t.Fatalf("expected 12.34, got %v", m.Units())
	}
	if m.String() != "$12.34" {
		t.Fatalf("unexpected string %q", m.String())
	}
}
