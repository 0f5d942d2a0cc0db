// Package core provides money parsing and handling utilities.
//
// This file contains helpers for converting between cents and display
// strings. Cents stay the unit of calculation everywhere; floats only
// appear at the formatting edge.
package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount of minor currency units in a given currency.
type Money struct {
	Cents    int64    `json:"cents"`
	Currency Currency `json:"currency"`
}

var symbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	CAD: "CA$",
	AUD: "A$",
	INR: "₹",
	JPY: "¥",
}

// Symbol returns the display symbol for c, falling back to the code itself.
func (c Currency) Symbol() string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c)
}

// Units returns the major-unit value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats m with its currency symbol and English digit grouping,
// e.g. "$1,234.50" or "-€3.00".
func (m Money) String() string {
	return FormatMoney(m.Cents, m.Currency)
}

var printer = message.NewPrinter(language.English)

// FormatMoney formats cents as a currency string using a fixed English
// locale for thousands and decimal separators.
func FormatMoney(cents int64, c Currency) string {
	if c == "" {
		c = DefaultCurrency
	}
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := printer.Sprintf("%d", cents/100)
	s := c.Symbol() + whole + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatPlain renders cents as "12.34" without currency or grouping.
func FormatPlain(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < 2 {
		s = strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
