// Package renderer turns portfolio snapshots into markdown for terminal
// display. It owns all formatting; the accounting package stays plain.
package renderer

import (
	"fmt"
	"math"
	"slices"

	"github.com/Rhymond/go-money"
)

// sortedKeys returns the map keys in sorted order, for stable tables.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Amount formats a monetary value with its currency's symbol and minor
// unit conventions. Unknown currency codes fall back to a plain decimal.
func Amount(v float64, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", v, code)
	}
	units := int64(math.Round(v * math.Pow10(cur.Fraction)))
	return money.New(units, code).Display()
}

// SignedAmount is like Amount with an explicit sign, and "-" for zero.
// Gains columns read better this way.
func SignedAmount(v float64, code string) string {
	if v == 0 {
		return "-"
	}
	if v > 0 {
		return "+" + Amount(v, code)
	}
	return Amount(v, code)
}

// quantity formats a position quantity without trailing zeros.
func quantity(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// name truncates an instrument name for table display.
func name(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
