package dashboard

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatLitres renders a stock quantity, e.g. "100L"
func FormatLitres(d decimal.Decimal) string {
	return d.String() + "L"
}

// FormatRupees renders an amount, e.g. "₹5000"
func FormatRupees(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₹" + d.Neg().String()
	}
	return "₹" + d.String()
}

// FormatDifference renders a signed quantity change, e.g. "+1" or "-0.5"
func FormatDifference(diff float64) string {
	s := strconv.FormatFloat(diff, 'f', -1, 64)
	if diff > 0 {
		return "+" + s
	}
	return s
}
