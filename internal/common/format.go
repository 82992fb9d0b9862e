package common

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatMoney renders a currency amount with thousands separators and two
// decimals, e.g. "$1,234.50" or "$-10.00".
func FormatMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPercent renders a percentage with two decimals, e.g. "-3.33%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatRatio renders a ratio with two decimals, or "n/a" when it is not a
// finite number.
func FormatRatio(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
