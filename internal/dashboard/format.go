package dashboard

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders a price as a two-decimal, thousands-separated
// amount with the configured currency symbol, e.g. "₹1,234.56".
func FormatCurrency(symbol string, v float64) string {
	return symbol + humanize.FormatFloat("#,###.##", v)
}

// FormatChange renders the signed absolute and percent change,
// e.g. "+12.34 (+1.23%)".
func FormatChange(change, percent float64) string {
	return fmt.Sprintf("%+.2f (%+.2f%%)", change, percent)
}

// FormatCount renders an integer with thousands separators, or "-" when
// the source did not report it.
func FormatCount(v int64) string {
	if v == 0 {
		return "-"
	}
	return humanize.Comma(v)
}
