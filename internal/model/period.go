package model

import "fmt"

// Period is the trailing window over which historical prices are requested.
type Period string

const (
	Period1y  Period = "1y"
	Period6mo Period = "6mo"
	Period3mo Period = "3mo"
	Period1mo Period = "1mo"
	Period5d  Period = "5d"
)

// Interval is the only sampling interval the dashboard works with.
const Interval = "1d"

// Periods returns the selectable periods in display order.
func Periods() []Period {
	return []Period{Period1y, Period6mo, Period3mo, Period1mo, Period5d}
}

// ParsePeriod validates a user-supplied period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period1y, Period6mo, Period3mo, Period1mo, Period5d:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}
