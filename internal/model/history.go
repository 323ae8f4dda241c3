package model

import (
	"sort"
	"time"
)

// PricePoint is one daily closing price.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// HistoryRow is the closes of all tickers on one trading day. A ticker
// without data for that day has no entry in Close.
type HistoryRow struct {
	Date  time.Time
	Close map[string]float64
}

// HistoryTable aligns per-ticker daily series into a table keyed by date
// (rows) and ticker (columns), date ascending.
type HistoryTable struct {
	Symbols []string
	Rows    []HistoryRow
}

// Empty reports whether the table has no rows.
func (t HistoryTable) Empty() bool { return len(t.Rows) == 0 }

// Series extracts one ticker's column, skipping dates without data.
func (t HistoryTable) Series(symbol string) []PricePoint {
	pts := make([]PricePoint, 0, len(t.Rows))
	for _, row := range t.Rows {
		if c, ok := row.Close[symbol]; ok {
			pts = append(pts, PricePoint{Date: row.Date, Close: c})
		}
	}
	return pts
}

// BuildHistoryTable merges per-ticker series over the union of their dates.
// Column order is the sorted symbol set; duplicate dates within one series
// keep the last value.
func BuildHistoryTable(series map[string][]PricePoint) HistoryTable {
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	byDate := make(map[time.Time]map[string]float64)
	for sym, pts := range series {
		for _, p := range pts {
			d := p.Date.Truncate(24 * time.Hour)
			if byDate[d] == nil {
				byDate[d] = make(map[string]float64, len(series))
			}
			byDate[d][sym] = p.Close
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]HistoryRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, HistoryRow{Date: d, Close: byDate[d]})
	}
	return HistoryTable{Symbols: symbols, Rows: rows}
}
