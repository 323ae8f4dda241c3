package model

import "time"

// Snapshot is the raw per-ticker record as returned by the data source.
// Price and PrevClose are pointers because the source may omit either.
type Snapshot struct {
	Symbol    string
	Name      string
	Price     *float64
	PrevClose *float64
	Volume    int64
	MarketCap int64
}

// Quote is a validated point-in-time quote with derived change fields.
// A Quote exists only when both price and previous close were reported
// and the previous close is non-zero.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	Volume        int64   `json:"volume,omitempty"`
	MarketCap     int64   `json:"market_cap,omitempty"`
}

// ErrorKind classifies why a ticker produced no quote.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"   // the source does not know the symbol
	KindUnavailable ErrorKind = "unavailable" // transient source or network failure
	KindIncomplete  ErrorKind = "incomplete"  // data returned but price or prev close unusable
)

// TickerError records a per-ticker lookup failure. Tickers with an entry
// here are exactly those absent from FetchResult.Quotes.
type TickerError struct {
	Symbol  string    `json:"symbol"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// FetchResult is the combined outcome of one dashboard fetch.
type FetchResult struct {
	History   HistoryTable     `json:"history"`
	Quotes    map[string]Quote `json:"quotes"`
	Errors    []TickerError    `json:"errors,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// EmptyResult returns a FetchResult with no data, used for the empty
// ticker set and for total fetch failures.
func EmptyResult() *FetchResult {
	return &FetchResult{Quotes: map[string]Quote{}}
}

// Missing returns the requested symbols that have no quote, in request order.
func (r *FetchResult) Missing(requested []string) []string {
	missing := make([]string, 0)
	for _, s := range requested {
		if _, ok := r.Quotes[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
