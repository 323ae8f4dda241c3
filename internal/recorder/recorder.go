package recorder

import "time"

// FetchRecord describes one dashboard fetch for the audit log: what was
// requested, whether the cache served it, and what came back.
type FetchRecord struct {
	Symbols       []string
	Period        string
	CacheHit      bool
	QuoteCount    int
	FailedSymbols []string
	Duration      time.Duration
	Err           string
}

// Recorder persists fetch activity for operational analysis.
type Recorder interface {
	RecordFetch(rec *FetchRecord) error
	Close() error
}
