package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"stockdash/internal/cache"
	"stockdash/internal/model"
	"stockdash/internal/recorder"
)

// Fetcher retrieves history and quotes for a set of tickers, serving
// repeated identical requests from a short-lived cache.
type Fetcher struct {
	Provider Provider
	Cache    *cache.Cache
	Recorder recorder.Recorder
}

// NewFetcher creates a Fetcher.
func NewFetcher(p Provider, c *cache.Cache, rec recorder.Recorder) *Fetcher {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Fetcher{Provider: p, Cache: c, Recorder: rec}
}

// NormalizeSymbols trims, upper-cases, deduplicates, and sorts tickers.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fetch retrieves the history table and quote mapping for the tickers.
//
// An empty ticker set returns empty results with no provider calls. A
// failed history batch returns empty results plus the error; the caller
// renders a message instead of crashing. Per-ticker snapshot failures
// never abort the batch: the ticker is omitted from Quotes and the reason
// recorded in Errors.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, period model.Period) (*model.FetchResult, error) {
	syms := NormalizeSymbols(symbols)
	if len(syms) == 0 {
		return model.EmptyResult(), nil
	}

	start := time.Now()
	key := cache.NewKey(syms, period, model.Interval)
	if res, ok := f.Cache.Get(key); ok {
		f.record(syms, period, true, res, time.Since(start), nil)
		return res, nil
	}

	series, err := f.Provider.History(ctx, syms, period)
	if err != nil {
		empty := model.EmptyResult()
		wrapped := fmt.Errorf("fetch market data: %w", err)
		f.record(syms, period, false, empty, time.Since(start), wrapped)
		return empty, wrapped
	}

	res := &model.FetchResult{
		History:   model.BuildHistoryTable(series),
		Quotes:    make(map[string]model.Quote, len(syms)),
		FetchedAt: time.Now(),
	}

	for _, sym := range syms {
		snap, err := f.Provider.Snapshot(ctx, sym)
		if err != nil {
			kind := model.KindUnavailable
			if errors.Is(err, ErrNotFound) {
				kind = model.KindNotFound
			}
			res.Errors = append(res.Errors, model.TickerError{Symbol: sym, Kind: kind, Message: err.Error()})
			continue
		}
		q, ok := quoteFromSnapshot(sym, snap)
		if !ok {
			res.Errors = append(res.Errors, model.TickerError{
				Symbol:  sym,
				Kind:    model.KindIncomplete,
				Message: "price or previous close missing",
			})
			continue
		}
		res.Quotes[sym] = q
	}

	f.Cache.Put(key, res)
	f.record(syms, period, false, res, time.Since(start), nil)
	return res, nil
}

// quoteFromSnapshot validates a snapshot and derives the change fields.
// A snapshot without price or previous close, or with a zero previous
// close, yields no quote.
func quoteFromSnapshot(symbol string, snap *model.Snapshot) (model.Quote, bool) {
	if snap.Price == nil || snap.PrevClose == nil || *snap.PrevClose == 0 {
		return model.Quote{}, false
	}
	price, prev := *snap.Price, *snap.PrevClose
	change := price - prev
	name := snap.Name
	if name == "" {
		name = symbol
	}
	return model.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		PrevClose:     prev,
		Change:        change,
		PercentChange: change / prev * 100,
		Volume:        snap.Volume,
		MarketCap:     snap.MarketCap,
	}, true
}

func (f *Fetcher) record(syms []string, period model.Period, hit bool, res *model.FetchResult, d time.Duration, err error) {
	rec := &recorder.FetchRecord{
		Symbols:       syms,
		Period:        string(period),
		CacheHit:      hit,
		QuoteCount:    len(res.Quotes),
		FailedSymbols: res.Missing(syms),
		Duration:      d,
	}
	if err != nil {
		rec.Err = err.Error()
	}
	if rerr := f.Recorder.RecordFetch(rec); rerr != nil {
		log.Printf("[WARN] record fetch: %v", rerr)
	}
}
