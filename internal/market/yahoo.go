package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stockdash/internal/model"
)

// YahooProvider implements Provider using the Yahoo Finance public API.
type YahooProvider struct {
	Client       *http.Client
	ChartBaseURL string
	QuoteBaseURL string
}

// NewYahooProvider creates a Yahoo Finance provider with optional proxy support.
func NewYahooProvider(proxyURL string, timeout time.Duration) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		ChartBaseURL: "https://query1.finance.yahoo.com",
		QuoteBaseURL: "https://query1.finance.yahoo.com",
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooQuote is the response structure from the Yahoo Finance quote API.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                 string   `json:"symbol"`
			LongName               string   `json:"longName"`
			ShortName              string   `json:"shortName"`
			RegularMarketPrice     *float64 `json:"regularMarketPrice"`
			RegularMarketPrevClose *float64 `json:"regularMarketPreviousClose"`
			RegularMarketVolume    int64    `json:"regularMarketVolume"`
			MarketCap              int64    `json:"marketCap"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

func (p *YahooProvider) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("yahoo: %w", ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol string, period model.Period) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.ChartBaseURL, url.PathEscape(symbol), model.Interval, period)

	var chart yahooChart
	if err := p.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo: %w: %s", ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote indicators for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	pts := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays etc.)
		}
		pts = append(pts, model.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}

	sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	return pts, nil
}

// History fetches daily closes for all symbols. Individual symbols may be
// missing from the result; History fails only when every symbol fails.
func (p *YahooProvider) History(ctx context.Context, symbols []string, period model.Period) (map[string][]model.PricePoint, error) {
	series := make(map[string][]model.PricePoint, len(symbols))
	var errs []error
	for _, sym := range symbols {
		pts, err := p.fetchChart(ctx, sym, period)
		if err != nil {
			log.Printf("[WARN] history fetch %s: %v", sym, err)
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		series[sym] = pts
	}
	if len(series) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("yahoo history: %w", errors.Join(errs...))
	}
	return series, nil
}

// Snapshot fetches the current quote record for one symbol.
func (p *YahooProvider) Snapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.QuoteBaseURL, url.QueryEscape(symbol))

	var quote yahooQuote
	if err := p.get(ctx, u, &quote); err != nil {
		return nil, err
	}
	if e := quote.QuoteResponse.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo: %w: %s", ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(quote.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("yahoo: %w: %s", ErrNotFound, symbol)
	}

	r := quote.QuoteResponse.Result[0]
	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	if name == "" {
		name = symbol
	}
	return &model.Snapshot{
		Symbol:    symbol,
		Name:      name,
		Price:     r.RegularMarketPrice,
		PrevClose: r.RegularMarketPrevClose,
		Volume:    r.RegularMarketVolume,
		MarketCap: r.MarketCap,
	}, nil
}
