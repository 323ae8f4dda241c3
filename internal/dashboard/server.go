package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"stockdash/internal/market"
	"stockdash/internal/model"
)

//go:embed assets/index.html
var assets embed.FS

// Options carries the presentation settings the handlers need.
type Options struct {
	Title          string
	CurrencySymbol string
	Catalog        []string
	DefaultSymbols []string
	DefaultPeriod  model.Period
	RequestTimeout time.Duration
}

// Server serves the dashboard page and its JSON API.
type Server struct {
	Fetcher *market.Fetcher
	Opts    Options
	tmpl    *template.Template
}

// NewServer creates a dashboard server.
func NewServer(f *market.Fetcher, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, err
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{Fetcher: f, Opts: opts, tmpl: tmpl}, nil
}

// Handler builds the full HTTP handler with middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/catalog", s.handleCatalog)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	return recoverPanic(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, map[string]string{"Title": s.Opts.Title}); err != nil {
		log.Printf("[ERROR] render index: %v", err)
	}
}

type catalogResponse struct {
	Title          string   `json:"title"`
	CurrencySymbol string   `json:"currency_symbol"`
	Catalog        []string `json:"catalog"`
	DefaultSymbols []string `json:"default_symbols"`
	Periods        []string `json:"periods"`
	DefaultPeriod  string   `json:"default_period"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	periods := make([]string, 0, len(model.Periods()))
	for _, p := range model.Periods() {
		periods = append(periods, string(p))
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Title:          s.Opts.Title,
		CurrencySymbol: s.Opts.CurrencySymbol,
		Catalog:        s.Opts.Catalog,
		DefaultSymbols: s.Opts.DefaultSymbols,
		Periods:        periods,
		DefaultPeriod:  string(s.Opts.DefaultPeriod),
	})
}

// quoteCard is one rendered metric card.
type quoteCard struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	PriceText     string  `json:"price_text"`
	ChangeText    string  `json:"change_text"`
	VolumeText    string  `json:"volume_text"`
	MarketCapText string  `json:"market_cap_text"`
	Negative      bool    `json:"negative"`
}

type chartSeries struct {
	Symbol string    `json:"symbol"`
	Dates  []string  `json:"dates"`
	Closes []float64 `json:"closes"`
}

type dashboardResponse struct {
	Cards     []quoteCard         `json:"cards"`
	Missing   []string            `json:"missing"`
	Errors    []model.TickerError `json:"errors,omitempty"`
	Chart     []chartSeries       `json:"chart"`
	FetchedAt time.Time           `json:"fetched_at"`
	Error     string              `json:"error,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols := market.NormalizeSymbols(splitCSV(r.URL.Query().Get("symbols")))

	periodParam := r.URL.Query().Get("period")
	if periodParam == "" {
		periodParam = string(s.Opts.DefaultPeriod)
	}
	period, err := model.ParsePeriod(periodParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.Opts.RequestTimeout)
	defer cancel()

	res, err := s.Fetcher.Fetch(ctx, symbols, period)
	resp := dashboardResponse{
		Cards:     s.cards(symbols, res),
		Missing:   res.Missing(symbols),
		Errors:    res.Errors,
		Chart:     chartFromTable(res.History),
		FetchedAt: res.FetchedAt,
	}
	// A data-source outage degrades to an empty dashboard with a message,
	// never an error status.
	if err != nil {
		log.Printf("[ERROR] dashboard fetch: %v", err)
		resp.Error = "Error fetching market data: " + err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) cards(symbols []string, res *model.FetchResult) []quoteCard {
	cards := make([]quoteCard, 0, len(res.Quotes))
	for _, sym := range symbols {
		q, ok := res.Quotes[sym]
		if !ok {
			continue
		}
		cards = append(cards, quoteCard{
			Symbol:        q.Symbol,
			Name:          q.Name,
			Price:         q.Price,
			Change:        q.Change,
			PercentChange: q.PercentChange,
			PriceText:     FormatCurrency(s.Opts.CurrencySymbol, q.Price),
			ChangeText:    FormatChange(q.Change, q.PercentChange),
			VolumeText:    FormatCount(q.Volume),
			MarketCapText: FormatCount(q.MarketCap),
			Negative:      q.Change < 0,
		})
	}
	return cards
}

func chartFromTable(t model.HistoryTable) []chartSeries {
	out := make([]chartSeries, 0, len(t.Symbols))
	for _, sym := range t.Symbols {
		pts := t.Series(sym)
		if len(pts) == 0 {
			continue
		}
		cs := chartSeries{
			Symbol: sym,
			Dates:  make([]string, 0, len(pts)),
			Closes: make([]float64, 0, len(pts)),
		}
		for _, p := range pts {
			cs.Dates = append(cs.Dates, p.Date.Format("2006-01-02"))
			cs.Closes = append(cs.Closes, p.Close)
		}
		out = append(out, cs)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ERROR] panic in handler: %v", rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
