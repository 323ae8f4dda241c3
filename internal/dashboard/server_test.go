package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/cache"
	"stockdash/internal/market"
	"stockdash/internal/model"
)

func f64(v float64) *float64 { return &v }

func newTestServer(t *testing.T, mock *market.MockProvider) *Server {
	t.Helper()
	fetcher := market.NewFetcher(mock, cache.New(time.Minute), nil)
	srv, err := NewServer(fetcher, Options{
		Title:          "Test Dashboard",
		CurrencySymbol: "₹",
		Catalog:        []string{"RELIANCE.NS", "TCS.NS"},
		DefaultSymbols: []string{"RELIANCE.NS"},
		DefaultPeriod:  model.Period1y,
	})
	require.NoError(t, err)
	return srv
}

func goodMock() *market.MockProvider {
	day := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return &market.MockProvider{
		Series: map[string][]model.PricePoint{
			"RELIANCE.NS": {{Date: day, Close: 2810.15}, {Date: day.AddDate(0, 0, 1), Close: 2856.4}},
			"TCS.NS":      {{Date: day, Close: 4120}, {Date: day.AddDate(0, 0, 1), Close: 4100}},
		},
		Snapshots: map[string]model.Snapshot{
			"RELIANCE.NS": {Symbol: "RELIANCE.NS", Name: "Reliance Industries Limited", Price: f64(2856.4), PrevClose: f64(2810.15), Volume: 5400000},
			"TCS.NS":      {Symbol: "TCS.NS", Name: "Tata Consultancy Services Limited", Price: f64(4100), PrevClose: f64(4120)},
		},
	}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestDashboard_QuotesAndChart(t *testing.T) {
	srv := newTestServer(t, goodMock())

	rr := get(t, srv, "/api/dashboard?symbols=RELIANCE.NS,TCS.NS&period=1y")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 2)
	assert.Empty(t, resp.Missing)
	assert.Empty(t, resp.Error)

	reliance := resp.Cards[0]
	assert.Equal(t, "RELIANCE.NS", reliance.Symbol)
	assert.Equal(t, "₹2,856.40", reliance.PriceText)
	assert.Equal(t, "+46.25 (+1.65%)", reliance.ChangeText)
	assert.False(t, reliance.Negative)

	tcs := resp.Cards[1]
	assert.True(t, tcs.Negative)
	assert.Equal(t, "-", tcs.MarketCapText)

	require.Len(t, resp.Chart, 2)
	assert.Equal(t, []string{"2025-08-01", "2025-08-02"}, resp.Chart[0].Dates)
}

func TestDashboard_MissingTickerListed(t *testing.T) {
	mock := goodMock()
	mock.SnapshotErrs = map[string]error{"TCS.NS": errors.New("status 502")}
	srv := newTestServer(t, mock)

	rr := get(t, srv, "/api/dashboard?symbols=reliance.ns,tcs.ns,FAKE123.NS&period=1mo")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 1)
	assert.ElementsMatch(t, []string{"TCS.NS", "FAKE123.NS"}, resp.Missing)
	assert.Len(t, resp.Errors, 2)
}

func TestDashboard_BadPeriodRejected(t *testing.T) {
	srv := newTestServer(t, goodMock())
	rr := get(t, srv, "/api/dashboard?symbols=RELIANCE.NS&period=2y")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard_DefaultPeriodApplied(t *testing.T) {
	mock := goodMock()
	srv := newTestServer(t, mock)
	rr := get(t, srv, "/api/dashboard?symbols=RELIANCE.NS")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, mock.HistoryCalls)
}

func TestDashboard_OutageDegradesGracefully(t *testing.T) {
	mock := goodMock()
	mock.HistoryErr = errors.New("dial tcp: network unreachable")
	srv := newTestServer(t, mock)

	rr := get(t, srv, "/api/dashboard?symbols=RELIANCE.NS&period=1y")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cards)
	assert.Empty(t, resp.Chart)
	assert.Contains(t, resp.Error, "Error fetching market data")
}

func TestDashboard_EmptySymbols(t *testing.T) {
	mock := goodMock()
	srv := newTestServer(t, mock)

	rr := get(t, srv, "/api/dashboard?symbols=&period=1y")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cards)
	assert.Empty(t, resp.Missing)
	assert.Zero(t, mock.HistoryCalls)
}

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t, goodMock())
	rr := get(t, srv, "/api/catalog")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp catalogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS"}, resp.Catalog)
	assert.Equal(t, []string{"1y", "6mo", "3mo", "1mo", "5d"}, resp.Periods)
	assert.Equal(t, "1y", resp.DefaultPeriod)
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, goodMock())
	rr := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Test Dashboard")

	rr = get(t, srv, "/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, goodMock())
	rr := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
