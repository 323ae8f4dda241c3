package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockdash/internal/model"
)

// ErrNotFound reports that the data source does not know a symbol. Other
// provider errors are treated as transient.
var ErrNotFound = errors.New("symbol not found")

// Provider defines the interface to an external market-data source.
type Provider interface {
	// History returns daily closing series per symbol. Symbols the source
	// has no data for may be absent from the map; History fails only when
	// the call as a whole cannot produce anything.
	History(ctx context.Context, symbols []string, period model.Period) (map[string][]model.PricePoint, error)
	// Snapshot returns the current quote record for one symbol.
	Snapshot(ctx context.Context, symbol string) (*model.Snapshot, error)
	Name() string
}

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Series       map[string][]model.PricePoint
	Snapshots    map[string]model.Snapshot
	HistoryErr   error
	SnapshotErrs map[string]error

	HistoryCalls  int
	SnapshotCalls int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) History(_ context.Context, symbols []string, _ model.Period) (map[string][]model.PricePoint, error) {
	m.HistoryCalls++
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	out := make(map[string][]model.PricePoint, len(symbols))
	for _, s := range symbols {
		if pts, ok := m.Series[s]; ok {
			out[s] = pts
		}
	}
	return out, nil
}

func (m *MockProvider) Snapshot(_ context.Context, symbol string) (*model.Snapshot, error) {
	m.SnapshotCalls++
	if err, ok := m.SnapshotErrs[symbol]; ok {
		return nil, err
	}
	if snap, ok := m.Snapshots[symbol]; ok {
		return &snap, nil
	}
	return nil, fmt.Errorf("mock: %w: %s", ErrNotFound, symbol)
}

// NewSeededMockProvider builds a MockProvider with synthetic but plausible
// data for the given symbols, for offline development.
func NewSeededMockProvider(symbols []string) *MockProvider {
	m := &MockProvider{
		Series:    make(map[string][]model.PricePoint, len(symbols)),
		Snapshots: make(map[string]model.Snapshot, len(symbols)),
	}
	base := 1000.0
	for _, sym := range symbols {
		m.Series[sym] = generateMockSeries(base, 250)
		last := m.Series[sym][len(m.Series[sym])-1].Close
		prev := m.Series[sym][len(m.Series[sym])-2].Close
		m.Snapshots[sym] = model.Snapshot{
			Symbol:    sym,
			Name:      sym + " Ltd",
			Price:     &last,
			PrevClose: &prev,
			Volume:    1_500_000,
			MarketCap: 2_000_000_000,
		}
		base *= 1.3
	}
	return m
}

func generateMockSeries(basePrice float64, count int) []model.PricePoint {
	pts := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		pts[i] = model.PricePoint{
			Date:  time.Now().AddDate(0, 0, -(count - i)).Truncate(24 * time.Hour),
			Close: p,
		}
	}
	return pts
}
