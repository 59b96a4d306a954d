package data

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
)

// mockStart is the timestamp of the first generated bar
var mockStart = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)

// MockSource generates a deterministic random walk. The same seed always
// yields the same bars.
type MockSource struct {
	symbol string
	period time.Duration
	bars   int
	seed   int64
}

// NewMockSource creates a mock source
func NewMockSource(config SourceConfig) (Source, error) {
	if config.Bars < 1 {
		return nil, fmt.Errorf("mock source requires a positive bar count, got %d", config.Bars)
	}

	symbol := config.Symbol
	if symbol == "" {
		symbol = "MOCK"
	}
	period := config.Period
	if period <= 0 {
		period = time.Minute
	}

	return &MockSource{
		symbol: symbol,
		period: period,
		bars:   config.Bars,
		seed:   config.Seed,
	}, nil
}

// Name returns "mock"
func (s *MockSource) Name() string {
	return "mock"
}

// Load generates the bars
func (s *MockSource) Load(ctx context.Context) ([]*models.Bar, error) {
	rng := rand.New(rand.NewSource(s.seed))

	bars := make([]*models.Bar, 0, s.bars)
	price := 100.0 + rng.Float64()*200.0
	for i := 0; i < s.bars; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		open := price
		// +/- 1% per bar
		price = math.Max(0.01, price*(1+(rng.Float64()-0.5)*0.02))
		high := math.Max(open, price) * (1 + rng.Float64()*0.005)
		low := math.Min(open, price) * (1 - rng.Float64()*0.005)

		bars = append(bars, &models.Bar{
			Symbol:    s.symbol,
			Timestamp: mockStart.Add(time.Duration(i) * s.period),
			Period:    s.period,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    float64(rng.Intn(10000) + 100),
		})
	}
	return bars, nil
}
