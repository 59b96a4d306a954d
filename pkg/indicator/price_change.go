package indicator

import (
	"fmt"
	"math"
)

// PriceChange is the percentage change of the close price over the last
// window bars
type PriceChange struct {
	series *BarSeries
	window int
}

// NewPriceChange creates a price change indicator over series
func NewPriceChange(series *BarSeries, window int) (*PriceChange, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	return &PriceChange{series: series, window: window}, nil
}

// Name returns the indicator name (e.g. "price_change_5_pct")
func (p *PriceChange) Name() string {
	return fmt.Sprintf("price_change_%d_pct", p.window)
}

// UnstableBars returns the warm-up length
func (p *PriceChange) UnstableBars() int {
	return p.window
}

func (p *PriceChange) Value(index int) float64 {
	if !p.series.inRange(index) || index < p.window {
		return math.NaN()
	}
	old := p.series.Bar(index - p.window).Close
	if old == 0 {
		return math.NaN()
	}
	return (p.series.Bar(index).Close - old) / old * 100
}
