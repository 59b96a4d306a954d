package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// BarSeries is an append-only sequence of bars. Every bar is mirrored into a
// techan.TimeSeries so techan indicators can be computed over it.
type BarSeries struct {
	name   string
	bars   []*models.Bar
	series *techan.TimeSeries
}

// NewBarSeries creates a series and appends the given bars in order
func NewBarSeries(name string, bars ...*models.Bar) (*BarSeries, error) {
	s := &BarSeries{
		name:   name,
		bars:   make([]*models.Bar, 0, len(bars)),
		series: techan.NewTimeSeries(),
	}
	for i, bar := range bars {
		if err := s.AddBar(bar); err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
	}
	return s, nil
}

// AddBar validates and appends a bar. Timestamps must be strictly increasing.
func (s *BarSeries) AddBar(bar *models.Bar) error {
	if bar == nil {
		return ErrNilBar
	}
	if err := bar.Validate(); err != nil {
		return fmt.Errorf("invalid bar: %w", err)
	}
	for _, p := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
		if !IsDefined(p) {
			return ErrInvalidPrice
		}
	}
	if n := len(s.bars); n > 0 && !bar.Timestamp.After(s.bars[n-1].Timestamp) {
		return fmt.Errorf("%w: %s is not after %s", ErrBarOutOfOrder, bar.Timestamp, s.bars[n-1].Timestamp)
	}

	candle := techan.NewCandle(techan.NewTimePeriod(bar.Timestamp, bar.Period))
	candle.OpenPrice = big.NewDecimal(bar.Open)
	candle.MaxPrice = big.NewDecimal(bar.High)
	candle.MinPrice = big.NewDecimal(bar.Low)
	candle.ClosePrice = big.NewDecimal(bar.Close)
	candle.Volume = big.NewDecimal(bar.Volume)

	if !s.series.AddCandle(candle) {
		return fmt.Errorf("%w: bar period overlaps the previous bar", ErrBarOutOfOrder)
	}

	s.bars = append(s.bars, bar)
	return nil
}

// Name returns the series name
func (s *BarSeries) Name() string {
	return s.name
}

// Len returns the number of bars
func (s *BarSeries) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series has no bars
func (s *BarSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// BeginIndex returns the first valid index, or -1 when empty
func (s *BarSeries) BeginIndex() int {
	if s.IsEmpty() {
		return -1
	}
	return 0
}

// EndIndex returns the last valid index, or -1 when empty
func (s *BarSeries) EndIndex() int {
	return len(s.bars) - 1
}

// Bar returns the bar at index, or nil when out of range
func (s *BarSeries) Bar(index int) *models.Bar {
	if index < 0 || index >= len(s.bars) {
		return nil
	}
	return s.bars[index]
}

// LastBar returns the most recent bar, or nil
func (s *BarSeries) LastBar() *models.Bar {
	return s.Bar(s.EndIndex())
}

// Techan exposes the mirrored techan series
func (s *BarSeries) Techan() *techan.TimeSeries {
	return s.series
}

func (s *BarSeries) inRange(index int) bool {
	return index >= 0 && index < len(s.bars)
}
