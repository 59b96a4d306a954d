package indicator

import (
	"math"

	"github.com/sdcoffey/techan"
)

// TechanIndicator wraps a techan indicator built over a BarSeries' mirrored
// time series and exposes it as an Indicator. Values are memoized per index;
// indices inside the warm-up period or outside the series are NaN.
type TechanIndicator struct {
	name     string
	series   *BarSeries
	source   techan.Indicator
	unstable int
	cache    valueCache
}

// NewTechanIndicator wraps source. The first unstable indices are reported as NaN.
func NewTechanIndicator(name string, series *BarSeries, source techan.Indicator, unstable int) (*TechanIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	if source == nil {
		return nil, ErrNilIndicator
	}
	if unstable < 0 {
		unstable = 0
	}
	return &TechanIndicator{
		name:     name,
		series:   series,
		source:   source,
		unstable: unstable,
	}, nil
}

// Name returns the indicator name (e.g. "sma_20")
func (t *TechanIndicator) Name() string {
	return t.name
}

// UnstableBars returns the warm-up length
func (t *TechanIndicator) UnstableBars() int {
	return t.unstable
}

func (t *TechanIndicator) Value(index int) float64 {
	if !t.series.inRange(index) || index < t.unstable {
		return math.NaN()
	}
	return t.cache.get(index, func(i int) float64 {
		return t.source.Calculate(i).Float()
	})
}
