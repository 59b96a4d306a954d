package indicator

import (
	"fmt"
	"math"
)

// ExtremumIndicator returns the highest or lowest value of a source indicator
// over the window bars ending at the requested index. NaN source values are
// skipped; a window with no defined value yields NaN. Results are memoized.
type ExtremumIndicator struct {
	source  Indicator
	window  int
	highest bool
	cache   valueCache
}

// NewHighestValue creates a highest-value indicator over window bars
func NewHighestValue(source Indicator, window int) (*ExtremumIndicator, error) {
	return newExtremum(source, window, true)
}

// NewLowestValue creates a lowest-value indicator over window bars
func NewLowestValue(source Indicator, window int) (*ExtremumIndicator, error) {
	return newExtremum(source, window, false)
}

func newExtremum(source Indicator, window int, highest bool) (*ExtremumIndicator, error) {
	if source == nil {
		return nil, ErrNilIndicator
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return &ExtremumIndicator{
		source:  source,
		window:  window,
		highest: highest,
	}, nil
}

// Window returns the number of bars the extremum is taken over
func (e *ExtremumIndicator) Window() int {
	return e.window
}

// IsHighest reports whether this is a highest-value indicator
func (e *ExtremumIndicator) IsHighest() bool {
	return e.highest
}

func (e *ExtremumIndicator) Value(index int) float64 {
	return e.cache.get(index, e.compute)
}

func (e *ExtremumIndicator) compute(index int) float64 {
	return extremum(e.source, index, e.window, e.highest)
}

func extremum(source Indicator, index, window int, highest bool) float64 {
	if index < 0 || window < 1 {
		return math.NaN()
	}
	start := index - window + 1
	if start < 0 {
		start = 0
	}

	result := math.NaN()
	for i := index; i >= start; i-- {
		v := source.Value(i)
		if math.IsNaN(v) {
			continue
		}
		switch {
		case math.IsNaN(result):
			result = v
		case highest && v > result:
			result = v
		case !highest && v < result:
			result = v
		}
	}
	return result
}
