package rules

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// lookback finds the best reference price since a position's entry, over at
// most barCount bars. Full-window queries hit the memoized extrema built at
// construction. Shorter windows, which always span every bar since entry (the
// only case with AllBars), extend a running extremum kept for the last entry.
// Not safe for concurrent use.
type lookback struct {
	reference indicator.Indicator
	barCount  int
	highest   *indicator.ExtremumIndicator
	lowest    *indicator.ExtremumIndicator
	since     runningExtremum
}

// runningExtremum holds the reference extrema over [entry, index]
type runningExtremum struct {
	valid     bool
	entry     int
	index     int
	high, low float64
}

func newLookback(reference indicator.Indicator, barCount int) (*lookback, error) {
	if reference == nil {
		return nil, ErrNilIndicator
	}
	if barCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	highest, err := indicator.NewHighestValue(reference, barCount)
	if err != nil {
		return nil, err
	}
	lowest, err := indicator.NewLowestValue(reference, barCount)
	if err != nil {
		return nil, err
	}
	return &lookback{
		reference: reference,
		barCount:  barCount,
		highest:   highest,
		lowest:    lowest,
	}, nil
}

// window returns the number of bars to look back at index for a position
// entered at entryIndex
func (l *lookback) window(index, entryIndex int) int {
	bars := index - entryIndex + 1
	if bars > l.barCount {
		return l.barCount
	}
	return bars
}

// best returns the highest reference value for a buy and the lowest for a
// sell, over the bars since entryIndex. index must not precede entryIndex.
func (l *lookback) best(index, entryIndex int, side models.TradeSide) float64 {
	bars := l.window(index, entryIndex)
	high := side == models.Buy

	if bars == l.barCount {
		if high {
			return l.highest.Value(index)
		}
		return l.lowest.Value(index)
	}
	highest, lowest := l.sinceEntry(index, entryIndex)
	if high {
		return highest
	}
	return lowest
}

// sinceEntry returns the extrema over [entryIndex, index], skipping NaN values.
// Consecutive queries for the same entry only read the bars not seen yet.
func (l *lookback) sinceEntry(index, entryIndex int) (float64, float64) {
	if index == entryIndex {
		v := l.reference.Value(index)
		return v, v
	}
	r := &l.since
	if !r.valid || r.entry != entryIndex || index < r.index {
		*r = runningExtremum{valid: true, entry: entryIndex, index: entryIndex - 1, high: math.NaN(), low: math.NaN()}
	}
	for i := r.index + 1; i <= index; i++ {
		v := l.reference.Value(i)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(r.high) || v > r.high {
			r.high = v
		}
		if math.IsNaN(r.low) || v < r.low {
			r.low = v
		}
	}
	if index > r.index {
		r.index = index
	}
	return r.high, r.low
}

func (l *lookback) reset() {
	l.since = runningExtremum{}
}
