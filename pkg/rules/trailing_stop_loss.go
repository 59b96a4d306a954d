package rules

import (
	"math"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// TrailingStopLossRule is a stop-loss that follows the best reference price
// since entry. For a buy the stop sits a distance below the highest price
// over the last min(bars since entry, barCount) bars, never below the one
// derived from the entry price; a sell mirrors this with the lowest price.
//
// The rule remembers the last stop limit it computed, so an instance must not
// be evaluated concurrently.
type TrailingStopLossRule struct {
	lookback         *lookback
	offset           offset
	currentStopLimit float64
}

func (*TrailingStopLossRule) stopLoss() {}

// NewTrailingStopLossRule creates a trailing stop at a percentage of the best price
func NewTrailingStopLossRule(reference indicator.Indicator, lossPercentage float64, barCount int) (*TrailingStopLossRule, error) {
	off, err := newPercentOffset(lossPercentage)
	if err != nil {
		return nil, err
	}
	return newTrailingStopLoss(reference, off, barCount)
}

// NewTrailingFixedAmountStopLossRule creates a trailing stop at a fixed distance from the best price
func NewTrailingFixedAmountStopLossRule(reference indicator.Indicator, lossAmount float64, barCount int) (*TrailingStopLossRule, error) {
	off, err := newAmountOffset(lossAmount)
	if err != nil {
		return nil, err
	}
	return newTrailingStopLoss(reference, off, barCount)
}

// NewTrailingATRStopLossRule creates a trailing stop on the close price of
// series at coefficient times the ATR over atrBarCount bars
func NewTrailingATRStopLossRule(series *indicator.BarSeries, atrBarCount int, coefficient float64, barCount int) (*TrailingStopLossRule, error) {
	closePrice, off, err := newATROffset(series, atrBarCount, coefficient)
	if err != nil {
		return nil, err
	}
	return newTrailingStopLoss(closePrice, off, barCount)
}

// NewTrailingVolatilityStopLossRule creates a trailing stop at coefficient
// times a volatility indicator from the best price
func NewTrailingVolatilityStopLossRule(reference, volatility indicator.Indicator, coefficient float64, barCount int) (*TrailingStopLossRule, error) {
	off, err := newScaledOffset(volatility, coefficient)
	if err != nil {
		return nil, err
	}
	return newTrailingStopLoss(reference, off, barCount)
}

func newTrailingStopLoss(reference indicator.Indicator, off offset, barCount int) (*TrailingStopLossRule, error) {
	lb, err := newLookback(reference, barCount)
	if err != nil {
		return nil, err
	}
	return &TrailingStopLossRule{
		lookback:         lb,
		offset:           off,
		currentStopLimit: math.NaN(),
	}, nil
}

// CurrentStopLimit returns the stop limit computed by the last evaluation
// that had an open position, or NaN
func (t *TrailingStopLossRule) CurrentStopLimit() float64 {
	return t.currentStopLimit
}

func (t *TrailingStopLossRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	position := openPosition(record)
	if position == nil {
		return false
	}
	entry := position.Entry()
	if index < entry.Index {
		return false
	}
	price := t.lookback.reference.Value(index)
	if !indicator.IsDefined(price) {
		return false
	}

	limit, ok := t.stopLimit(entry, index)
	if !ok {
		return false
	}
	t.currentStopLimit = limit
	return reached(price, limit, thresholdUp(entry.Side, false))
}

func (t *TrailingStopLossRule) StopPrice(_ *indicator.BarSeries, position *models.Position) (float64, bool) {
	entry := entryOf(position)
	if entry == nil {
		return 0, false
	}
	return t.stopLimit(entry, entry.Index)
}

func (t *TrailingStopLossRule) Reset() {
	t.currentStopLimit = math.NaN()
	t.lookback.reset()
}

func (t *TrailingStopLossRule) stopLimit(entry *models.Trade, index int) (float64, bool) {
	if !indicator.IsDefined(entry.NetPrice) {
		return 0, false
	}
	best := t.lookback.best(index, entry.Index, entry.Side)
	if !indicator.IsDefined(best) {
		return 0, false
	}

	reference := math.Max(entry.NetPrice, best)
	if entry.Side == models.Sell {
		reference = math.Min(entry.NetPrice, best)
	}
	limit := t.offset.shift(reference, index, thresholdUp(entry.Side, false))
	if !indicator.IsDefined(limit) {
		return 0, false
	}
	return limit, true
}
