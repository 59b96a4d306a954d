package rules

import (
	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// TrailingStopGainRule locks in a gain once the position has been in profit
// by at least a distance. It activates when the best reference price since
// entry reaches entry+distance for a buy (entry-distance for a sell) and then
// is satisfied when the price retraces by the same distance from that best
// price. The best price is taken over min(bars since entry, barCount) bars.
type TrailingStopGainRule struct {
	lookback *lookback
	offset   offset
}

func (*TrailingStopGainRule) stopGain() {}

// NewTrailingStopGainRule creates a trailing take-profit at a percentage
func NewTrailingStopGainRule(reference indicator.Indicator, gainPercentage float64, barCount int) (*TrailingStopGainRule, error) {
	off, err := newPercentOffset(gainPercentage)
	if err != nil {
		return nil, err
	}
	return newTrailingStopGain(reference, off, barCount)
}

// NewTrailingFixedAmountStopGainRule creates a trailing take-profit at a fixed distance
func NewTrailingFixedAmountStopGainRule(reference indicator.Indicator, gainAmount float64, barCount int) (*TrailingStopGainRule, error) {
	off, err := newAmountOffset(gainAmount)
	if err != nil {
		return nil, err
	}
	return newTrailingStopGain(reference, off, barCount)
}

// NewTrailingATRStopGainRule creates a trailing take-profit on the close price
// of series at coefficient times the ATR over atrBarCount bars
func NewTrailingATRStopGainRule(series *indicator.BarSeries, atrBarCount int, coefficient float64, barCount int) (*TrailingStopGainRule, error) {
	closePrice, off, err := newATROffset(series, atrBarCount, coefficient)
	if err != nil {
		return nil, err
	}
	return newTrailingStopGain(closePrice, off, barCount)
}

// NewTrailingVolatilityStopGainRule creates a trailing take-profit at
// coefficient times a volatility indicator
func NewTrailingVolatilityStopGainRule(reference, volatility indicator.Indicator, coefficient float64, barCount int) (*TrailingStopGainRule, error) {
	off, err := newScaledOffset(volatility, coefficient)
	if err != nil {
		return nil, err
	}
	return newTrailingStopGain(reference, off, barCount)
}

func newTrailingStopGain(reference indicator.Indicator, off offset, barCount int) (*TrailingStopGainRule, error) {
	lb, err := newLookback(reference, barCount)
	if err != nil {
		return nil, err
	}
	return &TrailingStopGainRule{lookback: lb, offset: off}, nil
}

func (t *TrailingStopGainRule) IsSatisfied(index int, record *models.TradingRecord) bool {
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

	up := thresholdUp(entry.Side, true)
	activation, ok := t.activation(entry, index)
	if !ok {
		return false
	}
	best := t.lookback.best(index, entry.Index, entry.Side)
	if !indicator.IsDefined(best) || !reached(best, activation, up) {
		return false
	}

	trail := t.offset.shift(best, index, !up)
	if !indicator.IsDefined(trail) {
		return false
	}
	return reached(price, trail, !up)
}

// StopPrice returns the activation price computed at the entry bar
func (t *TrailingStopGainRule) StopPrice(_ *indicator.BarSeries, position *models.Position) (float64, bool) {
	entry := entryOf(position)
	if entry == nil {
		return 0, false
	}
	return t.activation(entry, entry.Index)
}

func (t *TrailingStopGainRule) Reset() {
	t.lookback.reset()
}

func (t *TrailingStopGainRule) activation(entry *models.Trade, index int) (float64, bool) {
	if !indicator.IsDefined(entry.NetPrice) {
		return 0, false
	}
	price := t.offset.shift(entry.NetPrice, index, thresholdUp(entry.Side, true))
	if !indicator.IsDefined(price) {
		return 0, false
	}
	return price, true
}
