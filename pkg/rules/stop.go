package rules

import (
	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// staticExit compares the reference price with a threshold derived from the
// entry price of the open position
type staticExit struct {
	reference indicator.Indicator
	offset    offset
	gain      bool
}

func newStaticExit(reference indicator.Indicator, off offset, gain bool) (staticExit, error) {
	if reference == nil {
		return staticExit{}, ErrNilIndicator
	}
	return staticExit{reference: reference, offset: off, gain: gain}, nil
}

// Threshold returns the exit price of position at index
func (s staticExit) Threshold(index int, position *models.Position) (float64, bool) {
	entry := entryOf(position)
	if entry == nil || !indicator.IsDefined(entry.NetPrice) {
		return 0, false
	}
	threshold := s.offset.shift(entry.NetPrice, index, thresholdUp(entry.Side, s.gain))
	if !indicator.IsDefined(threshold) {
		return 0, false
	}
	return threshold, true
}

func (s staticExit) IsSatisfied(index int, record *models.TradingRecord) bool {
	position := openPosition(record)
	if position == nil {
		return false
	}
	price := s.reference.Value(index)
	if !indicator.IsDefined(price) {
		return false
	}
	threshold, ok := s.Threshold(index, position)
	if !ok {
		return false
	}
	return reached(price, threshold, thresholdUp(position.Entry().Side, s.gain))
}

func (s staticExit) StopPrice(_ *indicator.BarSeries, position *models.Position) (float64, bool) {
	entry := entryOf(position)
	if entry == nil {
		return 0, false
	}
	return s.Threshold(entry.Index, position)
}

// StopLossRule is satisfied when the reference price has moved against the
// open position by at least a distance from its entry price: at or below
// entry-distance for a buy, at or above entry+distance for a sell
type StopLossRule struct {
	staticExit
}

func (*StopLossRule) stopLoss() {}

// NewStopLossRule creates a stop-loss at a percentage of the entry price
func NewStopLossRule(reference indicator.Indicator, lossPercentage float64) (*StopLossRule, error) {
	off, err := newPercentOffset(lossPercentage)
	if err != nil {
		return nil, err
	}
	return newStopLoss(reference, off)
}

// NewFixedAmountStopLossRule creates a stop-loss at a fixed distance from the entry price
func NewFixedAmountStopLossRule(reference indicator.Indicator, lossAmount float64) (*StopLossRule, error) {
	off, err := newAmountOffset(lossAmount)
	if err != nil {
		return nil, err
	}
	return newStopLoss(reference, off)
}

// NewATRStopLossRule creates a stop-loss on the close price of series at
// coefficient times the ATR over atrBarCount bars
func NewATRStopLossRule(series *indicator.BarSeries, atrBarCount int, coefficient float64) (*StopLossRule, error) {
	closePrice, off, err := newATROffset(series, atrBarCount, coefficient)
	if err != nil {
		return nil, err
	}
	return newStopLoss(closePrice, off)
}

// NewVolatilityStopLossRule creates a stop-loss at coefficient times a
// volatility indicator from the entry price
func NewVolatilityStopLossRule(reference, volatility indicator.Indicator, coefficient float64) (*StopLossRule, error) {
	off, err := newScaledOffset(volatility, coefficient)
	if err != nil {
		return nil, err
	}
	return newStopLoss(reference, off)
}

func newStopLoss(reference indicator.Indicator, off offset) (*StopLossRule, error) {
	exit, err := newStaticExit(reference, off, false)
	if err != nil {
		return nil, err
	}
	return &StopLossRule{exit}, nil
}

// StopGainRule is satisfied when the reference price has moved in favor of
// the open position by at least a distance from its entry price: at or above
// entry+distance for a buy, at or below entry-distance for a sell
type StopGainRule struct {
	staticExit
}

func (*StopGainRule) stopGain() {}

// NewStopGainRule creates a take-profit at a percentage of the entry price
func NewStopGainRule(reference indicator.Indicator, gainPercentage float64) (*StopGainRule, error) {
	off, err := newPercentOffset(gainPercentage)
	if err != nil {
		return nil, err
	}
	return newStopGain(reference, off)
}

// NewFixedAmountStopGainRule creates a take-profit at a fixed distance from the entry price
func NewFixedAmountStopGainRule(reference indicator.Indicator, gainAmount float64) (*StopGainRule, error) {
	off, err := newAmountOffset(gainAmount)
	if err != nil {
		return nil, err
	}
	return newStopGain(reference, off)
}

// NewATRStopGainRule creates a take-profit on the close price of series at
// coefficient times the ATR over atrBarCount bars
func NewATRStopGainRule(series *indicator.BarSeries, atrBarCount int, coefficient float64) (*StopGainRule, error) {
	closePrice, off, err := newATROffset(series, atrBarCount, coefficient)
	if err != nil {
		return nil, err
	}
	return newStopGain(closePrice, off)
}

// NewVolatilityStopGainRule creates a take-profit at coefficient times a
// volatility indicator from the entry price
func NewVolatilityStopGainRule(reference, volatility indicator.Indicator, coefficient float64) (*StopGainRule, error) {
	off, err := newScaledOffset(volatility, coefficient)
	if err != nil {
		return nil, err
	}
	return newStopGain(reference, off)
}

func newStopGain(reference indicator.Indicator, off offset) (*StopGainRule, error) {
	exit, err := newStaticExit(reference, off, true)
	if err != nil {
		return nil, err
	}
	return &StopGainRule{exit}, nil
}
