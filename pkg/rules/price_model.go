package rules

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// AllBars lets a trailing rule look back to the entry bar without limit
const AllBars = math.MaxInt

// StopPriceModel reports the exit price a rule would trigger at for a
// position, as computed at its entry bar. ok is false when no price can be
// derived.
type StopPriceModel interface {
	StopPrice(series *indicator.BarSeries, position *models.Position) (price float64, ok bool)
}

// StopLossPriceModel is implemented by the stop-loss rules
type StopLossPriceModel interface {
	StopPriceModel
	stopLoss()
}

// StopGainPriceModel is implemented by the stop-gain rules
type StopGainPriceModel interface {
	StopPriceModel
	stopGain()
}

// offset moves a price by a distance, upwards or downwards
type offset interface {
	shift(price float64, index int, up bool) float64
}

// percentOffset moves a price by a percentage of itself
type percentOffset float64

func (p percentOffset) shift(price float64, _ int, up bool) float64 {
	if up {
		return price * (100 + float64(p)) / 100
	}
	return price * (100 - float64(p)) / 100
}

// amountOffset moves a price by a fixed amount
type amountOffset float64

func (a amountOffset) shift(price float64, _ int, up bool) float64 {
	if up {
		return price + float64(a)
	}
	return price - float64(a)
}

// scaledOffset moves a price by an indicator value times a coefficient,
// typically an ATR or a volatility measure
type scaledOffset struct {
	source      indicator.Indicator
	coefficient float64
}

func (s scaledOffset) shift(price float64, index int, up bool) float64 {
	distance := s.source.Value(index) * s.coefficient
	if !indicator.IsDefined(distance) {
		return math.NaN()
	}
	if up {
		return price + distance
	}
	return price - distance
}

func newPercentOffset(percentage float64) (offset, error) {
	if !positive(percentage) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPercentage, percentage)
	}
	return percentOffset(percentage), nil
}

func newAmountOffset(amount float64) (offset, error) {
	if !positive(amount) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	return amountOffset(amount), nil
}

func newScaledOffset(source indicator.Indicator, coefficient float64) (offset, error) {
	if source == nil {
		return nil, ErrNilIndicator
	}
	if !positive(coefficient) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCoefficient, coefficient)
	}
	return scaledOffset{source: source, coefficient: coefficient}, nil
}

// newATROffset returns the close price of series and an offset of
// coefficient times its ATR over atrBarCount bars
func newATROffset(series *indicator.BarSeries, atrBarCount int, coefficient float64) (indicator.Indicator, offset, error) {
	if series == nil {
		return nil, nil, ErrNilSeries
	}
	if atrBarCount < 1 {
		return nil, nil, fmt.Errorf("%w: atr bar count %d", ErrInvalidBarCount, atrBarCount)
	}
	closePrice, err := indicator.NewClosePrice(series)
	if err != nil {
		return nil, nil, err
	}
	atr, err := indicator.NewATR(series, atrBarCount)
	if err != nil {
		return nil, nil, err
	}
	off, err := newScaledOffset(atr, coefficient)
	if err != nil {
		return nil, nil, err
	}
	return closePrice, off, nil
}

func positive(v float64) bool {
	return indicator.IsDefined(v) && v > 0
}

// thresholdUp reports whether the exit threshold of a position lies above
// the reference price: gains above and losses below for a buy, the reverse
// for a sell
func thresholdUp(side models.TradeSide, gain bool) bool {
	return (side == models.Buy) == gain
}

// reached reports whether price is at or beyond threshold in direction up
func reached(price, threshold float64, up bool) bool {
	if up {
		return price >= threshold
	}
	return price <= threshold
}

func entryOf(position *models.Position) *models.Trade {
	if position == nil {
		return nil
	}
	return position.Entry()
}

var (
	_ StopLossPriceModel = (*StopLossRule)(nil)
	_ StopLossPriceModel = (*TrailingStopLossRule)(nil)
	_ StopGainPriceModel = (*StopGainRule)(nil)
	_ StopGainPriceModel = (*TrailingStopGainRule)(nil)
	_ Resettable         = (*TrailingStopLossRule)(nil)
)
