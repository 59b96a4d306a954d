package rules

import (
	"testing"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingStopGainRule_RequiresActivation(t *testing.T) {
	// The high of 109 never reaches the 110 activation price
	closes := indicator.NewFixed(100, 105, 109, 104, 99, 95)
	rule, err := NewTrailingStopGainRule(closes, 10, AllBars)
	require.NoError(t, err)
	record := enteredRecord(models.Buy, 100)

	for index := 0; index < 6; index++ {
		assert.False(t, rule.IsSatisfied(index, record), "index %d", index)
	}
}

func TestTrailingStopGainRule_Buy(t *testing.T) {
	closes := indicator.NewFixed(100, 110, 120, 115, 108)
	rule := Must(NewTrailingStopGainRule(closes, 10, AllBars))
	record := enteredRecord(models.Buy, 100)

	assert.False(t, rule.IsSatisfied(1, record), "activated but no retracement")
	assert.False(t, rule.IsSatisfied(2, record))
	assert.False(t, rule.IsSatisfied(3, record))
	assert.True(t, rule.IsSatisfied(4, record), "retraced to 120 * 0.9")
}

func TestTrailingStopGainRule_Sell(t *testing.T) {
	closes := indicator.NewFixed(100, 90, 80, 85, 88)
	rule := Must(NewTrailingStopGainRule(closes, 10, AllBars))
	record := enteredRecord(models.Sell, 100)

	assert.False(t, rule.IsSatisfied(2, record))
	assert.False(t, rule.IsSatisfied(3, record))
	assert.True(t, rule.IsSatisfied(4, record), "retraced to 80 * 1.1")
}

func TestTrailingStopGainRule_BarCountForgetsOldHighs(t *testing.T) {
	closes := indicator.NewFixed(100, 120, 105, 104, 103)
	rule := Must(NewTrailingFixedAmountStopGainRule(closes, 10, 2))
	record := enteredRecord(models.Buy, 100)

	// Within two bars of the 120 high, 105 is below 120-10
	assert.True(t, rule.IsSatisfied(2, record))
	// The high drops out of the window and 105 never reached activation at 110
	assert.False(t, rule.IsSatisfied(3, record))
	assert.False(t, rule.IsSatisfied(4, record))
}

func TestTrailingStopGainRule_StopPrice(t *testing.T) {
	closes := indicator.NewFixed(100, 130)
	rule := Must(NewTrailingStopGainRule(closes, 10, 5))

	price, ok := rule.StopPrice(nil, enteredRecord(models.Buy, 100).CurrentPosition())
	require.True(t, ok)
	assert.InDelta(t, 110.0, price, 1e-9)

	price, ok = rule.StopPrice(nil, enteredRecord(models.Sell, 100).CurrentPosition())
	require.True(t, ok)
	assert.InDelta(t, 90.0, price, 1e-9)

	_, ok = rule.StopPrice(nil, models.NewPosition(models.Buy, nil))
	assert.False(t, ok)
}

func TestTrailingVolatilityStopGainRule(t *testing.T) {
	closes := indicator.NewFixed(100, 106, 102, 101)
	rule, err := NewTrailingVolatilityStopGainRule(closes, indicator.NewConstant(2), 2, AllBars)
	require.NoError(t, err)
	record := enteredRecord(models.Buy, 100)

	// Activation at 104, trail at 106-4
	assert.False(t, rule.IsSatisfied(1, record))
	assert.True(t, rule.IsSatisfied(2, record))
	assert.True(t, rule.IsSatisfied(3, record))
}

func TestTrailingATRStopGainRule(t *testing.T) {
	series := flatSeries(t, 8)
	rule, err := NewTrailingATRStopGainRule(series, 5, 1, 3)
	require.NoError(t, err)

	record := models.NewTradingRecord(models.Buy, nil)
	record.Enter(6, 100, 1)

	assert.False(t, rule.IsSatisfied(7, record))
	price, ok := rule.StopPrice(series, record.CurrentPosition())
	require.True(t, ok)
	assert.InDelta(t, 110.0, price, 1e-9)
}

func TestTrailingStopGainRule_Validation(t *testing.T) {
	closes := indicator.NewFixed(100)

	_, err := NewTrailingStopGainRule(closes, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidPercentage)
	_, err = NewTrailingFixedAmountStopGainRule(closes, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidBarCount)
	_, err = NewTrailingVolatilityStopGainRule(closes, nil, 1, 3)
	assert.ErrorIs(t, err, ErrNilIndicator)
	_, err = NewTrailingATRStopGainRule(flatSeries(t, 2), 5, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidCoefficient)
}
