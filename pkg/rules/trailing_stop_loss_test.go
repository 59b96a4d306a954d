package rules

import (
	"math"
	"testing"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingStopLossRule_Buy(t *testing.T) {
	closes := indicator.NewFixed(100, 110, 120, 130, 117, 130, 116.99)
	rule, err := NewTrailingStopLossRule(closes, 10, AllBars)
	require.NoError(t, err)
	record := models.NewTradingRecord(models.Buy, nil)

	assert.False(t, rule.IsSatisfied(0, nil))
	assert.False(t, rule.IsSatisfied(1, record))
	assert.True(t, math.IsNaN(rule.CurrentStopLimit()))

	require.True(t, record.Enter(2, 114, 1))
	assert.False(t, rule.IsSatisfied(2, record))
	assert.InDelta(t, 108.0, rule.CurrentStopLimit(), 1e-9)
	assert.False(t, rule.IsSatisfied(3, record))
	assert.True(t, rule.IsSatisfied(4, record))
	assert.InDelta(t, 117.0, rule.CurrentStopLimit(), 1e-9)

	require.True(t, record.Exit(5, 130, 1))
	require.True(t, record.Enter(5, 128, 1))
	assert.False(t, rule.IsSatisfied(5, record))
	assert.True(t, rule.IsSatisfied(6, record))
}

func TestTrailingStopLossRule_BuyWithBarCount(t *testing.T) {
	closes := indicator.NewFixed(100, 110, 120, 130, 120, 117, 117, 130, 116.99)
	rule, err := NewTrailingStopLossRule(closes, 10, 3)
	require.NoError(t, err)
	record := models.NewTradingRecord(models.Buy, nil)

	assert.False(t, rule.IsSatisfied(0, nil))
	assert.False(t, rule.IsSatisfied(1, record))

	require.True(t, record.Enter(2, 114, 1))
	expected := map[int]bool{2: false, 3: false, 4: false, 5: true, 6: false}
	for index := 2; index <= 6; index++ {
		assert.Equal(t, expected[index], rule.IsSatisfied(index, record), "index %d", index)
	}

	require.True(t, record.Exit(7, 130, 1))
	require.True(t, record.Enter(7, 128, 1))
	assert.False(t, rule.IsSatisfied(7, record))
	assert.True(t, rule.IsSatisfied(8, record))
}

func TestTrailingStopLossRule_Sell(t *testing.T) {
	closes := indicator.NewFixed(100, 90, 80, 70, 77, 120, 132.01)
	rule := Must(NewTrailingStopLossRule(closes, 10, AllBars))
	record := models.NewTradingRecord(models.Sell, nil)

	assert.False(t, rule.IsSatisfied(0, nil))
	assert.False(t, rule.IsSatisfied(1, record))

	require.True(t, record.Enter(2, 84, 1))
	assert.False(t, rule.IsSatisfied(2, record))
	assert.False(t, rule.IsSatisfied(3, record))
	assert.True(t, rule.IsSatisfied(4, record))

	require.True(t, record.Exit(5, 120, 1))
	require.True(t, record.Enter(5, 128, 1))
	assert.False(t, rule.IsSatisfied(5, record))
	assert.True(t, rule.IsSatisfied(6, record))
}

func TestTrailingStopLossRule_SellWithBarCount(t *testing.T) {
	closes := indicator.NewFixed(100, 90, 80, 70, 70, 73, 77, 90, 120, 132.01)
	rule := Must(NewTrailingStopLossRule(closes, 10, 3))
	record := models.NewTradingRecord(models.Sell, nil)

	require.True(t, record.Enter(2, 84, 1))
	expected := map[int]bool{2: false, 3: false, 4: false, 5: false, 6: true}
	for index := 2; index <= 6; index++ {
		assert.Equal(t, expected[index], rule.IsSatisfied(index, record), "index %d", index)
	}

	require.True(t, record.Exit(7, 90, 1))
	require.True(t, record.Enter(7, 91, 1))
	assert.False(t, rule.IsSatisfied(7, record))
	assert.True(t, rule.IsSatisfied(8, record))
}

func TestTrailingStopLossRule_NeverLooserThanEntry(t *testing.T) {
	// Prices never exceed the entry, so the stop trails the entry price
	closes := indicator.NewFixed(95, 92, 90.5, 90)
	rule := Must(NewTrailingFixedAmountStopLossRule(closes, 10, AllBars))
	record := enteredRecord(models.Buy, 100)

	assert.False(t, rule.IsSatisfied(2, record))
	assert.True(t, rule.IsSatisfied(3, record))
	assert.InDelta(t, 90.0, rule.CurrentStopLimit(), 1e-9)
}

func TestTrailingStopLossRule_StopPrice(t *testing.T) {
	closes := indicator.NewFixed(100, 110, 120, 130)
	rule := Must(NewTrailingStopLossRule(closes, 10, 2))
	record := models.NewTradingRecord(models.Buy, nil)
	record.Enter(2, 114, 1)

	// One-bar lookback at the entry bar, regardless of later highs
	price, ok := rule.StopPrice(nil, record.CurrentPosition())
	require.True(t, ok)
	assert.InDelta(t, 108.0, price, 1e-9)

	_, ok = rule.StopPrice(nil, nil)
	assert.False(t, ok)
}

func TestTrailingStopLossRule_Reset(t *testing.T) {
	closes := indicator.NewFixed(100, 90)
	rule := Must(NewTrailingStopLossRule(closes, 5, AllBars))
	record := enteredRecord(models.Buy, 100)

	assert.True(t, rule.IsSatisfied(1, record))
	assert.False(t, math.IsNaN(rule.CurrentStopLimit()))

	Reset(rule)
	assert.True(t, math.IsNaN(rule.CurrentStopLimit()))
}

func TestTrailingVolatilityStopLossRule(t *testing.T) {
	closes := indicator.NewFixed(100, 104, 101.5, 100.5)
	volatility := indicator.NewConstant(2)
	rule, err := NewTrailingVolatilityStopLossRule(closes, volatility, 1.5, AllBars)
	require.NoError(t, err)
	record := enteredRecord(models.Buy, 100)

	// Stop trails the high of 104 by 3
	assert.False(t, rule.IsSatisfied(2, record))
	assert.True(t, rule.IsSatisfied(3, record))
}

func TestTrailingATRStopLossRule(t *testing.T) {
	series := flatSeries(t, 10)
	rule, err := NewTrailingATRStopLossRule(series, 5, 1, AllBars)
	require.NoError(t, err)

	record := models.NewTradingRecord(models.Buy, nil)
	record.Enter(9, 100, 1)

	assert.False(t, rule.IsSatisfied(9, record))
	assert.InDelta(t, 90.0, rule.CurrentStopLimit(), 1e-9)
}

func TestTrailingStopLossRule_Validation(t *testing.T) {
	closes := indicator.NewFixed(100)

	_, err := NewTrailingStopLossRule(closes, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidBarCount)
	_, err = NewTrailingStopLossRule(closes, -10, 3)
	assert.ErrorIs(t, err, ErrInvalidPercentage)
	_, err = NewTrailingFixedAmountStopLossRule(nil, 1, 3)
	assert.ErrorIs(t, err, ErrNilIndicator)
	_, err = NewTrailingVolatilityStopLossRule(closes, closes, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidCoefficient)
	_, err = NewTrailingATRStopLossRule(nil, 14, 1, 3)
	assert.ErrorIs(t, err, ErrNilSeries)
}
