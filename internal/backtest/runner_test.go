package backtest

import (
	"context"
	"testing"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/internal/observability"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/mohamedkhairy/trading-rules/pkg/rules"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(nil, DefaultRunnerConfig(), nil)
	assert.ErrorIs(t, err, indicator.ErrNilSeries)

	config := DefaultRunnerConfig()
	config.Amount = 0
	_, err = NewRunner(newSeries(t, 1), config, nil)
	assert.Error(t, err)
}

func TestRunner_Run(t *testing.T) {
	series := newSeries(t, 10, 11, 12, 13, 14, 15, 16, 17)
	core, logs := observer.New(zapcore.InfoLevel)

	runner, err := NewRunner(series, DefaultRunnerConfig(), zap.New(core))
	require.NoError(t, err)

	strategy, err := NewStrategy("fixed-run", rules.NewFixedRule(1, 5), rules.NewFixedRule(3, 7))
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), strategy)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "fixed-run", result.Strategy)
	assert.Equal(t, 8, result.Bars)
	assert.Equal(t, 0, result.Start)
	assert.Equal(t, 7, result.End)

	positions := result.Record.Positions()
	require.Len(t, positions, 2)
	assert.Equal(t, 1, positions[0].Entry().Index)
	assert.Equal(t, 11.0, positions[0].Entry().Price)
	assert.Equal(t, 13.0, positions[0].Exit().Price)
	assert.Equal(t, 5, positions[1].Entry().Index)
	assert.Equal(t, 7, positions[1].Exit().Index)
	assert.True(t, result.Record.IsClosed())

	assert.InDelta(t, 4.0, result.NetProfit(), 1e-9)
	assert.InDelta(t, 4.0, result.GrossProfit(), 1e-9)
	assert.Equal(t, 2, result.WinningPositions())

	completed := logs.FilterMessage("Backtest completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, result.RunID, fields["run_id"])
	assert.Equal(t, "fixed-run", fields["strategy"])
	assert.Equal(t, int64(2), fields["positions"])

	assert.Equal(t, 1.0, testutil.ToFloat64(observability.BacktestRuns.WithLabelValues("fixed-run")))
	assert.Equal(t, 2.0, testutil.ToFloat64(observability.BacktestPositions.WithLabelValues("fixed-run")))
}

func TestRunner_SellSideWithCosts(t *testing.T) {
	series := newSeries(t, 20, 18, 16, 17)
	fixed, err := models.NewFixedCostModel(0.5)
	require.NoError(t, err)

	runner, err := NewRunner(series, RunnerConfig{Side: models.Sell, Amount: 2, CostModel: fixed}, zap.NewNop())
	require.NoError(t, err)

	strategy, err := NewStrategy("short", rules.NewFixedRule(0), rules.NewFixedRule(2))
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), strategy)
	require.NoError(t, err)
	require.Len(t, result.Record.Positions(), 1)

	// (20 - 16) * 2 before costs
	assert.InDelta(t, 8.0, result.GrossProfit(), 1e-9)
	assert.Less(t, result.NetProfit(), result.GrossProfit())
}

func TestRunner_UnstableBarsAndOpenPosition(t *testing.T) {
	series := newSeries(t, 10, 11, 12, 13, 14, 15, 16, 17)
	runner, err := NewRunner(series, DefaultRunnerConfig(), zap.NewNop())
	require.NoError(t, err)

	strategy, err := NewStrategy("unstable", rules.NewFixedRule(1, 5), rules.NewFixedRule(3), WithUnstableBars(2))
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), strategy)
	require.NoError(t, err)

	assert.Empty(t, result.Record.Positions())
	assert.False(t, result.Record.IsClosed())
	assert.Equal(t, 5, result.Record.CurrentPosition().Entry().Index)
	assert.Equal(t, 0.0, result.NetProfit())
}

func TestRunner_ResetsStrategyBetweenRuns(t *testing.T) {
	series := newSeries(t, 1, 2, 3, 4, 5)
	runner, err := NewRunner(series, DefaultRunnerConfig(), zap.NewNop())
	require.NoError(t, err)

	strategy, err := NewStrategy("once", rules.NewJustOnceRule(nil), rules.NewFixedRule(2))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := runner.Run(context.Background(), strategy)
		require.NoError(t, err)
		assert.Len(t, result.Record.Positions(), 1, "run %d", i)
	}
}

func TestRunner_RunRange(t *testing.T) {
	series := newSeries(t, 1, 2, 3, 4, 5)
	runner, err := NewRunner(series, DefaultRunnerConfig(), zap.NewNop())
	require.NoError(t, err)

	strategy, err := NewStrategy("range", rules.TrueRule, rules.TrueRule)
	require.NoError(t, err)

	result, err := runner.RunRange(context.Background(), strategy, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Bars)
	require.Len(t, result.Record.Positions(), 1)
	assert.Equal(t, 1, result.Record.Positions()[0].Entry().Index)
	assert.Equal(t, 2, result.Record.Positions()[0].Exit().Index)
	assert.Equal(t, 3, result.Record.CurrentPosition().Entry().Index)

	tests := []struct {
		name       string
		start, end int
	}{
		{"start before series", -1, 2},
		{"end after series", 0, 5},
		{"inverted", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.RunRange(context.Background(), strategy, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}

	_, err = runner.RunRange(context.Background(), nil, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestRunner_Errors(t *testing.T) {
	empty, err := indicator.NewBarSeries("empty")
	require.NoError(t, err)
	runner, err := NewRunner(empty, DefaultRunnerConfig(), zap.NewNop())
	require.NoError(t, err)

	strategy, err := NewStrategy("s", rules.TrueRule, rules.FalseRule)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), strategy)
	assert.ErrorIs(t, err, ErrEmptySeries)

	runner, err = NewRunner(newSeries(t, 1, 2, 3), DefaultRunnerConfig(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx, strategy)
	assert.ErrorIs(t, err, context.Canceled)
}
