package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/internal/observability"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/mohamedkhairy/trading-rules/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrEmptySeries is returned when there are no bars to run over
	ErrEmptySeries = errors.New("series has no bars")
	// ErrInvalidRange is returned for a run range outside the series
	ErrInvalidRange = errors.New("invalid run range")
)

// RunnerConfig holds the execution settings shared by all runs
type RunnerConfig struct {
	// Side is the entry side of every position
	Side models.TradeSide
	// Amount is the quantity traded on every entry and exit
	Amount    float64
	CostModel models.CostModel
}

// DefaultRunnerConfig returns a long-only, one unit, cost-free configuration
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Side:      models.Buy,
		Amount:    1,
		CostModel: models.ZeroCostModel{},
	}
}

// Runner walks a bar series and executes a strategy at each bar close
type Runner struct {
	series *indicator.BarSeries
	config RunnerConfig
	logger *zap.Logger
}

// Result is the outcome of a single run
type Result struct {
	RunID    string
	Strategy string
	Record   *models.TradingRecord
	// Start and End are the first and last evaluated indices
	Start    int
	End      int
	Bars     int
	Duration time.Duration
}

// NewRunner creates a runner over series. A nil logger uses the global one.
func NewRunner(series *indicator.BarSeries, config RunnerConfig, log *zap.Logger) (*Runner, error) {
	if series == nil {
		return nil, indicator.ErrNilSeries
	}
	if config.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", config.Amount)
	}
	if config.CostModel == nil {
		config.CostModel = models.ZeroCostModel{}
	}
	if log == nil {
		log = logger.Named("backtest")
	}
	return &Runner{series: series, config: config, logger: log}, nil
}

// Run executes strategy over the whole series
func (r *Runner) Run(ctx context.Context, strategy *Strategy) (*Result, error) {
	if r.series.IsEmpty() {
		return nil, ErrEmptySeries
	}
	return r.RunRange(ctx, strategy, r.series.BeginIndex(), r.series.EndIndex())
}

// RunRange executes strategy over the bars in [start, end]. The strategy is
// reset first. A position still open at end is left open in the record.
func (r *Runner) RunRange(ctx context.Context, strategy *Strategy, start, end int) (*Result, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrInvalidStrategy)
	}
	if r.series.IsEmpty() {
		return nil, ErrEmptySeries
	}
	if start < r.series.BeginIndex() || end > r.series.EndIndex() || start > end {
		return nil, fmt.Errorf("%w: [%d, %d] outside [%d, %d]",
			ErrInvalidRange, start, end, r.series.BeginIndex(), r.series.EndIndex())
	}

	runID := uuid.New().String()
	ctx = logger.WithStrategy(logger.WithRunID(ctx, runID), strategy.Name())
	log := logger.FromContext(ctx, r.logger)

	log.Info("Starting backtest",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.String("side", r.config.Side.String()),
	)

	strategy.Reset()
	record := models.NewTradingRecord(r.config.Side, r.config.CostModel)
	began := time.Now()

	for index := start; index <= end; index++ {
		if err := ctx.Err(); err != nil {
			log.Warn("Backtest interrupted", zap.Int("index", index), zap.Error(err))
			return nil, fmt.Errorf("backtest interrupted at bar %d: %w", index, err)
		}

		if !strategy.ShouldOperate(index, record) {
			continue
		}

		bar := r.series.Bar(index)
		if record.Operate(index, bar.Close, r.config.Amount) {
			trade := record.LastTrade()
			log.Debug("Trade executed",
				zap.Int("index", index),
				zap.String("side", trade.Side.String()),
				zap.Float64("price", trade.Price),
				zap.Time("timestamp", bar.Timestamp),
			)
		}
	}

	result := &Result{
		RunID:    runID,
		Strategy: strategy.Name(),
		Record:   record,
		Start:    start,
		End:      end,
		Bars:     end - start + 1,
		Duration: time.Since(began),
	}

	observability.BacktestRuns.WithLabelValues(result.Strategy).Inc()
	observability.BacktestPositions.WithLabelValues(result.Strategy).Add(float64(len(record.Positions())))
	observability.BacktestRunDuration.WithLabelValues(result.Strategy).Observe(result.Duration.Seconds())

	log.Info("Backtest completed",
		zap.Int("bars", result.Bars),
		zap.Int("positions", len(record.Positions())),
		zap.Float64("net_profit", result.NetProfit()),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// NetProfit sums the net profit of every closed position
func (r *Result) NetProfit() float64 {
	var total float64
	for _, p := range r.Record.Positions() {
		total += p.Profit()
	}
	return total
}

// GrossProfit sums the profit of every closed position before costs
func (r *Result) GrossProfit() float64 {
	var total float64
	for _, p := range r.Record.Positions() {
		total += p.GrossProfit()
	}
	return total
}

// WinningPositions counts the closed positions with a positive net profit
func (r *Result) WinningPositions() int {
	var wins int
	for _, p := range r.Record.Positions() {
		if p.Profit() > 0 {
			wins++
		}
	}
	return wins
}
