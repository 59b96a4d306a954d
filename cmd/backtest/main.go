package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/backtest"
	"github.com/mohamedkhairy/trading-rules/internal/config"
	"github.com/mohamedkhairy/trading-rules/internal/data"
	"github.com/mohamedkhairy/trading-rules/internal/observability"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/mohamedkhairy/trading-rules/pkg/logger"
	"github.com/mohamedkhairy/trading-rules/pkg/rules"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting backtest",
		logger.String("source", cfg.Backtest.SourceType),
		logger.String("symbol", cfg.Backtest.Symbol),
		logger.String("strategy", cfg.Strategy.Name),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Health and metrics server
	var (
		wg       sync.WaitGroup
		finished atomic.Bool
		server   *http.Server
	)
	if cfg.Backtest.MetricsPort > 0 {
		router := observability.NewRouter(func() map[string]interface{} {
			return map[string]interface{}{
				"backtest": map[string]interface{}{
					"finished": finished.Load(),
				},
			}
		})
		server = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Backtest.MetricsPort),
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("Starting health and metrics server",
				logger.Int("port", cfg.Backtest.MetricsPort),
			)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Health and metrics server failed",
					logger.ErrorField(err),
				)
			}
		}()
	}

	runErr := run(ctx, cfg)
	finished.Store(true)

	if server != nil {
		if runErr == nil {
			logger.Info("Backtest finished, serving metrics until interrupted")
			<-ctx.Done()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Health server shutdown failed", logger.ErrorField(err))
		}
		wg.Wait()
	}

	if runErr != nil {
		logger.Error("Backtest failed", logger.ErrorField(runErr))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Backtest.Timeout)
	defer cancel()

	source, err := data.NewSourceFactory().Create(cfg.Backtest.SourceType, data.SourceConfig{
		Path:   cfg.Backtest.DataFile,
		Symbol: cfg.Backtest.Symbol,
		Period: cfg.Backtest.BarPeriod,
		Bars:   cfg.Backtest.MockBars,
		Seed:   cfg.Backtest.MockSeed,
	})
	if err != nil {
		return err
	}

	series, err := data.LoadSeries(ctx, source, cfg.Backtest.Symbol)
	if err != nil {
		return err
	}
	logger.Info("Loaded bars",
		logger.String("source", source.Name()),
		logger.Int("bars", series.Len()),
		logger.Time("first", series.Bar(series.BeginIndex()).Timestamp),
		logger.Time("last", series.LastBar().Timestamp),
	)

	side, err := cfg.Backtest.TradeSide()
	if err != nil {
		return err
	}
	costs, err := cfg.Backtest.Costs()
	if err != nil {
		return err
	}

	var tracer rules.Tracer
	if cfg.Strategy.TraceRules {
		tracer = rules.Tracers(
			observability.NewZapTracer(logger.Named("rules")),
			observability.NewPrometheusTracer(),
		)
	}

	registry := indicator.NewRegistry()
	logger.Debug("Registered indicators", logger.Int("count", len(registry.List())))

	strategy, err := backtest.BuildStrategy(series, cfg.Strategy, side, registry, tracer)
	if err != nil {
		return fmt.Errorf("failed to build strategy: %w", err)
	}

	runner, err := backtest.NewRunner(series, backtest.RunnerConfig{
		Side:      side,
		Amount:    cfg.Backtest.Amount,
		CostModel: costs,
	}, logger.Named("backtest"))
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, strategy)
	if err != nil {
		return err
	}

	positions := result.Record.Positions()
	logger.Info("Backtest summary",
		logger.String("run_id", result.RunID),
		logger.String("strategy", result.Strategy),
		logger.Int("bars", result.Bars),
		logger.Int("unstable_bars", strategy.UnstableBars()),
		logger.Int("positions", len(positions)),
		logger.Int("winning_positions", result.WinningPositions()),
		logger.Float64("gross_profit", result.GrossProfit()),
		logger.Float64("net_profit", result.NetProfit()),
		logger.Bool("position_open", !result.Record.IsClosed()),
		logger.Duration("duration", result.Duration),
	)
	for i, p := range positions {
		logger.Debug("Position",
			logger.Int("n", i+1),
			logger.Int("entry_index", p.Entry().Index),
			logger.Float64("entry_price", p.Entry().Price),
			logger.Int("exit_index", p.Exit().Index),
			logger.Float64("exit_price", p.Exit().Price),
			logger.Float64("profit", p.Profit()),
		)
	}
	return nil
}
