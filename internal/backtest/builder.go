package backtest

import (
	"fmt"

	"github.com/mohamedkhairy/trading-rules/internal/config"
	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
	"github.com/mohamedkhairy/trading-rules/pkg/rules"
)

type unstable interface {
	UnstableBars() int
}

// BuildStrategy assembles the crossover strategy described by cfg.
//
// Entry: the fast indicator crosses the slow one in the trade direction,
// optionally filtered by RSI. Exit: any enabled stop fires, or the opposite
// cross happens after the minimum holding period.
func BuildStrategy(series *indicator.BarSeries, cfg config.StrategyConfig, side models.TradeSide, registry *indicator.Registry, tracer rules.Tracer) (*Strategy, error) {
	if series == nil {
		return nil, indicator.ErrNilSeries
	}
	if registry == nil {
		registry = indicator.NewRegistry()
	}

	fast, err := registry.Build(series, cfg.FastIndicator)
	if err != nil {
		return nil, fmt.Errorf("fast indicator: %w", err)
	}
	slow, err := registry.Build(series, cfg.SlowIndicator)
	if err != nil {
		return nil, fmt.Errorf("slow indicator: %w", err)
	}
	closePrice, err := indicator.NewClosePrice(series)
	if err != nil {
		return nil, err
	}

	warmUp := cfg.UnstableBars
	for _, ind := range []indicator.Indicator{fast, slow} {
		if u, ok := ind.(unstable); ok && u.UnstableBars() > warmUp {
			warmUp = u.UnstableBars()
		}
	}

	entry, err := crossRule(side, fast, slow)
	if err != nil {
		return nil, err
	}
	if cfg.RSIWindow > 0 {
		filter, err := rsiFilter(series, side, cfg.RSIWindow, cfg.RSIMax)
		if err != nil {
			return nil, err
		}
		if entry, err = rules.NewAndRule(entry, filter); err != nil {
			return nil, err
		}
	}

	exit, err := crossRule(side.Opposite(), fast, slow)
	if err != nil {
		return nil, err
	}
	if cfg.MinHoldBars > 0 {
		hold, err := rules.NewOpenedPositionMinimumBarCountRule(cfg.MinHoldBars)
		if err != nil {
			return nil, err
		}
		if exit, err = rules.NewAndRule(exit, hold); err != nil {
			return nil, err
		}
	}

	stops, err := stopRules(series, closePrice, cfg)
	if err != nil {
		return nil, err
	}
	for _, stop := range stops {
		if exit, err = rules.NewOrRule(stop, exit); err != nil {
			return nil, err
		}
	}

	name := cfg.Name
	if name == "" {
		name = "crossover"
	}
	return NewStrategy(name, entry, exit, WithUnstableBars(warmUp), WithTracer(tracer))
}

func crossRule(side models.TradeSide, fast, slow indicator.Indicator) (rules.Rule, error) {
	if side == models.Buy {
		return rules.NewCrossedUpIndicatorRule(fast, slow)
	}
	return rules.NewCrossedDownIndicatorRule(fast, slow)
}

// rsiFilter rejects long entries into an overbought market and short entries
// into an oversold one
func rsiFilter(series *indicator.BarSeries, side models.TradeSide, window int, limit float64) (rules.Rule, error) {
	rsi, err := indicator.NewRSI(series, window)
	if err != nil {
		return nil, err
	}
	if side == models.Buy {
		return rules.NewUnderIndicatorRule(rsi, indicator.NewConstant(limit))
	}
	return rules.NewOverIndicatorRule(rsi, indicator.NewConstant(100-limit))
}

func stopRules(series *indicator.BarSeries, closePrice indicator.Indicator, cfg config.StrategyConfig) ([]rules.Rule, error) {
	var stops []rules.Rule
	add := func(rule rules.Rule, err error) error {
		if err != nil {
			return err
		}
		stops = append(stops, rule)
		return nil
	}

	if cfg.StopLossPercent > 0 {
		if err := add(rules.NewStopLossRule(closePrice, cfg.StopLossPercent)); err != nil {
			return nil, fmt.Errorf("stop loss: %w", err)
		}
	}
	if cfg.StopGainPercent > 0 {
		if err := add(rules.NewStopGainRule(closePrice, cfg.StopGainPercent)); err != nil {
			return nil, fmt.Errorf("stop gain: %w", err)
		}
	}
	if cfg.TrailingStopPercent > 0 {
		if err := add(rules.NewTrailingStopLossRule(closePrice, cfg.TrailingStopPercent, cfg.TrailingBarCount)); err != nil {
			return nil, fmt.Errorf("trailing stop: %w", err)
		}
	}
	if cfg.ATRWindow > 0 {
		if err := add(rules.NewATRStopLossRule(series, cfg.ATRWindow, cfg.ATRCoefficient)); err != nil {
			return nil, fmt.Errorf("atr stop: %w", err)
		}
	}
	return stops, nil
}
