package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mohamedkhairy/trading-rules/internal/models"
)

// Config holds all configuration for the backtest command
type Config struct {
	// Common
	Environment string
	LogLevel    string

	Backtest BacktestConfig
	Strategy StrategyConfig
}

// BacktestConfig holds the data source and execution settings
type BacktestConfig struct {
	SourceType string // "csv", "json" or "mock"
	DataFile   string
	Symbol     string
	BarPeriod  time.Duration
	MockBars   int
	MockSeed   int64

	Side      string // "buy" or "sell"
	Amount    float64
	CostModel string // "zero", "linear" or "fixed"
	CostValue float64

	// MetricsPort serves /health and /metrics when positive
	MetricsPort int
	Timeout     time.Duration
}

// StrategyConfig describes the rules of the built-in crossover strategy.
// Zero values disable the optional rules.
type StrategyConfig struct {
	Name          string
	FastIndicator string // registry spec, e.g. "ema:9"
	SlowIndicator string
	RSIWindow     int
	RSIMax        float64

	StopLossPercent     float64
	StopGainPercent     float64
	TrailingStopPercent float64
	TrailingBarCount    int
	ATRWindow           int
	ATRCoefficient      float64
	MinHoldBars         int

	UnstableBars int
	TraceRules   bool
}

// Load loads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Backtest: BacktestConfig{
			SourceType:  strings.ToLower(getEnv("BACKTEST_SOURCE", "csv")),
			DataFile:    getEnv("BACKTEST_DATA_FILE", ""),
			Symbol:      strings.ToUpper(getEnv("BACKTEST_SYMBOL", "")),
			BarPeriod:   getEnvAsDuration("BACKTEST_BAR_PERIOD", 0),
			MockBars:    getEnvAsInt("BACKTEST_MOCK_BARS", 500),
			MockSeed:    int64(getEnvAsInt("BACKTEST_MOCK_SEED", 1)),
			Side:        getEnv("BACKTEST_SIDE", "buy"),
			Amount:      getEnvAsFloat("BACKTEST_AMOUNT", 1),
			CostModel:   strings.ToLower(getEnv("BACKTEST_COST_MODEL", "zero")),
			CostValue:   getEnvAsFloat("BACKTEST_COST_VALUE", 0),
			MetricsPort: getEnvAsInt("BACKTEST_METRICS_PORT", 0),
			Timeout:     getEnvAsDuration("BACKTEST_TIMEOUT", 5*time.Minute),
		},
		Strategy: StrategyConfig{
			Name:                getEnv("STRATEGY_NAME", "crossover"),
			FastIndicator:       getEnv("STRATEGY_FAST_INDICATOR", "ema:9"),
			SlowIndicator:       getEnv("STRATEGY_SLOW_INDICATOR", "ema:21"),
			RSIWindow:           getEnvAsInt("STRATEGY_RSI_WINDOW", 0),
			RSIMax:              getEnvAsFloat("STRATEGY_RSI_MAX", 70),
			StopLossPercent:     getEnvAsFloat("STRATEGY_STOP_LOSS_PERCENT", 2),
			StopGainPercent:     getEnvAsFloat("STRATEGY_STOP_GAIN_PERCENT", 0),
			TrailingStopPercent: getEnvAsFloat("STRATEGY_TRAILING_STOP_PERCENT", 0),
			TrailingBarCount:    getEnvAsInt("STRATEGY_TRAILING_BAR_COUNT", 20),
			ATRWindow:           getEnvAsInt("STRATEGY_ATR_WINDOW", 0),
			ATRCoefficient:      getEnvAsFloat("STRATEGY_ATR_COEFFICIENT", 3),
			MinHoldBars:         getEnvAsInt("STRATEGY_MIN_HOLD_BARS", 1),
			UnstableBars:        getEnvAsInt("STRATEGY_UNSTABLE_BARS", 0),
			TraceRules:          getEnvAsBool("STRATEGY_TRACE_RULES", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Backtest.SourceType {
	case "csv", "json":
		if c.Backtest.DataFile == "" {
			return fmt.Errorf("BACKTEST_DATA_FILE is required for source %q", c.Backtest.SourceType)
		}
	case "mock":
		if c.Backtest.MockBars < 1 {
			return fmt.Errorf("BACKTEST_MOCK_BARS must be positive")
		}
	default:
		return fmt.Errorf("BACKTEST_SOURCE must be csv, json or mock, got %q", c.Backtest.SourceType)
	}
	if c.Backtest.SourceType == "csv" && c.Backtest.Symbol == "" {
		return fmt.Errorf("BACKTEST_SYMBOL is required for csv data")
	}
	if _, err := c.Backtest.TradeSide(); err != nil {
		return fmt.Errorf("BACKTEST_SIDE: %w", err)
	}
	if c.Backtest.Amount <= 0 {
		return fmt.Errorf("BACKTEST_AMOUNT must be positive")
	}
	if _, err := c.Backtest.Costs(); err != nil {
		return fmt.Errorf("BACKTEST_COST_MODEL: %w", err)
	}
	if c.Backtest.Timeout <= 0 {
		return fmt.Errorf("BACKTEST_TIMEOUT must be positive")
	}

	s := c.Strategy
	if s.FastIndicator == "" || s.SlowIndicator == "" {
		return fmt.Errorf("STRATEGY_FAST_INDICATOR and STRATEGY_SLOW_INDICATOR are required")
	}
	for name, v := range map[string]float64{
		"STRATEGY_STOP_LOSS_PERCENT":     s.StopLossPercent,
		"STRATEGY_STOP_GAIN_PERCENT":     s.StopGainPercent,
		"STRATEGY_TRAILING_STOP_PERCENT": s.TrailingStopPercent,
		"STRATEGY_RSI_WINDOW":            float64(s.RSIWindow),
		"STRATEGY_ATR_WINDOW":            float64(s.ATRWindow),
		"STRATEGY_MIN_HOLD_BARS":         float64(s.MinHoldBars),
		"STRATEGY_UNSTABLE_BARS":         float64(s.UnstableBars),
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if s.TrailingStopPercent > 0 && s.TrailingBarCount < 1 {
		return fmt.Errorf("STRATEGY_TRAILING_BAR_COUNT must be positive")
	}
	if s.ATRWindow > 0 && s.ATRCoefficient <= 0 {
		return fmt.Errorf("STRATEGY_ATR_COEFFICIENT must be positive")
	}
	if s.RSIWindow > 0 && (s.RSIMax <= 0 || s.RSIMax > 100) {
		return fmt.Errorf("STRATEGY_RSI_MAX must be in (0, 100]")
	}
	return nil
}

// TradeSide returns the entry side of every position
func (b BacktestConfig) TradeSide() (models.TradeSide, error) {
	return models.ParseTradeSide(b.Side)
}

// Costs returns the configured transaction cost model
func (b BacktestConfig) Costs() (models.CostModel, error) {
	switch b.CostModel {
	case "", "zero":
		return models.ZeroCostModel{}, nil
	case "linear":
		model, err := models.NewLinearCostModel(b.CostValue)
		if err != nil {
			return nil, err
		}
		return model, nil
	case "fixed":
		model, err := models.NewFixedCostModel(b.CostValue)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unknown cost model %q", b.CostModel)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
