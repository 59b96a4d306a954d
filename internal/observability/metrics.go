package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RuleEvaluations counts traced rule evaluations by outcome
	RuleEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_evaluations_total",
			Help: "Total number of traced rule evaluations",
		},
		[]string{"rule", "result"}, // "satisfied" or "unsatisfied"
	)

	BacktestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Total number of backtest runs",
		},
		[]string{"strategy"},
	)

	BacktestPositions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_positions_total",
			Help: "Total number of positions closed by backtests",
		},
		[]string{"strategy"},
	)

	BacktestRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtest_run_duration_seconds",
			Help:    "Wall-clock duration of backtest runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"strategy"},
	)
)

func resultLabel(satisfied bool) string {
	if satisfied {
		return "satisfied"
	}
	return "unsatisfied"
}
