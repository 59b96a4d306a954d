package observability

import (
	"github.com/mohamedkhairy/trading-rules/pkg/rules"
	"go.uber.org/zap"
)

// ZapTracer logs every traced rule evaluation at debug level
type ZapTracer struct {
	logger *zap.Logger
}

// NewZapTracer creates a tracer logging to logger
func NewZapTracer(logger *zap.Logger) *ZapTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTracer{logger: logger}
}

func (z *ZapTracer) Trace(name string, index int, satisfied bool) {
	if ce := z.logger.Check(zap.DebugLevel, "Rule evaluated"); ce != nil {
		ce.Write(
			zap.String("rule", name),
			zap.Int("index", index),
			zap.Bool("satisfied", satisfied),
		)
	}
}

// PrometheusTracer counts traced rule evaluations in rule_evaluations_total
type PrometheusTracer struct{}

// NewPrometheusTracer creates a counting tracer
func NewPrometheusTracer() PrometheusTracer {
	return PrometheusTracer{}
}

func (PrometheusTracer) Trace(name string, _ int, satisfied bool) {
	RuleEvaluations.WithLabelValues(name, resultLabel(satisfied)).Inc()
}

var (
	_ rules.Tracer = (*ZapTracer)(nil)
	_ rules.Tracer = PrometheusTracer{}
)
