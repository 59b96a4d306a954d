package rules

import "github.com/mohamedkhairy/trading-rules/internal/models"

// Tracer receives the outcome of every evaluation of a traced rule
type Tracer interface {
	Trace(name string, index int, satisfied bool)
}

// TracerFunc adapts a function to the Tracer interface
type TracerFunc func(name string, index int, satisfied bool)

func (f TracerFunc) Trace(name string, index int, satisfied bool) {
	f(name, index, satisfied)
}

// TracedRule reports each evaluation of the wrapped rule to a tracer
type TracedRule struct {
	name   string
	rule   Rule
	tracer Tracer
}

// Traced wraps rule so every evaluation is reported to tracer under name
func Traced(name string, rule Rule, tracer Tracer) (*TracedRule, error) {
	if err := checkRules(rule); err != nil {
		return nil, err
	}
	if tracer == nil {
		tracer = nopTracer{}
	}
	return &TracedRule{name: name, rule: rule, tracer: tracer}, nil
}

// Name returns the name evaluations are reported under
func (t *TracedRule) Name() string {
	return t.name
}

// Unwrap returns the traced rule
func (t *TracedRule) Unwrap() Rule {
	return t.rule
}

func (t *TracedRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	satisfied := t.rule.IsSatisfied(index, record)
	t.tracer.Trace(t.name, index, satisfied)
	return satisfied
}

func (t *TracedRule) Reset() {
	Reset(t.rule)
}

// Tracers fans evaluations out to every non-nil tracer
func Tracers(tracers ...Tracer) Tracer {
	var fanout multiTracer
	for _, t := range tracers {
		if t != nil {
			fanout = append(fanout, t)
		}
	}
	if len(fanout) == 1 {
		return fanout[0]
	}
	return fanout
}

type multiTracer []Tracer

func (m multiTracer) Trace(name string, index int, satisfied bool) {
	for _, t := range m {
		t.Trace(name, index, satisfied)
	}
}

type nopTracer struct{}

func (nopTracer) Trace(string, int, bool) {}
