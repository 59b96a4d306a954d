package rules

import (
	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// BooleanRule is satisfied at every index or at none
type BooleanRule bool

const (
	TrueRule  BooleanRule = true
	FalseRule BooleanRule = false
)

func (b BooleanRule) IsSatisfied(int, *models.TradingRecord) bool {
	return bool(b)
}

// FixedRule is satisfied at a fixed set of indexes
type FixedRule struct {
	indexes map[int]struct{}
}

// NewFixedRule creates a rule satisfied exactly at the given indexes
func NewFixedRule(indexes ...int) *FixedRule {
	set := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		set[i] = struct{}{}
	}
	return &FixedRule{indexes: set}
}

func (f *FixedRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	_, ok := f.indexes[index]
	return ok
}

// BooleanIndicatorRule passes a boolean indicator through
type BooleanIndicatorRule struct {
	source indicator.BoolIndicator
}

// NewBooleanIndicatorRule creates a rule satisfied wherever source is true
func NewBooleanIndicatorRule(source indicator.BoolIndicator) (*BooleanIndicatorRule, error) {
	if source == nil {
		return nil, ErrNilIndicator
	}
	return &BooleanIndicatorRule{source: source}, nil
}

func (b *BooleanIndicatorRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	return b.source.Bool(index)
}

// JustOnceRule latches: it is satisfied the first time its condition holds
// and never again until Reset. Not safe for concurrent use.
type JustOnceRule struct {
	rule  Rule
	fired bool
}

// NewJustOnceRule creates a one-shot rule. A nil rule makes the first
// evaluation satisfied unconditionally.
func NewJustOnceRule(rule Rule) *JustOnceRule {
	return &JustOnceRule{rule: rule}
}

func (j *JustOnceRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	if j.fired {
		return false
	}
	if j.rule != nil && !j.rule.IsSatisfied(index, record) {
		return false
	}
	j.fired = true
	return true
}

// Fired reports whether the rule has already been satisfied
func (j *JustOnceRule) Fired() bool {
	return j.fired
}

func (j *JustOnceRule) Reset() {
	j.fired = false
	if j.rule != nil {
		Reset(j.rule)
	}
}
