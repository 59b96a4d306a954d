// Package rules composes boolean trading signals over a bar series and derives
// stop-loss and stop-gain exit prices for open positions.
//
// Evaluation never fails: undefined inputs (no record, no open position, NaN
// indicator values, insufficient history) make a rule unsatisfied. Rules that
// carry state implement Resettable and are not safe for concurrent use.
package rules

import "github.com/mohamedkhairy/trading-rules/internal/models"

// Rule is a trading signal evaluated at a bar index
type Rule interface {
	// IsSatisfied reports whether the rule holds at index. record may be nil.
	IsSatisfied(index int, record *models.TradingRecord) bool
}

// Func adapts a function to the Rule interface
type Func func(index int, record *models.TradingRecord) bool

func (f Func) IsSatisfied(index int, record *models.TradingRecord) bool {
	return f(index, record)
}

// Resettable is implemented by rules that keep evaluation state, and by
// combinators so the state of a whole tree can be cleared before reuse
type Resettable interface {
	Reset()
}

// Satisfied evaluates rule at index without a trading record
func Satisfied(rule Rule, index int) bool {
	return rule.IsSatisfied(index, nil)
}

// Reset clears the evaluation state of rule and its children, if any
func Reset(rule Rule) {
	if r, ok := rule.(Resettable); ok {
		r.Reset()
	}
}

// Must returns r or panics if err is non-nil. Meant for composing rule trees
// from values known to be valid.
func Must[R Rule](r R, err error) R {
	if err != nil {
		panic(err)
	}
	return r
}

func checkRules(rules ...Rule) error {
	for _, r := range rules {
		if r == nil || isNilRule(r) {
			return ErrNilRule
		}
	}
	return nil
}

// isNilRule catches typed nils of this package's rule types, which compare
// unequal to a nil interface but would panic on evaluation
func isNilRule(r Rule) bool {
	switch v := r.(type) {
	case Func:
		return v == nil
	case *FixedRule:
		return v == nil
	case *BooleanIndicatorRule:
		return v == nil
	case *JustOnceRule:
		return v == nil
	case *DayOfWeekRule:
		return v == nil
	case *HourOfDayRule:
		return v == nil
	case *MinuteOfHourRule:
		return v == nil
	case *TimeRangeRule:
		return v == nil
	case *OverIndicatorRule:
		return v == nil
	case *UnderIndicatorRule:
		return v == nil
	case *IsEqualRule:
		return v == nil
	case *InPipeRule:
		return v == nil
	case *CrossedUpIndicatorRule:
		return v == nil
	case *CrossedDownIndicatorRule:
		return v == nil
	case *IsHighestRule:
		return v == nil
	case *IsLowestRule:
		return v == nil
	case *IsRisingRule:
		return v == nil
	case *IsFallingRule:
		return v == nil
	case *AndRule:
		return v == nil
	case *OrRule:
		return v == nil
	case *XorRule:
		return v == nil
	case *NotRule:
		return v == nil
	case *VoteRule:
		return v == nil
	case *WaitForRule:
		return v == nil
	case *OpenedPositionMinimumBarCountRule:
		return v == nil
	case *OpenPositionDurationRule:
		return v == nil
	case *OpenPositionMinimumTimeRule:
		return v == nil
	case *RiskRewardRatioRule:
		return v == nil
	case *ChainRule:
		return v == nil
	case *BeforeRule:
		return v == nil
	case *OrWithThresholdRule:
		return v == nil
	case *StopLossRule:
		return v == nil
	case *StopGainRule:
		return v == nil
	case *TracedRule:
		return v == nil
	case *TrailingStopGainRule:
		return v == nil
	case *TrailingStopLossRule:
		return v == nil
	}
	return false
}

func resetAll(rules ...Rule) {
	for _, r := range rules {
		Reset(r)
	}
}
