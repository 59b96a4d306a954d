package rules

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// comparisonRule holds the two operands of a binary indicator comparison
type comparisonRule struct {
	first, second indicator.Indicator
}

func newComparison(first, second indicator.Indicator) (comparisonRule, error) {
	if first == nil || second == nil {
		return comparisonRule{}, ErrNilIndicator
	}
	return comparisonRule{first: first, second: second}, nil
}

// values returns both operands at index and whether both are defined
func (c comparisonRule) values(index int) (float64, float64, bool) {
	a, b := c.first.Value(index), c.second.Value(index)
	return a, b, indicator.IsDefined(a) && indicator.IsDefined(b)
}

// OverIndicatorRule is satisfied when first > second
type OverIndicatorRule struct {
	comparisonRule
}

// NewOverIndicatorRule creates a first > second rule. Use indicator.NewConstant
// to compare against a fixed threshold.
func NewOverIndicatorRule(first, second indicator.Indicator) (*OverIndicatorRule, error) {
	c, err := newComparison(first, second)
	if err != nil {
		return nil, err
	}
	return &OverIndicatorRule{c}, nil
}

func (o *OverIndicatorRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	a, b, ok := o.values(index)
	return ok && a > b
}

// UnderIndicatorRule is satisfied when first < second
type UnderIndicatorRule struct {
	comparisonRule
}

// NewUnderIndicatorRule creates a first < second rule
func NewUnderIndicatorRule(first, second indicator.Indicator) (*UnderIndicatorRule, error) {
	c, err := newComparison(first, second)
	if err != nil {
		return nil, err
	}
	return &UnderIndicatorRule{c}, nil
}

func (u *UnderIndicatorRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	a, b, ok := u.values(index)
	return ok && a < b
}

// IsEqualRule is satisfied when first == second
type IsEqualRule struct {
	comparisonRule
}

// NewIsEqualRule creates a first == second rule
func NewIsEqualRule(first, second indicator.Indicator) (*IsEqualRule, error) {
	c, err := newComparison(first, second)
	if err != nil {
		return nil, err
	}
	return &IsEqualRule{c}, nil
}

func (e *IsEqualRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	a, b, ok := e.values(index)
	return ok && a == b
}

// InPipeRule is satisfied when lower <= reference <= upper
type InPipeRule struct {
	reference, upper, lower indicator.Indicator
}

// NewInPipeRule creates a channel rule
func NewInPipeRule(reference, upper, lower indicator.Indicator) (*InPipeRule, error) {
	if reference == nil || upper == nil || lower == nil {
		return nil, ErrNilIndicator
	}
	return &InPipeRule{reference: reference, upper: upper, lower: lower}, nil
}

func (p *InPipeRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	ref, hi, lo := p.reference.Value(index), p.upper.Value(index), p.lower.Value(index)
	if !indicator.IsDefined(ref) || !indicator.IsDefined(hi) || !indicator.IsDefined(lo) {
		return false
	}
	return ref >= lo && ref <= hi
}

// CrossedUpIndicatorRule is satisfied when first moves from below second to
// above it at the evaluated index. Bars where both are equal are skipped when
// looking for the previous side.
type CrossedUpIndicatorRule struct {
	comparisonRule
}

// NewCrossedUpIndicatorRule creates an upward cross rule
func NewCrossedUpIndicatorRule(first, second indicator.Indicator) (*CrossedUpIndicatorRule, error) {
	c, err := newComparison(first, second)
	if err != nil {
		return nil, err
	}
	return &CrossedUpIndicatorRule{c}, nil
}

func (c *CrossedUpIndicatorRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	return crossed(c.first, c.second, index)
}

// CrossedDownIndicatorRule is satisfied when first moves from above second to
// below it at the evaluated index
type CrossedDownIndicatorRule struct {
	comparisonRule
}

// NewCrossedDownIndicatorRule creates a downward cross rule
func NewCrossedDownIndicatorRule(first, second indicator.Indicator) (*CrossedDownIndicatorRule, error) {
	c, err := newComparison(first, second)
	if err != nil {
		return nil, err
	}
	return &CrossedDownIndicatorRule{c}, nil
}

func (c *CrossedDownIndicatorRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	return crossed(c.second, c.first, index)
}

// crossed reports whether up went from below low to above it at index
func crossed(up, low indicator.Indicator, index int) bool {
	if index < 1 {
		return false
	}
	a, b := up.Value(index), low.Value(index)
	if !indicator.IsDefined(a) || !indicator.IsDefined(b) || a <= b {
		return false
	}

	for i := index - 1; i >= 0; i-- {
		a, b = up.Value(i), low.Value(i)
		if !indicator.IsDefined(a) || !indicator.IsDefined(b) {
			return false
		}
		if a != b {
			return a < b
		}
	}
	return false
}

// IsHighestRule is satisfied when the reference is at its highest value of
// the last barCount bars
type IsHighestRule struct {
	reference indicator.Indicator
	highest   *indicator.ExtremumIndicator
}

// NewIsHighestRule creates a new-high rule over barCount bars
func NewIsHighestRule(reference indicator.Indicator, barCount int) (*IsHighestRule, error) {
	if reference == nil {
		return nil, ErrNilIndicator
	}
	if barCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	highest, err := indicator.NewHighestValue(reference, barCount)
	if err != nil {
		return nil, err
	}
	return &IsHighestRule{reference: reference, highest: highest}, nil
}

func (h *IsHighestRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	v := h.reference.Value(index)
	return indicator.IsDefined(v) && v == h.highest.Value(index)
}

// IsLowestRule is satisfied when the reference is at its lowest value of the
// last barCount bars
type IsLowestRule struct {
	reference indicator.Indicator
	lowest    *indicator.ExtremumIndicator
}

// NewIsLowestRule creates a new-low rule over barCount bars
func NewIsLowestRule(reference indicator.Indicator, barCount int) (*IsLowestRule, error) {
	if reference == nil {
		return nil, ErrNilIndicator
	}
	if barCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	lowest, err := indicator.NewLowestValue(reference, barCount)
	if err != nil {
		return nil, err
	}
	return &IsLowestRule{reference: reference, lowest: lowest}, nil
}

func (l *IsLowestRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	v := l.reference.Value(index)
	return indicator.IsDefined(v) && v == l.lowest.Value(index)
}

// IsRisingRule is satisfied when the share of rising steps over the last
// barCount bars is at least minStrength. A minStrength of 1 requires a
// strictly rising sequence.
type IsRisingRule struct {
	trendRule
}

// NewIsRisingRule creates a rising-trend rule
func NewIsRisingRule(reference indicator.Indicator, barCount int, minStrength float64) (*IsRisingRule, error) {
	t, err := newTrend(reference, barCount, minStrength, true)
	if err != nil {
		return nil, err
	}
	return &IsRisingRule{t}, nil
}

// IsFallingRule is satisfied when the share of falling steps over the last
// barCount bars is at least minStrength
type IsFallingRule struct {
	trendRule
}

// NewIsFallingRule creates a falling-trend rule
func NewIsFallingRule(reference indicator.Indicator, barCount int, minStrength float64) (*IsFallingRule, error) {
	t, err := newTrend(reference, barCount, minStrength, false)
	if err != nil {
		return nil, err
	}
	return &IsFallingRule{t}, nil
}

type trendRule struct {
	reference   indicator.Indicator
	barCount    int
	minStrength float64
	rising      bool
}

func newTrend(reference indicator.Indicator, barCount int, minStrength float64, rising bool) (trendRule, error) {
	if reference == nil {
		return trendRule{}, ErrNilIndicator
	}
	if barCount < 1 {
		return trendRule{}, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	if math.IsNaN(minStrength) || minStrength <= 0 || minStrength > 1 {
		return trendRule{}, fmt.Errorf("%w: got %v", ErrInvalidStrength, minStrength)
	}
	return trendRule{reference: reference, barCount: barCount, minStrength: minStrength, rising: rising}, nil
}

func (t trendRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	if index < 0 {
		return false
	}
	start := index - t.barCount + 1
	if start < 0 {
		start = 0
	}

	count := 0
	for i := start; i <= index; i++ {
		prev := i - 1
		if prev < 0 {
			prev = 0
		}
		cur, before := t.reference.Value(i), t.reference.Value(prev)
		if !indicator.IsDefined(cur) || !indicator.IsDefined(before) {
			continue
		}
		if (t.rising && cur > before) || (!t.rising && cur < before) {
			count++
		}
	}
	return float64(count)/float64(t.barCount) >= t.minStrength
}
