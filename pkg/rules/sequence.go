package rules

import (
	"fmt"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// ChainLink is one step of a ChainRule: Rule must hold within Threshold bars
// before the bar where the previous step matched
type ChainLink struct {
	Rule      Rule
	Threshold int
}

// ChainRule is satisfied when its initial rule holds at the evaluated index
// and each link is found, walking backwards, within its threshold of the bar
// where the previous link matched
type ChainRule struct {
	initial Rule
	links   []ChainLink
}

// NewChainRule creates a sequenced rule. Link thresholds may be zero, which
// requires the link to hold on the same bar as the previous match.
func NewChainRule(initial Rule, links ...ChainLink) (*ChainRule, error) {
	if err := checkRules(initial); err != nil {
		return nil, err
	}
	for i, link := range links {
		if link.Rule == nil {
			return nil, fmt.Errorf("link %d: %w", i, ErrNilRule)
		}
		if link.Threshold < 0 {
			return nil, fmt.Errorf("link %d: %w: got %d", i, ErrInvalidThreshold, link.Threshold)
		}
	}

	copied := make([]ChainLink, len(links))
	copy(copied, links)
	return &ChainRule{initial: initial, links: copied}, nil
}

func (c *ChainRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	if !c.initial.IsSatisfied(index, record) {
		return false
	}

	anchor := index
	for _, link := range c.links {
		matched := -1
		for i := 0; i <= link.Threshold; i++ {
			candidate := anchor - i
			if candidate < 0 {
				break
			}
			if link.Rule.IsSatisfied(candidate, record) {
				matched = candidate
				break
			}
		}
		if matched < 0 {
			return false
		}
		anchor = matched
	}
	return true
}

func (c *ChainRule) Reset() {
	Reset(c.initial)
	for _, link := range c.links {
		Reset(link.Rule)
	}
}

// BeforeRule is satisfied when second holds at the evaluated index and,
// scanning backwards to the beginning of the series, first is found before
// reset is. On a bar where both hold, first wins.
type BeforeRule struct {
	series *indicator.BarSeries
	first  Rule
	second Rule
	reset  Rule
}

// NewBeforeRule creates an ordering rule over series
func NewBeforeRule(series *indicator.BarSeries, first, second, reset Rule) (*BeforeRule, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	if err := checkRules(first, second, reset); err != nil {
		return nil, err
	}
	return &BeforeRule{series: series, first: first, second: second, reset: reset}, nil
}

func (b *BeforeRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	if !b.second.IsSatisfied(index, record) {
		return false
	}

	begin := b.series.BeginIndex()
	if begin < 0 {
		return false
	}
	for i := index; i >= begin; i-- {
		if b.first.IsSatisfied(i, record) {
			return true
		}
		if b.reset.IsSatisfied(i, record) {
			return false
		}
	}
	return false
}

func (b *BeforeRule) Reset() {
	resetAll(b.first, b.second, b.reset)
}

// OrWithThresholdRule is satisfied when either rule holds on any of the
// threshold most recent bars ending at the evaluated index
type OrWithThresholdRule struct {
	first, second Rule
	threshold     int
}

// NewOrWithThresholdRule creates a windowed OR over threshold bars
func NewOrWithThresholdRule(first, second Rule, threshold int) (*OrWithThresholdRule, error) {
	if err := checkRules(first, second); err != nil {
		return nil, err
	}
	if threshold < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	return &OrWithThresholdRule{first: first, second: second, threshold: threshold}, nil
}

func (o *OrWithThresholdRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	start := index - o.threshold + 1
	if start < 0 {
		return false
	}
	for i := start; i <= index; i++ {
		if o.first.IsSatisfied(i, record) || o.second.IsSatisfied(i, record) {
			return true
		}
	}
	return false
}

func (o *OrWithThresholdRule) Reset() {
	resetAll(o.first, o.second)
}
