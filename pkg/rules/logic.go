package rules

import (
	"fmt"

	"github.com/mohamedkhairy/trading-rules/internal/models"
)

// AndRule is satisfied when both rules are. The second rule is not evaluated
// when the first one fails.
type AndRule struct {
	first, second Rule
}

// NewAndRule combines two rules with a short-circuit AND
func NewAndRule(first, second Rule) (*AndRule, error) {
	if err := checkRules(first, second); err != nil {
		return nil, err
	}
	return &AndRule{first: first, second: second}, nil
}

func (a *AndRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	return a.first.IsSatisfied(index, record) && a.second.IsSatisfied(index, record)
}

func (a *AndRule) Reset() {
	resetAll(a.first, a.second)
}

// OrRule is satisfied when either rule is. The second rule is not evaluated
// when the first one holds.
type OrRule struct {
	first, second Rule
}

// NewOrRule combines two rules with a short-circuit OR
func NewOrRule(first, second Rule) (*OrRule, error) {
	if err := checkRules(first, second); err != nil {
		return nil, err
	}
	return &OrRule{first: first, second: second}, nil
}

func (o *OrRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	return o.first.IsSatisfied(index, record) || o.second.IsSatisfied(index, record)
}

func (o *OrRule) Reset() {
	resetAll(o.first, o.second)
}

// XorRule is satisfied when exactly one rule is. Both rules are always evaluated.
type XorRule struct {
	first, second Rule
}

// NewXorRule combines two rules with an exclusive OR
func NewXorRule(first, second Rule) (*XorRule, error) {
	if err := checkRules(first, second); err != nil {
		return nil, err
	}
	return &XorRule{first: first, second: second}, nil
}

func (x *XorRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	a := x.first.IsSatisfied(index, record)
	b := x.second.IsSatisfied(index, record)
	return a != b
}

func (x *XorRule) Reset() {
	resetAll(x.first, x.second)
}

// NotRule negates a rule
type NotRule struct {
	rule Rule
}

// NewNotRule creates the negation of rule
func NewNotRule(rule Rule) (*NotRule, error) {
	if err := checkRules(rule); err != nil {
		return nil, err
	}
	return &NotRule{rule: rule}, nil
}

func (n *NotRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	return !n.rule.IsSatisfied(index, record)
}

func (n *NotRule) Reset() {
	Reset(n.rule)
}

// VoteRule is satisfied when at least requiredVotes of its rules are. Rules
// are evaluated in order and evaluation stops once the votes are reached.
type VoteRule struct {
	requiredVotes int
	rules         []Rule
}

// NewVoteRule creates an n-of-m rule
func NewVoteRule(requiredVotes int, rules ...Rule) (*VoteRule, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRules
	}
	if err := checkRules(rules...); err != nil {
		return nil, err
	}
	if requiredVotes < 1 || requiredVotes > len(rules) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidVotes, requiredVotes, len(rules))
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &VoteRule{requiredVotes: requiredVotes, rules: copied}, nil
}

// RequiredVotes returns the number of rules that must be satisfied
func (v *VoteRule) RequiredVotes() int {
	return v.requiredVotes
}

func (v *VoteRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	votes := 0
	for _, r := range v.rules {
		if r.IsSatisfied(index, record) {
			votes++
			if votes >= v.requiredVotes {
				return true
			}
		}
	}
	return false
}

func (v *VoteRule) Reset() {
	resetAll(v.rules...)
}
