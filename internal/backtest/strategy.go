package backtest

import (
	"errors"
	"fmt"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/rules"
)

var (
	// ErrInvalidStrategy is returned for a strategy without a name or rules
	ErrInvalidStrategy = errors.New("invalid strategy")
)

// Strategy pairs an entry rule with an exit rule. No trade is signalled during
// the first UnstableBars bars.
type Strategy struct {
	name         string
	entry        rules.Rule
	exit         rules.Rule
	unstableBars int
	tracer       rules.Tracer
}

// Option configures a Strategy
type Option func(*Strategy)

// WithUnstableBars suppresses signals on the first n bars
func WithUnstableBars(n int) Option {
	return func(s *Strategy) {
		s.unstableBars = n
	}
}

// WithTracer reports every evaluation of the entry and exit rules to tracer,
// under "<name>.entry" and "<name>.exit"
func WithTracer(tracer rules.Tracer) Option {
	return func(s *Strategy) {
		s.tracer = tracer
	}
}

// NewStrategy creates a strategy
func NewStrategy(name string, entry, exit rules.Rule, opts ...Option) (*Strategy, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidStrategy)
	}
	if entry == nil || exit == nil {
		return nil, fmt.Errorf("%w: entry and exit rules are required", ErrInvalidStrategy)
	}

	s := &Strategy{name: name, entry: entry, exit: exit}
	for _, opt := range opts {
		opt(s)
	}
	if s.unstableBars < 0 {
		return nil, fmt.Errorf("%w: unstable bars cannot be negative", ErrInvalidStrategy)
	}

	if s.tracer != nil {
		var err error
		if s.entry, err = rules.Traced(name+".entry", s.entry, s.tracer); err != nil {
			return nil, err
		}
		if s.exit, err = rules.Traced(name+".exit", s.exit, s.tracer); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the strategy name
func (s *Strategy) Name() string {
	return s.name
}

// UnstableBars returns the number of leading bars that never signal
func (s *Strategy) UnstableBars() int {
	return s.unstableBars
}

// IsUnstableAt reports whether index falls in the unstable period
func (s *Strategy) IsUnstableAt(index int) bool {
	return index < s.unstableBars
}

// ShouldEnter reports whether the entry rule is satisfied at index
func (s *Strategy) ShouldEnter(index int, record *models.TradingRecord) bool {
	return !s.IsUnstableAt(index) && s.entry.IsSatisfied(index, record)
}

// ShouldExit reports whether the exit rule is satisfied at index
func (s *Strategy) ShouldExit(index int, record *models.TradingRecord) bool {
	return !s.IsUnstableAt(index) && s.exit.IsSatisfied(index, record)
}

// ShouldOperate evaluates the entry rule when no position is open and the
// exit rule otherwise
func (s *Strategy) ShouldOperate(index int, record *models.TradingRecord) bool {
	position := record.CurrentPosition()
	switch {
	case position.IsNew():
		return s.ShouldEnter(index, record)
	case position.IsOpened():
		return s.ShouldExit(index, record)
	default:
		return false
	}
}

// Reset clears the state of every stateful rule so the strategy can be run again
func (s *Strategy) Reset() {
	rules.Reset(s.entry)
	rules.Reset(s.exit)
}
