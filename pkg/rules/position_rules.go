package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// openPosition returns the current position of record when it is opened
func openPosition(record *models.TradingRecord) *models.Position {
	if record.IsClosed() {
		return nil
	}
	position := record.CurrentPosition()
	if !position.IsOpened() {
		return nil
	}
	return position
}

// WaitForRule is satisfied once at least barCount bars have elapsed since the
// last trade on side. It is never satisfied before such a trade exists.
type WaitForRule struct {
	side     models.TradeSide
	barCount int
}

// NewWaitForRule creates a cool-down rule
func NewWaitForRule(side models.TradeSide, barCount int) (*WaitForRule, error) {
	if side != models.Buy && side != models.Sell {
		return nil, models.ErrInvalidSide
	}
	if barCount < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	return &WaitForRule{side: side, barCount: barCount}, nil
}

func (w *WaitForRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	last := record.LastTradeOf(w.side)
	if last == nil {
		return false
	}
	return index-last.Index >= w.barCount
}

// OpenedPositionMinimumBarCountRule is satisfied when a position is open and
// at least barCount bars have elapsed since its entry
type OpenedPositionMinimumBarCountRule struct {
	barCount int
}

// NewOpenedPositionMinimumBarCountRule creates a minimum holding period rule
func NewOpenedPositionMinimumBarCountRule(barCount int) (*OpenedPositionMinimumBarCountRule, error) {
	if barCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, barCount)
	}
	return &OpenedPositionMinimumBarCountRule{barCount: barCount}, nil
}

func (o *OpenedPositionMinimumBarCountRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	position := openPosition(record)
	if position == nil {
		return false
	}
	return index-position.Entry().Index >= o.barCount
}

// OpenPositionDurationRule is satisfied when a position is open and at least
// minBars bars have elapsed since its entry. Zero accepts the entry bar itself.
type OpenPositionDurationRule struct {
	minBars int
}

// NewOpenPositionDurationRule creates a holding duration gate counted in bars
func NewOpenPositionDurationRule(minBars int) (*OpenPositionDurationRule, error) {
	if minBars < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBarCount, minBars)
	}
	return &OpenPositionDurationRule{minBars: minBars}, nil
}

func (o *OpenPositionDurationRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	position := openPosition(record)
	if position == nil {
		return false
	}
	elapsed := index - position.Entry().Index
	return elapsed >= 0 && elapsed >= o.minBars
}

// OpenPositionMinimumTimeRule is satisfied when a position is open and at
// least minimum wall-clock time separates its entry bar from the evaluated bar.
// Session and weekend gaps count toward the elapsed time.
type OpenPositionMinimumTimeRule struct {
	times   indicator.TimeIndicator
	minimum time.Duration
}

// NewOpenPositionMinimumTimeRule creates a holding time gate
func NewOpenPositionMinimumTimeRule(times indicator.TimeIndicator, minimum time.Duration) (*OpenPositionMinimumTimeRule, error) {
	if times == nil {
		return nil, ErrNilIndicator
	}
	if minimum <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDuration, minimum)
	}
	return &OpenPositionMinimumTimeRule{times: times, minimum: minimum}, nil
}

func (o *OpenPositionMinimumTimeRule) IsSatisfied(index int, record *models.TradingRecord) bool {
	position := openPosition(record)
	if position == nil {
		return false
	}
	entered := o.times.Time(position.Entry().Index)
	now := o.times.Time(index)
	if entered.IsZero() || now.IsZero() {
		return false
	}
	return now.Sub(entered) >= o.minimum
}

// RiskRewardRatioRule is satisfied when price, stop and target are ordered
// consistently for side (target > price > stop for a buy, the reverse for a
// sell) and reward/risk is at least minRatio
type RiskRewardRatioRule struct {
	side                models.TradeSide
	price, stop, target indicator.Indicator
	minRatio            float64
}

// NewRiskRewardRatioRule creates a trade-quality gate
func NewRiskRewardRatioRule(side models.TradeSide, price, stop, target indicator.Indicator, minRatio float64) (*RiskRewardRatioRule, error) {
	if side != models.Buy && side != models.Sell {
		return nil, models.ErrInvalidSide
	}
	if price == nil || stop == nil || target == nil {
		return nil, ErrNilIndicator
	}
	if math.IsNaN(minRatio) || minRatio <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRatio, minRatio)
	}
	return &RiskRewardRatioRule{side: side, price: price, stop: stop, target: target, minRatio: minRatio}, nil
}

func (r *RiskRewardRatioRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	ratio, ok := r.Ratio(index)
	return ok && ratio >= r.minRatio
}

// Ratio returns reward/risk at index, or false when the levels are undefined
// or not ordered for the rule's side
func (r *RiskRewardRatioRule) Ratio(index int) (float64, bool) {
	price, stop, target := r.price.Value(index), r.stop.Value(index), r.target.Value(index)
	if !indicator.IsDefined(price) || !indicator.IsDefined(stop) || !indicator.IsDefined(target) {
		return 0, false
	}

	var reward, risk float64
	if r.side == models.Buy {
		if !(target > price && price > stop) {
			return 0, false
		}
		reward, risk = target-price, price-stop
	} else {
		if !(target < price && price < stop) {
			return 0, false
		}
		reward, risk = price-target, stop-price
	}
	if risk <= 0 {
		return 0, false
	}
	return reward / risk, true
}
