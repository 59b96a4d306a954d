package rules

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/trading-rules/internal/models"
	"github.com/mohamedkhairy/trading-rules/pkg/indicator"
)

// DayOfWeekRule is satisfied when the bar time falls on one of the given days
type DayOfWeekRule struct {
	times indicator.TimeIndicator
	days  map[time.Weekday]struct{}
}

// NewDayOfWeekRule creates a weekday filter
func NewDayOfWeekRule(times indicator.TimeIndicator, days ...time.Weekday) (*DayOfWeekRule, error) {
	if times == nil {
		return nil, ErrNilIndicator
	}
	set := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return nil, fmt.Errorf("invalid weekday %d", d)
		}
		set[d] = struct{}{}
	}
	return &DayOfWeekRule{times: times, days: set}, nil
}

func (d *DayOfWeekRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	t := d.times.Time(index)
	if t.IsZero() {
		return false
	}
	_, ok := d.days[t.Weekday()]
	return ok
}

// HourOfDayRule is satisfied when the bar hour is one of the given hours
type HourOfDayRule struct {
	times indicator.TimeIndicator
	hours map[int]struct{}
}

// NewHourOfDayRule creates an hour filter. Hours must be in 0-23.
func NewHourOfDayRule(times indicator.TimeIndicator, hours ...int) (*HourOfDayRule, error) {
	if times == nil {
		return nil, ErrNilIndicator
	}
	set, err := intSet(hours, 23, ErrInvalidHour)
	if err != nil {
		return nil, err
	}
	return &HourOfDayRule{times: times, hours: set}, nil
}

func (h *HourOfDayRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	t := h.times.Time(index)
	if t.IsZero() {
		return false
	}
	_, ok := h.hours[t.Hour()]
	return ok
}

// MinuteOfHourRule is satisfied when the bar minute is one of the given minutes
type MinuteOfHourRule struct {
	times   indicator.TimeIndicator
	minutes map[int]struct{}
}

// NewMinuteOfHourRule creates a minute filter. Minutes must be in 0-59.
func NewMinuteOfHourRule(times indicator.TimeIndicator, minutes ...int) (*MinuteOfHourRule, error) {
	if times == nil {
		return nil, ErrNilIndicator
	}
	set, err := intSet(minutes, 59, ErrInvalidMinute)
	if err != nil {
		return nil, err
	}
	return &MinuteOfHourRule{times: times, minutes: set}, nil
}

func (m *MinuteOfHourRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	t := m.times.Time(index)
	if t.IsZero() {
		return false
	}
	_, ok := m.minutes[t.Minute()]
	return ok
}

// TimeRange is an inclusive time-of-day interval, as offsets from midnight
type TimeRange struct {
	From time.Duration
	To   time.Duration
}

func (r TimeRange) contains(offset time.Duration) bool {
	return offset >= r.From && offset <= r.To
}

// TimeRangeRule is satisfied when the bar time of day falls in any range
type TimeRangeRule struct {
	times  indicator.TimeIndicator
	ranges []TimeRange
}

// NewTimeRangeRule creates a session filter
func NewTimeRangeRule(times indicator.TimeIndicator, ranges ...TimeRange) (*TimeRangeRule, error) {
	if times == nil {
		return nil, ErrNilIndicator
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: no ranges", ErrInvalidTimeRange)
	}
	for _, r := range ranges {
		if r.From < 0 || r.From > r.To || r.To >= 24*time.Hour {
			return nil, fmt.Errorf("%w: %v-%v", ErrInvalidTimeRange, r.From, r.To)
		}
	}

	copied := make([]TimeRange, len(ranges))
	copy(copied, ranges)
	return &TimeRangeRule{times: times, ranges: copied}, nil
}

func (r *TimeRangeRule) IsSatisfied(index int, _ *models.TradingRecord) bool {
	t := r.times.Time(index)
	if t.IsZero() {
		return false
	}
	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	for _, tr := range r.ranges {
		if tr.contains(offset) {
			return true
		}
	}
	return false
}

func intSet(values []int, limit int, rangeErr error) (map[int]struct{}, error) {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		if v < 0 || v > limit {
			return nil, fmt.Errorf("%w: got %d", rangeErr, v)
		}
		set[v] = struct{}{}
	}
	return set, nil
}
