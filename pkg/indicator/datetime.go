package indicator

import "time"

// BarTimeIndicator returns the timestamp of each bar of a series
type BarTimeIndicator struct {
	series *BarSeries
}

// NewBarTime creates a date-time indicator over a series
func NewBarTime(series *BarSeries) (*BarTimeIndicator, error) {
	if series == nil {
		return nil, ErrNilSeries
	}
	return &BarTimeIndicator{series: series}, nil
}

func (b *BarTimeIndicator) Time(index int) time.Time {
	bar := b.series.Bar(index)
	if bar == nil {
		return time.Time{}
	}
	return bar.Timestamp
}

// FixedTimeIndicator returns predefined times by index
type FixedTimeIndicator []time.Time

func (f FixedTimeIndicator) Time(index int) time.Time {
	if index < 0 || index >= len(f) {
		return time.Time{}
	}
	return f[index]
}
