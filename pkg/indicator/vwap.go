package indicator

import (
	"fmt"
	"math"
)

// VWAP is the volume weighted average of the typical price over the last
// window bars: Sum(typical * volume) / Sum(volume). It is NaN during the
// warm-up and when the window traded no volume.
type VWAP struct {
	series *BarSeries
	window int
	cache  valueCache
}

// NewVWAP creates a windowed VWAP over series
func NewVWAP(series *BarSeries, window int) (*VWAP, error) {
	if err := checkWindowed(series, window); err != nil {
		return nil, err
	}
	return &VWAP{series: series, window: window}, nil
}

// Name returns the indicator name (e.g. "vwap_20")
func (v *VWAP) Name() string {
	return fmt.Sprintf("vwap_%d", v.window)
}

// UnstableBars returns the warm-up length
func (v *VWAP) UnstableBars() int {
	return v.window - 1
}

func (v *VWAP) Value(index int) float64 {
	if !v.series.inRange(index) || index < v.UnstableBars() {
		return math.NaN()
	}
	return v.cache.get(index, v.calculate)
}

func (v *VWAP) calculate(index int) float64 {
	var priceVolume, volume float64
	for i := index - v.window + 1; i <= index; i++ {
		bar := v.series.Bar(i)
		typical := (bar.High + bar.Low + bar.Close) / 3
		priceVolume += typical * bar.Volume
		volume += bar.Volume
	}
	if volume == 0 {
		return math.NaN()
	}
	return priceVolume / volume
}
