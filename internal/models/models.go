package models

import (
	"time"
)

// Bar represents one OHLCV sample of a bar series
type Bar struct {
	Symbol    string        `json:"symbol"`
	Timestamp time.Time     `json:"timestamp"` // Start of the bar period
	Period    time.Duration `json:"period"`
	Open      float64       `json:"open"`
	High      float64       `json:"high"`
	Low       float64       `json:"low"`
	Close     float64       `json:"close"`
	Volume    float64       `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Symbol == "" {
		return ErrInvalidSymbol
	}
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// EndTime returns the end of the bar period
func (b *Bar) EndTime() time.Time {
	return b.Timestamp.Add(b.Period)
}
