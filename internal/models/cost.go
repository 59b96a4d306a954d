package models

import "fmt"

// CostModel computes the transaction cost of a trade
type CostModel interface {
	Cost(price, amount float64) float64
}

// ZeroCostModel charges nothing
type ZeroCostModel struct{}

func (ZeroCostModel) Cost(price, amount float64) float64 {
	return 0
}

// LinearCostModel charges a fraction of the traded value
type LinearCostModel struct {
	Rate float64
}

// NewLinearCostModel creates a linear cost model; rate must be non-negative
func NewLinearCostModel(rate float64) (*LinearCostModel, error) {
	if rate < 0 || rate != rate {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCostRate, rate)
	}
	return &LinearCostModel{Rate: rate}, nil
}

func (m *LinearCostModel) Cost(price, amount float64) float64 {
	return price * amount * m.Rate
}

// FixedCostModel charges a flat fee per trade
type FixedCostModel struct {
	Fee float64
}

// NewFixedCostModel creates a fixed fee cost model; fee must be non-negative
func NewFixedCostModel(fee float64) (*FixedCostModel, error) {
	if fee < 0 || fee != fee {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCostRate, fee)
	}
	return &FixedCostModel{Fee: fee}, nil
}

func (m *FixedCostModel) Cost(price, amount float64) float64 {
	return m.Fee
}
