package indicator

import "math"

// FixedIndicator returns predefined values by index; out-of-range indices are NaN
type FixedIndicator struct {
	values []float64
}

// NewFixed creates an indicator over the given values
func NewFixed(values ...float64) *FixedIndicator {
	copied := make([]float64, len(values))
	copy(copied, values)
	return &FixedIndicator{values: copied}
}

func (f *FixedIndicator) Value(index int) float64 {
	if index < 0 || index >= len(f.values) {
		return math.NaN()
	}
	return f.values[index]
}

// Len returns the number of values
func (f *FixedIndicator) Len() int {
	return len(f.values)
}

// ConstantIndicator returns the same value at every index
type ConstantIndicator float64

// NewConstant creates a constant indicator
func NewConstant(value float64) ConstantIndicator {
	return ConstantIndicator(value)
}

func (c ConstantIndicator) Value(int) float64 {
	return float64(c)
}

// FixedBoolIndicator returns predefined booleans by index; out of range is false
type FixedBoolIndicator struct {
	values []bool
}

// NewFixedBool creates a boolean indicator over the given values
func NewFixedBool(values ...bool) *FixedBoolIndicator {
	copied := make([]bool, len(values))
	copy(copied, values)
	return &FixedBoolIndicator{values: copied}
}

func (f *FixedBoolIndicator) Bool(index int) bool {
	if index < 0 || index >= len(f.values) {
		return false
	}
	return f.values[index]
}
