package indicator

import (
	"math"
	"sync"
	"time"
)

// Indicator supplies a numeric value per bar index.
// Values must be deterministic per index; NaN means "undefined".
type Indicator interface {
	Value(index int) float64
}

// TimeIndicator supplies a date-time per bar index.
// The zero time means "undefined".
type TimeIndicator interface {
	Time(index int) time.Time
}

// BoolIndicator supplies a boolean per bar index
type BoolIndicator interface {
	Bool(index int) bool
}

// Func adapts a plain function to Indicator
type Func func(index int) float64

func (f Func) Value(index int) float64 {
	return f(index)
}

// BoolFunc adapts a plain function to BoolIndicator
type BoolFunc func(index int) bool

func (f BoolFunc) Bool(index int) bool {
	return f(index)
}

// IsDefined reports whether v carries a usable value
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// valueCache memoizes indicator values per index. The compute function is
// invoked without holding the lock so sources may share caches safely.
type valueCache struct {
	mu     sync.Mutex
	values []float64
	known  []bool
}

func (c *valueCache) get(index int, compute func(int) float64) float64 {
	if index < 0 {
		return math.NaN()
	}

	c.mu.Lock()
	if index < len(c.known) && c.known[index] {
		v := c.values[index]
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := compute(index)

	c.mu.Lock()
	defer c.mu.Unlock()
	if index >= len(c.known) {
		size := index + 1
		if grown := 2 * len(c.known); grown > size {
			size = grown
		}
		values := make([]float64, size)
		known := make([]bool, size)
		copy(values, c.values)
		copy(known, c.known)
		c.values = values
		c.known = known
	}
	c.values[index] = v
	c.known[index] = true
	return v
}
