package indicator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Factory builds an indicator over a series. Window is 0 for indicators that
// take no window.
type Factory func(series *BarSeries, window int) (Indicator, error)

// Registry manages named indicator factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in indicators registered
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}
	r.registerBuiltIns()
	return r
}

// Register registers a factory under name
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("factory name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("indicator %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Get retrieves a factory by name
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
	}

	return factory, nil
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Unregister removes a factory from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
	}

	delete(r.factories, name)
	return nil
}

// Build parses a spec of the form "name" or "name:window" and builds the
// indicator over series
func (r *Registry) Build(series *BarSeries, spec string) (Indicator, error) {
	name, window, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}

	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	ind, err := factory(series, window)
	if err != nil {
		return nil, fmt.Errorf("failed to build %q: %w", spec, err)
	}
	return ind, nil
}

// ParseSpec splits "name:window" into its parts
func ParseSpec(spec string) (string, int, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return "", 0, fmt.Errorf("%w: empty", ErrInvalidSpec)
	}

	name, rawWindow, hasWindow := strings.Cut(spec, ":")
	if !hasWindow {
		return name, 0, nil
	}

	window, err := strconv.Atoi(rawWindow)
	if err != nil || window < 1 {
		return "", 0, fmt.Errorf("%w: bad window in %q", ErrInvalidSpec, spec)
	}
	return name, window, nil
}

func (r *Registry) registerBuiltIns() {
	plain := map[string]func(*BarSeries) (*TechanIndicator, error){
		"close":   NewClosePrice,
		"open":    NewOpenPrice,
		"high":    NewHighPrice,
		"low":     NewLowPrice,
		"volume":  NewVolume,
		"typical": NewTypicalPrice,
	}
	for name, build := range plain {
		build := build
		r.factories[name] = func(series *BarSeries, _ int) (Indicator, error) {
			return build(series)
		}
	}

	windowed := map[string]func(*BarSeries, int) (*TechanIndicator, error){
		"sma":    NewSMA,
		"ema":    NewEMA,
		"rsi":    NewRSI,
		"atr":    NewATR,
		"stddev": NewStdDev,
	}
	for name, build := range windowed {
		build := build
		name := name
		r.factories[name] = func(series *BarSeries, window int) (Indicator, error) {
			if window == 0 {
				return nil, fmt.Errorf("%w: %s requires a window", ErrInvalidSpec, name)
			}
			return build(series, window)
		}
	}

	r.factories["vwap"] = func(series *BarSeries, window int) (Indicator, error) {
		if window == 0 {
			return nil, fmt.Errorf("%w: vwap requires a window", ErrInvalidSpec)
		}
		return NewVWAP(series, window)
	}
	r.factories["change"] = func(series *BarSeries, window int) (Indicator, error) {
		if window == 0 {
			return nil, fmt.Errorf("%w: change requires a window", ErrInvalidSpec)
		}
		return NewPriceChange(series, window)
	}
}
